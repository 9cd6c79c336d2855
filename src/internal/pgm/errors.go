package pgm

import (
	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// Kinds of failure.  Every error returned by this package matches one of them with errors.Is.
var (
	ErrFileOpen        = errors.New("unable to open image file for writing")
	ErrDirectoryCreate = errors.New("unable to create directory")
	ErrPathTooLong     = errors.New("path too long")
	ErrImageWrite      = errors.New("unable to write to image file")
	ErrMalformed       = errors.New("malformed PGM image")
)

// Error is a failure involving one path.
type Error struct {
	Kind error
	Path string
	// Err is the underlying cause, if there is one.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path string, err error) error {
	return errors.WithStack(&Error{Kind: kind, Path: path, Err: err})
}
