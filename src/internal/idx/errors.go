package idx

import (
	"fmt"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

// Kinds of decoding failure.  Every error returned by this package matches exactly one of them
// with errors.Is.
var (
	ErrFileOpen      = errors.New("unable to open file")
	ErrBadMagic      = errors.New("magic number does not match")
	ErrTruncatedRead = errors.New("truncated read")
	ErrInvalidHeader = errors.New("invalid header")
)

// FormatError reports a file (or stream) that could not be decoded.
type FormatError struct {
	Kind error
	// Path is empty when the data did not come from a named file.
	Path string
	Msg  string
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Msg)
}

func (e *FormatError) Unwrap() error { return e.Kind }

// OpenError reports an input file that could not be opened.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("unable to open file: %v", e.Err)
}

func (e *OpenError) Unwrap() []error { return []error{ErrFileOpen, e.Err} }

func formatErrorf(kind error, format string, args ...any) error {
	return errors.WithStack(&FormatError{Kind: kind, Msg: fmt.Sprintf(format, args...)})
}

// withPath attaches path to any FormatError in err's chain.
func withPath(err error, path string) error {
	var fe *FormatError
	if errors.As(err, &fe) && fe.Path == "" {
		fe.Path = path
	}
	return err
}
