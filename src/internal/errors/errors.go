// Package errors is the error package used throughout idxconvert.  It wraps github.com/pkg/errors
// so that every error created or wrapped here carries a stack trace, and adds a few helpers for
// deferred cleanup.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Frame is a single stack frame.
type Frame = errors.Frame

// StackTracer is implemented by errors that carry a stack trace.
type StackTracer interface {
	StackTrace() errors.StackTrace
}

var (
	// New returns an error with the supplied message and a stack trace.
	New = errors.New
	// Errorf formats according to a format specifier and returns an error with a stack trace.
	Errorf = errors.Errorf
	// Wrap annotates err with a message and a stack trace.  Wrap(nil, ...) is nil.
	Wrap = errors.Wrap
	// Wrapf annotates err with a formatted message and a stack trace.  Wrapf(nil, ...) is nil.
	Wrapf = errors.Wrapf
	// WithStack annotates err with a stack trace.  WithStack(nil) is nil.
	WithStack = errors.WithStack
	// Is reports whether any error in err's chain matches target.
	Is = stderrors.Is
	// As finds the first error in err's chain that matches target.
	As = stderrors.As
	// Unwrap returns the result of calling the Unwrap method on err.
	Unwrap = stderrors.Unwrap
	// Join returns an error that wraps the given errors, discarding nils.
	Join = stderrors.Join
)

// EnsureStack adds a stack trace to err if it does not already have one.  It is meant for errors
// returned from the standard library or third-party code.
func EnsureStack(err error) error {
	if err == nil {
		return nil
	}
	var st StackTracer
	if As(err, &st) {
		return err
	}
	return errors.WithStack(err)
}

// JoinInto joins err into *dst.  Nil errors are ignored.
func JoinInto(dst *error, err error) {
	if err == nil {
		return
	}
	if *dst == nil {
		*dst = err
		return
	}
	*dst = Join(*dst, err)
}

// Close closes c and, if the close fails, joins the failure into *retErr annotated with the
// formatted message.  It is meant to be deferred:
//
//	defer errors.Close(&retErr, f, "close %v", path)
func Close(retErr *error, c io.Closer, format string, args ...any) {
	if err := c.Close(); err != nil {
		JoinInto(retErr, errors.Wrapf(err, format, args...))
	}
}

// ForEachStackFrame calls f on each frame of the deepest stack trace found in err's chain.
func ForEachStackFrame(err error, f func(Frame)) {
	var deepest StackTracer
	for e := err; e != nil; e = Unwrap(e) {
		if st, ok := e.(StackTracer); ok {
			deepest = st
		}
	}
	if deepest == nil {
		return
	}
	for _, frame := range deepest.StackTrace() {
		f(frame)
	}
}

// Stack renders the stack of err for diagnostics, one frame per line.
func Stack(err error) string {
	var s string
	ForEachStackFrame(err, func(frame Frame) {
		s += fmt.Sprintf("%+v\n", frame)
	})
	return s
}
