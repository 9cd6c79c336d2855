package cmdutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/pachyderm/idxconvert/src/internal/errors"
	"github.com/spf13/cobra"
)

// PrintErrorStacks should be set to true if you want to print out a stack for errors that are
// returned by the run commands.
var PrintErrorStacks bool

// UsageError reports a command invoked with the wrong number of arguments.
type UsageError struct {
	Want, Got int
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("expected %d arguments, got %d", e.Want, e.Got)
}

// RunFixedArgs wraps a function in a cobra RunE that checks its exact argument count.  On a
// mismatch it prints the command's usage and returns a UsageError.
func RunFixedArgs(numArgs int, run func(context.Context, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != numArgs {
			cmd.Usage() //nolint:errcheck
			return errors.WithStack(&UsageError{Want: numArgs, Got: len(args)})
		}
		return run(cmd.Context(), args)
	}
}

// RunBoundedArgs wraps a function in a cobra RunE that checks its argument count is within a
// range.
func RunBoundedArgs(min, max int, run func(context.Context, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) < min || len(args) > max {
			cmd.Usage() //nolint:errcheck
			return errors.Errorf("expected %d to %d arguments, got %d", min, max, len(args))
		}
		return run(cmd.Context(), args)
	}
}

// PrintError writes err to w as one line, in red when w is a terminal.  If PrintErrorStacks is
// set, the stack of err follows.
func PrintError(w io.Writer, err error) {
	msg := strings.Join(strings.Fields(strings.ReplaceAll(err.Error(), "\n", "; ")), " ")
	c := color.New(color.FgRed)
	if isTerminal(w) {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	c.Fprintln(w, msg) //nolint:errcheck
	if PrintErrorStacks {
		fmt.Fprint(w, errors.Stack(err))
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
