// Package log implements context-carried structured logging on top of zap.
//
// Every function that logs takes a context.Context; the logger lives in the context.  Get a root
// context from pctx.Background (or AddLogger in tests) and derive everything else from it.
package log

import (
	"context"
	"io"
	"os"

	"github.com/pachyderm/idxconvert/src/internal/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Field is a structured log field.
type Field = zap.Field

// LogOption modifies the logger attached to a child context.
type LogOption func(*zap.Logger) *zap.Logger

type loggerKey struct{}

// level is shared by every logger InitCLILogger creates for the terminal.
var level = zap.NewAtomicLevelAt(zapcore.WarnLevel)

// SetLevel changes the minimum level printed to the terminal.
func SetLevel(l Level) {
	level.SetLevel(l.coreLevel())
}

// SetLevelFromString parses a level name ("debug", "info", "warn", "error") and applies it.
func SetLevelFromString(s string) error {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return errors.Wrapf(err, "parse log level %q", s)
	}
	level.SetLevel(l)
	return nil
}

// InitCLILogger installs the process-wide logger for a command-line tool.  Human-readable records
// at the current level go to w; if logFile is non-empty, every record is also appended to that
// file as JSON.  The returned function flushes the logs and closes the file, recording err first
// if it is non-nil.
func InitCLILogger(w io.Writer, logFile string) (func(error), error) {
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(cliEncoder), zapcore.Lock(zapcore.AddSync(w)), level),
	}
	var f *os.File
	if logFile != "" {
		var err error
		f, err = os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, errors.Wrapf(err, "open log file %v", logFile)
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoder), zapcore.AddSync(f), zapcore.DebugLevel))
	}
	l := zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(zapcore.AddSync(w))))
	undo := zap.ReplaceGlobals(l)
	return func(err error) {
		if err != nil {
			l.Debug("exiting with error", zap.Error(err))
		}
		l.Sync() //nolint:errcheck
		if f != nil {
			f.Close() //nolint:errcheck
		}
		undo()
	}, nil
}

// AddLogger returns a context carrying the process-wide logger.
func AddLogger(ctx context.Context) context.Context {
	return withLogger(ctx, zap.L())
}

func withLogger(ctx context.Context, l *zap.Logger) context.Context {
	if l == nil {
		zap.L().DPanic("log: internal error: nil logger provided to withLogger")
		l = zap.L()
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

func extractLogger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		zap.L().DPanic("log: internal error: nil context provided to ExtractLogger")
		return zap.L()
	}
	if l, ok := ctx.Value(loggerKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	zap.L().DPanic("log: internal error: no logger in provided context")
	return zap.L()
}

// WithFields adds fields to every record logged by the child.
func WithFields(fields ...Field) LogOption {
	return func(l *zap.Logger) *zap.Logger {
		return l.With(fields...)
	}
}

// ChildLogger returns a context whose logger is named after its parent's name plus name.
func ChildLogger(ctx context.Context, name string, opts ...LogOption) context.Context {
	l := extractLogger(ctx)
	if name != "" {
		l = l.Named(name)
	}
	for _, opt := range opts {
		l = opt(l)
	}
	return withLogger(ctx, l)
}

// Debug logs a message, with fields, at level DEBUG.
func Debug(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info logs a message, with fields, at level INFO.
func Info(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Error logs a message, with fields, at level ERROR.
func Error(ctx context.Context, msg string, fields ...Field) {
	extractLogger(ctx).WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}
