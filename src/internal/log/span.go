package log

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the level at which to generate Span logs.
type Level int

const (
	DebugLevel Level = 1
	InfoLevel  Level = 2
	ErrorLevel Level = 3
)

func (l Level) coreLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	}
	return zapcore.DebugLevel
}

// EndSpanFunc ends a span.
type EndSpanFunc = func(fields ...Field)

// ErrorL marks a span as failed and raises the finishing record to level.  A nil err is skipped.
func ErrorL(err error, level Level) Field {
	if err == nil {
		return zap.Skip()
	}
	f := zap.Error(err)
	f.Integer = int64(level)
	return f
}

const errorpType = zapcore.InlineMarshalerType + 100

// Errorp marks a span as failed if *err is non-nil at the time the span ends.
func Errorp(err *error) Field {
	return zapcore.Field{Key: "error", Type: errorpType, Interface: err}
}

const (
	spanStarting = "span start"
	spanOK       = "span finished ok"
	spanFailed   = "span failed"
)

func endSpan(l *zap.Logger, event string, level Level, start time.Time) EndSpanFunc {
	return func(raw ...Field) {
		fields := []Field{zap.Duration("spanDuration", time.Since(start))}
		status := spanOK
		for _, f := range raw {
			switch x := f.Interface.(type) {
			case error:
				status = spanFailed
				if f.Type == zapcore.ErrorType && f.Integer > 0 {
					level = Level(f.Integer)
				}
			case *error:
				if f.Type != errorpType {
					break
				}
				if *x != nil {
					status = spanFailed
					fields = append(fields, zap.Error(*x))
				}
				continue
			}
			fields = append(fields, f)
		}
		if ce := l.Check(level.coreLevel(), event+": "+status); ce != nil {
			ce.Write(fields...)
		}
	}
}

// SpanContextL starts a span: a start record now and a finish record when the returned function
// is called.  Pass ErrorL, Errorp or zap.Error to the end function to mark the span failed.  The
// returned context logs under the span's name.
func SpanContextL(rctx context.Context, event string, level Level, fields ...Field) (context.Context, EndSpanFunc) {
	l := extractLogger(rctx).Named(event).With(fields...)
	if ce := l.WithOptions(zap.AddCallerSkip(1)).Check(level.coreLevel(), event+": "+spanStarting); ce != nil {
		ce.Write()
	}
	return withLogger(rctx, l), endSpan(l, event, level, time.Now())
}

// SpanContext starts a span at level debug.  See SpanContextL.
func SpanContext(rctx context.Context, event string, fields ...Field) (context.Context, EndSpanFunc) {
	return SpanContextL(rctx, event, DebugLevel, fields...)
}

// Span starts a span at level debug and returns only its end function.
func Span(ctx context.Context, event string, fields ...Field) EndSpanFunc {
	_, end := SpanContextL(ctx, event, DebugLevel, fields...)
	return end
}
