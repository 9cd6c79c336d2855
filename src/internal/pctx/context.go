package pctx

import (
	"context"

	"github.com/pachyderm/idxconvert/src/internal/log"
	"go.uber.org/zap"
)

// Background returns the root context for a process.
func Background(process string) context.Context {
	return Child(log.AddLogger(context.Background()), process)
}

// Option customizes a child context.
type Option struct {
	modifyLogger log.LogOption
}

// WithFields returns an Option adding fields to each record logged through the child.
func WithFields(fields ...zap.Field) Option {
	return Option{modifyLogger: log.WithFields(fields...)}
}

// Child returns a named child context.  The name can be empty.
func Child(ctx context.Context, name string, opts ...Option) context.Context {
	var logOptions []log.LogOption
	for _, opt := range opts {
		if o := opt.modifyLogger; o != nil {
			logOptions = append(logOptions, o)
		}
	}
	return log.ChildLogger(ctx, name, logOptions...)
}
