package log

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// History holds the records captured by TestWithCapture.
type History struct {
	logs *observer.ObservedLogs
}

// Logs returns every captured record, in order.
func (h *History) Logs() []observer.LoggedEntry {
	return h.logs.AllUntimed()
}

// Messages returns the captured records as "name: level: message" strings, omitting the name when
// it is empty.
func (h *History) Messages() []string {
	var result []string
	for _, e := range h.Logs() {
		msg := e.Level.String() + ": " + e.Message
		if e.LoggerName != "" {
			msg = e.LoggerName + ": " + msg
		}
		result = append(result, msg)
	}
	return result
}

// TestWithCapture returns a context whose logger records every message at every level, and
// installs that logger as the global logger for the duration of the test.
func TestWithCapture(t testing.TB, opts ...zap.Option) (context.Context, *History) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core, append([]zap.Option{zap.AddCaller()}, opts...)...)
	t.Cleanup(zap.ReplaceGlobals(l))
	return withLogger(context.Background(), l), &History{logs: logs}
}

// HasALog fails the test if nothing was logged.
func (h *History) HasALog(t testing.TB) {
	t.Helper()
	if len(h.Logs()) == 0 {
		t.Error("expected some logs, but got none")
	}
}
