// Package testutil provides test utilities for structured logging.
package testutil

import (
	"log/slog"
	"strings"
)

// Logger is satisfied by *testing.T and by gocheck's *check.C.
type Logger interface {
	Log(args ...any)
}

// NewTestLogger returns a logger that writes to t.Log(). Logs only appear on
// test failure or when running with -v.
func NewTestLogger(t Logger) *slog.Logger {
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type testWriter struct {
	t Logger
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}
