// Package testutil provides test utilities for structured logging.
package testutil

import (
	"log/slog"
	"testing"
)

// NewTestLogger returns a logger that writes to t.Log().
// Logs only appear on test failure or when running with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

// CaptureLogs routes the default slog logger to t.Log() for the duration of
// the test, so debug lines from code that logs through slog.Default (the
// engine's open/close tracing, the statement runner) land in the test output.
func CaptureLogs(t testing.TB) {
	t.Helper()
	prev := slog.Default()
	slog.SetDefault(NewTestLogger(t))
	t.Cleanup(func() { slog.SetDefault(prev) })
}

type testWriter struct {
	t testing.TB
}

func (w testWriter) Write(p []byte) (n int, err error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}
