package testutil

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards everything it is given.
// Test suites use it to keep output quiet.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
