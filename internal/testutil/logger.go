// Package testutil holds deterministic run identifiers, a fixed clock and a
// silent logger, used by the harness and by package tests.
package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
