package main

import (
	"log/slog"
	"os"
)

// newLogger returns a text-handler slog.Logger gated by the --verbose
// flag. It is used only for CLI progress messages (stage names, file
// paths), shown with --verbose, and cleanup warnings, shown always;
// compiler diagnostics always go through internal/diag instead,
// so they stay plain text and independent of logging configuration.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
