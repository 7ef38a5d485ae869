// Package logging configures the process-wide slog default.
package logging

import (
	"log/slog"
	"os"
)

// Init sets up a text handler on stderr. Non-verbose runs only surface
// warnings so the status surface stays clean inside a bar.
func Init(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
