// Package logging configures the process-wide logger.
package logging

import (
	"log/slog"
	"os"
)

// Setup configures the global slog logger. Diagnostics go to stderr so
// stdout stays clean for the result echo.
func Setup(level string) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: lvl,
	})
	slog.SetDefault(slog.New(handler))
}
