package logger

import (
	"io"
	"log/slog"
	"os"
)

// New returns a structured text logger writing to stderr.
// Level should be a slog level string: DEBUG, INFO, WARN, ERROR.
// Unrecognized values default to INFO. Verbose forces DEBUG with source locations.
func New(level string, verbose bool) *slog.Logger {
	return newWithWriter(os.Stderr, level, verbose)
}

func newWithWriter(w io.Writer, level string, verbose bool) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	if verbose {
		lvl = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		AddSource: verbose,
		Level:     lvl,
	}))
}

// Discard returns a logger that drops everything. Used by tests and quiet paths.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
