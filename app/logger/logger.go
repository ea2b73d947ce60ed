// Package logger builds the process wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
)

const (
	envDev  = "dev"
	envTest = "test"
)

// New returns a logger for env writing to stdout. Development and test
// environments get human readable output at debug level; everything else
// gets JSON at info level.
func New(env string) *slog.Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	switch env {
	case envDev, envTest:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.New(handler).With(slog.String("env", env))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
