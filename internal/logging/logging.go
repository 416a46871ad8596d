// Package logging builds the slog loggers used across syndex.
//
// Loggers are constructed once at startup and passed into each
// component's constructor. No package holds a global logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Config controls handler construction.
type Config struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string

	// Format is "text" or "json".
	Format string

	// File, when set, receives a copy of every record in addition to
	// stderr. The file is opened in append mode and created if needed,
	// preserving a run history across invocations.
	File string
}

// Setup builds a logger from the config. The returned closer releases
// the log file, if one was opened; it is never nil.
func Setup(cfg Config) (*slog.Logger, io.Closer, error) {
	var w io.Writer = os.Stderr
	closer := io.Closer(nopCloser{})

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w = io.MultiWriter(os.Stderr, f)
		closer = f
	}

	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), closer, nil
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
