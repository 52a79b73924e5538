// Package logging sets up the process logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log sink and level.
type Options struct {
	File  string
	Level string
	// JSON switches the handler to JSON lines. File sinks always use JSON.
	JSON bool
}

// New returns a logger and a closer for its sink. With no file the logger
// writes text to stderr.
func New(opts Options) (*slog.Logger, io.Closer) {
	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}
	if opts.File == "" {
		var h slog.Handler = slog.NewTextHandler(os.Stderr, hopts)
		if opts.JSON {
			h = slog.NewJSONHandler(os.Stderr, hopts)
		}
		return slog.New(h), nopCloser{}
	}
	sink := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	return slog.New(slog.NewJSONHandler(sink, hopts)), sink
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// ParseLevel maps a level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
