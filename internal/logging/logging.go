package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Handler formats.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Init creates a logger writing to w, sets it as the slog default and
// returns it. FormatJSON selects a JSONHandler, anything else a TextHandler.
func Init(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if format == FormatJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// FormatFor picks the log format for an output destination. When views go
// to stdout the logs on stderr are JSON so a combined stream stays machine
// readable; otherwise they are text for humans.
func FormatFor(outputIsStdout bool) string {
	if outputIsStdout {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
