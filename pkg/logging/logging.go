// Package logging configures structured logging for carpool binaries.
//
// Interactive use gets colored output from tint; servers can switch to JSON:
//
//	logging.Setup(logging.ParseLevel("debug"), false) // colored, to stderr
//	logging.Setup(slog.LevelInfo, true)               // JSON, to stdout
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default slog logger at the given level.
func Setup(level slog.Level, json bool) {
	if json {
		slog.SetDefault(slog.New(NewJSONHandler(os.Stdout, level)))
		return
	}
	slog.SetDefault(slog.New(NewTintHandler(os.Stderr, level)))
}

// NewTintHandler returns a colored handler writing to w.
func NewTintHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		AddSource:  level <= slog.LevelDebug,
	})
}

// NewJSONHandler returns a JSON handler writing to w.
func NewJSONHandler(w io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// ParseLevel maps debug, info, warn and error to slog levels (default: info).
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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
