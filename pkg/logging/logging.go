// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Attribute key carrying the per-run id.
const InvocationKey = "invocation"

// ParseLevel maps a level name to a slog level. Unknown names map to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// New creates a logger writing text, or JSON when asJSON is set, to w.
func New(w io.Writer, level slog.Level, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// SetDefault installs a stderr logger tagged with a fresh invocation id
// and returns that id.
func SetDefault(level slog.Level, asJSON bool) string {
	id := uuid.NewString()
	slog.SetDefault(New(os.Stderr, level, asJSON).With(slog.String(InvocationKey, id)))
	return id
}
