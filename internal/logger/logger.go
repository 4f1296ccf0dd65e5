package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/diewo77/go-offers/internal/config"
)

// New returns the application logger: JSON on stdout in production, text
// otherwise. Dev mode forces debug level.
func New(app config.AppConfig) *slog.Logger {
	return NewWithWriter(os.Stdout, app)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, app config.AppConfig) *slog.Logger {
	level := ParseLevel(app.LogLevel)
	if app.Dev {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if app.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps debug|info|warn|error to a slog level; unknown values give info.
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
