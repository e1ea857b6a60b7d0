package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/heartmarshall/dreamjournal/internal/config"
)

// NewLogger builds the process logger on stderr and installs it as the slog
// default. Format "json" is for machines; anything else is text with source
// locations. Unknown levels fall back to info.
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := newLoggerWithWriter(os.Stderr, cfg)
	slog.SetDefault(logger)
	return logger
}

func newLoggerWithWriter(w io.Writer, cfg config.LogConfig) *slog.Logger {
	asJSON := strings.EqualFold(cfg.Format, "json")
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: !asJSON,
	}

	var handler slog.Handler
	if asJSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("app", "dreamsync")
}

func parseLevel(s string) slog.Level {
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
