// Package app provides shared wiring for the kordict commands.
package app

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hanmaru/kordict/internal/config"
)

// NewLogger creates a *slog.Logger from LogConfig and installs it as the
// slog default. Output goes to stderr so shard/summary output and shell
// pipelines stay clean.
//
// Format "json" produces structured output for batch runs under a
// scheduler; "text" is the human-readable default and includes source
// locations. Level is one of debug, info, warn, error (case-insensitive).
func NewLogger(cfg config.LogConfig) *slog.Logger {
	logger := slog.New(newHandler(os.Stderr, cfg))
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, cfg config.LogConfig) slog.Handler {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: strings.EqualFold(cfg.Format, "text"),
	}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
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
