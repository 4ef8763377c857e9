package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/set-night/gptdesk/internal/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// setupLogging installs the default slog logger. With LOG_FILE set, logs go
// to a rotated file instead of w.
func setupLogging(cfg *config.Config, w io.Writer) (io.Closer, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	var closer io.Closer
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w = lj
		closer = lj
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(cfg.LogFormat) {
	case "text":
		h = slog.NewTextHandler(w, opts)
	case "json", "":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown LOG_FORMAT %q (supported: json, text)", cfg.LogFormat)
	}
	slog.SetDefault(slog.New(h))
	return closer, nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse log level: %w", err)
	}
	return level, nil
}
