package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"

	"github.com/vertti/terminwatch/pkg/config"
)

// initLogging installs a tint handler as the default slog logger. When a
// log file is configured, records are written to both w and the file,
// without colors.
func initLogging(w io.Writer, cfg config.Log, verbose bool) (*slog.Logger, func() error, error) {
	level := slog.LevelInfo
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}
	if verbose {
		level = slog.LevelDebug
	}

	closer := func() error { return nil }
	noColor := false
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // user-provided log path
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = io.MultiWriter(w, f)
		closer = f.Close
		noColor = true
	}

	logger := slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
		NoColor:    noColor,
	}))
	slog.SetDefault(logger)
	return logger, closer, nil
}
