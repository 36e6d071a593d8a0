// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logger settings taken from the CLI surface.
type Config struct {
	// Level is the minimum level to emit: debug, info, warn, or error.
	Level string

	// File, when non-empty, duplicates log output to the named file in
	// addition to the console.
	File string
}

// Setup configures the global logger and returns it together with a
// close function for the log file, if one was opened.
func Setup(cfg Config) (zerolog.Logger, func() error, error) {
	closer := func() error { return nil }

	level, err := parseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), closer, err
	}

	var out io.Writer = zerolog.ConsoleWriter{Out: os.Stderr}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("opening log file %s: %w", cfg.File, err)
		}
		out = zerolog.MultiLevelWriter(zerolog.ConsoleWriter{Out: os.Stderr}, f)
		closer = f.Close
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger, closer, nil
}

// parseLevel rejects unknown level strings so a misconfigured flag
// fails at startup instead of silently logging at info.
func parseLevel(level string) (zerolog.Level, error) {
	switch strings.ToLower(level) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q (expected debug, info, warn, or error)", level)
	}
}

// For returns a logger tagged with the originating component.
func For(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}
