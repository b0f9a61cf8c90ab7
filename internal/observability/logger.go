// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability provides the structured logger and the Prometheus
// metrics shared by the impact and funding pipelines.
package observability

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/pdiddy/research-impact/pkg/types"
)

// NewLogger builds a zerolog logger from cfg. Output "stdout" and "stderr"
// select the standard streams; anything else is a file path opened for
// appending. The returned closer releases the file and is a no-op for the
// standard streams. Every logger carries a fresh run_id field.
func NewLogger(cfg types.LoggingConfig) (zerolog.Logger, io.Closer, error) {
	var (
		out    io.Writer
		closer io.Closer = nopCloser{}
		toFile bool
	)

	switch strings.ToLower(cfg.Output) {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("opening log file %s: %w", cfg.Output, err)
		}
		out = f
		closer = f
		toFile = true
	}

	zerolog.TimeFieldFormat = time.RFC3339

	if strings.ToLower(cfg.Format) == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: toFile}
	}

	logger := zerolog.New(out).
		Level(ParseLevel(cfg.Level)).
		With().
		Timestamp().
		Str("run_id", uuid.NewString()).
		Logger()

	return logger, closer, nil
}

// ParseLevel converts a level name to a zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
