// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rxcards Authors

// Package logging constructs the zerolog loggers used throughout rxcards.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config contains logging configuration.
type Config struct {
	Level   string `mapstructure:"level" validate:"oneof=trace debug info warn error"`
	Format  string `mapstructure:"format" validate:"oneof=json console"`
	Output  string `mapstructure:"output" validate:"oneof=stdout stderr"`
	NoColor bool   `mapstructure:"no_color"`
}

// DefaultConfig logs at info level to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatConsole,
		Output: "stderr",
	}
}

// New creates a logger writing to the configured output.
func New(cfg Config) zerolog.Logger {
	return NewWithWriter(cfg, outputWriter(cfg.Output))
}

// NewWithWriter creates a logger writing to 'w'. An unknown level falls back
// to info.
func NewWithWriter(cfg Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if strings.ToLower(cfg.Format) == FormatConsole {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "15:04:05.000",
			NoColor:    cfg.NoColor,
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with a component name.
func Component(log zerolog.Logger, name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}

func outputWriter(output string) io.Writer {
	switch strings.ToLower(output) {
	case "stdout":
		return os.Stdout
	default:
		return os.Stderr
	}
}
