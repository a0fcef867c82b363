// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

const defaultService = "replay"

// Config describes the process logger. Empty fields fall back to the
// LOG_LEVEL and LOG_SERVICE environment variables, then to defaults.
type Config struct {
	Level   string
	Output  io.Writer // stdout when nil
	Service string
	Version string
}

var root atomic.Pointer[zerolog.Logger]

// Configure replaces the process logger. main calls it before the config is
// loaded and again once the configured level is known.
func Configure(cfg Config) {
	zerolog.SetGlobalLevel(resolveLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	service := firstNonEmpty(cfg.Service, os.Getenv("LOG_SERVICE"), defaultService)

	l := zerolog.New(out).With().
		Timestamp().
		Str("service", service).
		Str("version", cfg.Version).
		Logger()
	root.Store(&l)
}

func resolveLevel(configured string) zerolog.Level {
	for _, s := range []string{configured, os.Getenv("LOG_LEVEL")} {
		if s == "" {
			continue
		}
		if lvl, err := zerolog.ParseLevel(s); err == nil {
			return lvl
		}
		break
	}
	return zerolog.InfoLevel
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// WithComponent returns a child of the process logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return root.Load().With().Str(FieldComponent, component).Logger()
}

func init() {
	Configure(Config{})
}
