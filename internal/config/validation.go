// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Validate checks cfg and returns every problem found, each wrapping ErrInvalid.
func Validate(cfg AppConfig) error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...)))
	}

	if u, err := url.Parse(cfg.SocketURL); err != nil || u.Host == "" {
		add("socket url %q is not a valid URL", cfg.SocketURL)
	} else if u.Scheme != "ws" && u.Scheme != "wss" {
		add("socket url scheme must be ws or wss, got %q", u.Scheme)
	}

	if cfg.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
			add("listen address %q: %v", cfg.ListenAddr, err)
		}
	}
	if cfg.ReconnectInterval < 0 {
		add("reconnect interval must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		add("shutdown timeout must be positive")
	}

	if strings.TrimSpace(cfg.FFmpeg.Bin) == "" {
		add("ffmpeg binary must be set")
	}
	if cfg.FFmpeg.Timeout < 0 {
		add("ffmpeg timeout must not be negative")
	}

	switch cfg.YouTube.Privacy {
	case "private", "unlisted", "public":
	default:
		add("youtube privacy must be private, unlisted or public, got %q", cfg.YouTube.Privacy)
	}
	if cfg.YouTube.TokenFile == "" {
		add("youtube token file must be set")
	}

	if cfg.Telemetry.SamplingRate < 0 || cfg.Telemetry.SamplingRate > 1 {
		add("telemetry sampling rate must be within [0,1], got %v", cfg.Telemetry.SamplingRate)
	}
	if cfg.Telemetry.Enabled {
		switch cfg.Telemetry.ExporterType {
		case "grpc", "http":
		default:
			add("telemetry exporter must be grpc or http, got %q", cfg.Telemetry.ExporterType)
		}
		if cfg.Telemetry.Endpoint == "" {
			add("telemetry endpoint must be set when telemetry is enabled")
		}
	}

	return errors.Join(errs...)
}
