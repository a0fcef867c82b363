// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// SessionRunner performs one control-plane connection and returns when it
// terminates.
type SessionRunner interface {
	Run(ctx context.Context) error
}

// JobWaiter tracks publish jobs that must finish before exit.
type JobWaiter interface {
	Wait(ctx context.Context) error
	InFlight() int
}

// Config holds the lifecycle settings of the daemon.
type Config struct {
	// ListenAddr of the HTTP surface; empty disables it.
	ListenAddr string
	// ReconnectInterval paces reconnects; zero means a single attempt.
	ReconnectInterval time.Duration
	// ShutdownTimeout bounds server shutdown and the wait for publish jobs.
	ShutdownTimeout time.Duration
}

// Deps contains dependencies required by the daemon Manager.
type Deps struct {
	Logger zerolog.Logger

	Session SessionRunner
	// Channel is closed with a normal-closure frame on shutdown.
	Channel io.Closer
	Jobs    JobWaiter

	APIHandler http.Handler
}

// Validate checks if the dependencies are valid.
func (d *Deps) Validate(cfg Config) error {
	if d.Logger.GetLevel() == zerolog.Disabled {
		return ErrMissingLogger
	}
	if d.Session == nil {
		return ErrMissingSession
	}
	if cfg.ListenAddr != "" && d.APIHandler == nil {
		return ErrMissingAPIHandler
	}
	return nil
}
