// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package daemon owns the process lifecycle: the session loop, the HTTP
// surface and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const defaultShutdownTimeout = 30 * time.Second

// ShutdownHook is a function that performs cleanup during graceful shutdown.
// Hooks are executed in reverse registration order (LIFO).
type ShutdownHook func(ctx context.Context) error

type namedHook struct {
	name string
	hook ShutdownHook
}

// Manager runs the session loop and the HTTP surface until its context is
// cancelled, then shuts everything down in order.
type Manager struct {
	cfg    Config
	deps   Deps
	logger zerolog.Logger

	mu       sync.Mutex
	started  bool
	stopping bool
	server   *http.Server
	addr     net.Addr
	hooks    []namedHook
	ready    chan struct{}
}

// NewManager creates a new daemon manager with the given configuration and dependencies.
func NewManager(cfg Config, deps Deps) (*Manager, error) {
	if err := deps.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid dependencies: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = defaultShutdownTimeout
	}
	return &Manager{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger.With().Str(xglog.FieldComponent, "manager").Logger(),
		ready:  make(chan struct{}),
	}, nil
}

// RegisterShutdownHook registers a cleanup function to be called during shutdown.
func (m *Manager) RegisterShutdownHook(name string, hook ShutdownHook) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks = append(m.hooks, namedHook{name: name, hook: hook})
}

// Ready is closed once the HTTP listener (if any) is bound.
func (m *Manager) Ready() <-chan struct{} { return m.ready }

// Addr returns the bound HTTP address, or nil when the surface is disabled
// or not yet listening.
func (m *Manager) Addr() net.Addr {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.addr
}

// Start runs until ctx is cancelled or the HTTP server fails, then performs
// a graceful shutdown. A cancelled context is a clean exit.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.started = true
	m.mu.Unlock()

	m.logger.Info().
		Str("listen", m.cfg.ListenAddr).
		Dur("reconnect_interval", m.cfg.ReconnectInterval).
		Dur("shutdown_timeout", m.cfg.ShutdownTimeout).
		Msg("starting daemon manager")

	var ln net.Listener
	if m.cfg.ListenAddr != "" {
		var err error
		ln, err = net.Listen("tcp", m.cfg.ListenAddr)
		if err != nil {
			close(m.ready)
			return fmt.Errorf("listen %s: %w", m.cfg.ListenAddr, err)
		}
		m.mu.Lock()
		m.addr = ln.Addr()
		m.server = &http.Server{
			Handler:           m.deps.APIHandler,
			ReadHeaderTimeout: 5 * time.Second,
		}
		m.mu.Unlock()
	}
	close(m.ready)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		m.runSessions(gctx)
		return nil
	})

	if ln != nil {
		g.Go(func() error {
			m.logger.Info().Str("addr", ln.Addr().String()).Msg("API server listening (HTTP)")
			if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				m.logger.Error().Err(err).Str(xglog.FieldEvent, "api.server.failed").Msg("API server failed")
				return fmt.Errorf("API server: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() != nil {
			m.logger.Info().Msg("shutdown signal received")
		}
		return m.Shutdown(context.WithoutCancel(ctx))
	})

	return g.Wait()
}

// runSessions re-runs the session after each termination, paced by a token
// bucket so a flapping control plane is not hammered.
func (m *Manager) runSessions(ctx context.Context) {
	if m.cfg.ReconnectInterval <= 0 {
		if err := m.deps.Session.Run(ctx); err != nil && ctx.Err() == nil {
			m.logger.Warn().Err(err).Str(xglog.FieldEvent, "session.ended").Msg("control plane session ended; reconnect disabled")
		}
		return
	}

	limiter := rate.NewLimiter(rate.Every(m.cfg.ReconnectInterval), 1)
	for attempt := 1; ; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return
		}
		err := m.deps.Session.Run(ctx)
		if ctx.Err() != nil {
			return
		}
		m.logger.Info().
			Err(err).
			Str(xglog.FieldEvent, "session.reconnect").
			Int("attempt", attempt).
			Dur("interval", m.cfg.ReconnectInterval).
			Msg("control plane session ended; reconnecting")
	}
}

// Shutdown closes the control-plane socket, stops the HTTP server and waits
// for in-flight publish jobs, all bounded by the shutdown timeout. Jobs that
// are still running when the timeout expires are abandoned, not cancelled.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return ErrManagerNotStarted
	}
	if m.stopping {
		m.mu.Unlock()
		return nil
	}
	m.stopping = true
	server := m.server
	hooks := append([]namedHook(nil), m.hooks...)
	m.mu.Unlock()

	m.logger.Info().Msg("shutting down daemon manager")
	shutdownCtx, cancel := context.WithTimeout(ctx, m.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error

	if m.deps.Channel != nil {
		if err := m.deps.Channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("control plane close: %w", err))
		}
	}

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("API server shutdown: %w", err))
		}
	}

	if m.deps.Jobs != nil {
		if n := m.deps.Jobs.InFlight(); n > 0 {
			m.logger.Info().Int("jobs", n).Msg("waiting for publish jobs")
		}
		if err := m.deps.Jobs.Wait(shutdownCtx); err != nil {
			m.logger.Warn().Err(err).Str(xglog.FieldEvent, "publish.abandoned").Msg("publish jobs still running at shutdown")
			errs = append(errs, err)
		}
	}

	for i := len(hooks) - 1; i >= 0; i-- {
		h := hooks[i]
		start := time.Now()
		if err := h.hook(shutdownCtx); err != nil {
			m.logger.Error().Err(err).Str("hook", h.name).Dur("duration", time.Since(start)).Msg("shutdown hook failed")
			errs = append(errs, fmt.Errorf("hook %s: %w", h.name, err))
		}
	}

	if len(errs) > 0 {
		m.logger.Error().Int("error_count", len(errs)).Msg("shutdown completed with errors")
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	m.logger.Info().Msg("daemon manager stopped cleanly")
	return nil
}
