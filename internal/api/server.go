// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package api serves the local HTTP control and status surface.
package api

import (
	"net/http"

	"github.com/ManuGH/replay/internal/api/middleware"
	"github.com/ManuGH/replay/internal/health"
	"github.com/ManuGH/replay/internal/session"
	"github.com/ManuGH/replay/internal/status"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SessionSource exposes the tracker's current state.
type SessionSource interface {
	Snapshot() session.State
}

// Commander issues recording commands to the control plane.
type Commander interface {
	StartRecording() (string, error)
	StopRecording() (string, error)
}

// StatusBoard returns the latest status line.
type StatusBoard interface {
	Get() (status.Entry, uint64)
}

// Deps are the collaborators the HTTP surface reads from and writes to.
type Deps struct {
	Session  SessionSource
	Commands Commander
	Status   StatusBoard
	Health   *health.Manager

	Version        string
	TracingService string
}

// Server is the HTTP surface. It holds no state of its own.
type Server struct {
	deps Deps
}

// New creates a server.
func New(deps Deps) *Server {
	if deps.Health == nil {
		deps.Health = health.NewManager(deps.Version)
	}
	return &Server{deps: deps}
}

// Handler returns the configured HTTP handler with all routes and middleware applied.
func (s *Server) Handler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableMetrics:  true,
		TracingService: s.deps.TracingService,
		EnableLogging:  true,
	})

	r.Get("/healthz", s.deps.Health.ServeHealth)
	r.Get("/readyz", s.deps.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Group(func(r chi.Router) {
			r.Use(middleware.CommandRateLimit())
			r.Post("/recording/start", s.handleStartRecording)
			r.Post("/recording/stop", s.handleStopRecording)
		})
	})
	return r
}
