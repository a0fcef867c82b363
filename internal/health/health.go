// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package health serves the daemon's liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ManuGH/replay/internal/log"
)

// Status is a component or aggregate health level.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) rank() int {
	switch s {
	case StatusDegraded:
		return 1
	case StatusUnhealthy:
		return 2
	default:
		return 0
	}
}

// CheckResult is the outcome of one Checker.
type CheckResult struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// Checker is a named component probe.
type Checker interface {
	Name() string
	Check(ctx context.Context) CheckResult
}

// Report is the body of both probes. Ready is false only when some check is
// unhealthy; degraded components are reported but tolerated.
type Report struct {
	Status        Status                 `json:"status"`
	Ready         bool                   `json:"ready"`
	Version       string                 `json:"version,omitempty"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Timestamp     time.Time              `json:"timestamp"`
	Checks        map[string]CheckResult `json:"checks,omitempty"`
}

// Manager aggregates registered checkers.
type Manager struct {
	version string
	started time.Time
	now     func() time.Time

	mu       sync.RWMutex
	checkers []Checker
}

// NewManager creates a manager with no checkers.
func NewManager(version string) *Manager {
	return &Manager{version: version, started: time.Now(), now: time.Now}
}

// RegisterChecker adds c to every subsequent evaluation.
func (m *Manager) RegisterChecker(c Checker) {
	m.mu.Lock()
	m.checkers = append(m.checkers, c)
	m.mu.Unlock()
}

// Evaluate runs every checker and folds the results into a Report.
func (m *Manager) Evaluate(ctx context.Context) Report {
	m.mu.RLock()
	checkers := append([]Checker(nil), m.checkers...)
	m.mu.RUnlock()

	r := m.report()
	if len(checkers) > 0 {
		r.Checks = make(map[string]CheckResult, len(checkers))
	}
	for _, c := range checkers {
		res := c.Check(ctx)
		r.Checks[c.Name()] = res
		if res.Status.rank() > r.Status.rank() {
			r.Status = res.Status
		}
	}
	r.Ready = r.Status != StatusUnhealthy
	return r
}

func (m *Manager) report() Report {
	now := m.now()
	return Report{
		Status:        StatusHealthy,
		Ready:         true,
		Version:       m.version,
		UptimeSeconds: int64(now.Sub(m.started).Seconds()),
		Timestamp:     now,
	}
}

// ServeHealth answers liveness: always 200 while the process can respond.
// Component checks are included only with ?verbose=true.
func (m *Manager) ServeHealth(w http.ResponseWriter, r *http.Request) {
	rep := m.report()
	if r.URL.Query().Get("verbose") == "true" {
		rep = m.Evaluate(r.Context())
	}
	m.write(w, r, http.StatusOK, rep)
}

// ServeReady answers readiness: 503 when any component is unhealthy.
func (m *Manager) ServeReady(w http.ResponseWriter, r *http.Request) {
	rep := m.Evaluate(r.Context())
	code := http.StatusOK
	if !rep.Ready {
		code = http.StatusServiceUnavailable
	}
	m.write(w, r, code, rep)

	logger := log.ComponentFromContext(r.Context(), "health")
	logger.Debug().
		Str(log.FieldEvent, "health.ready_checked").
		Str("status", string(rep.Status)).
		Msg("readiness evaluated")
}

func (m *Manager) write(w http.ResponseWriter, r *http.Request, code int, rep Report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		logger := log.ComponentFromContext(r.Context(), "health")
		logger.Warn().Err(err).Msg("probe response not written")
	}
}
