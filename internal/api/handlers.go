// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ManuGH/replay/internal/api/middleware"
	"github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/obsws"
)

// StatusResponse is the body of GET /api/v1/status.
type StatusResponse struct {
	Connection    string     `json:"connection"`
	Recording     string     `json:"recording,omitempty"`
	HasCredential bool       `json:"hasCredential"`
	Status        string     `json:"status,omitempty"`
	StatusAt      *time.Time `json:"statusAt,omitempty"`
	StatusSeq     uint64     `json:"statusSeq"`
	Version       string     `json:"version,omitempty"`
}

// CommandResponse is the body of an accepted recording command.
type CommandResponse struct {
	RequestID string `json:"requestId"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{Version: s.deps.Version}
	if s.deps.Session != nil {
		st := s.deps.Session.Snapshot()
		resp.Connection = st.Connection.String()
		resp.Recording = st.Recording
		resp.HasCredential = st.HasCredential
	}
	if s.deps.Status != nil {
		entry, seq := s.deps.Status.Get()
		resp.StatusSeq = seq
		if seq > 0 {
			resp.Status = entry.Text
			at := entry.At
			resp.StatusAt = &at
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartRecording(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, "start", s.deps.Commands.StartRecording)
}

func (s *Server) handleStopRecording(w http.ResponseWriter, r *http.Request) {
	s.handleCommand(w, r, "stop", s.deps.Commands.StopRecording)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request, name string, send func() (string, error)) {
	logger := log.ComponentFromContext(r.Context(), "api")

	id, err := send()
	if err != nil {
		logger.Warn().Err(err).Str(log.FieldEvent, "api.command_failed").Str("command", name).Msg("recording command not sent")
		if errors.Is(err, obsws.ErrTransport) {
			middleware.WriteErrorDetail(w, r, http.StatusServiceUnavailable, "control_plane_unavailable", err.Error())
			return
		}
		middleware.WriteErrorDetail(w, r, http.StatusInternalServerError, "command_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, CommandResponse{RequestID: id})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
