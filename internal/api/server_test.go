// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ManuGH/replay/internal/health"
	"github.com/ManuGH/replay/internal/obsws"
	"github.com/ManuGH/replay/internal/session"
	"github.com/ManuGH/replay/internal/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSession session.State

func (f fixedSession) Snapshot() session.State { return session.State(f) }

type fakeCommander struct {
	starts, stops int
	err           error
}

func (f *fakeCommander) StartRecording() (string, error) {
	f.starts++
	if f.err != nil {
		return "", f.err
	}
	return "req-start", nil
}

func (f *fakeCommander) StopRecording() (string, error) {
	f.stops++
	if f.err != nil {
		return "", f.err
	}
	return "req-stop", nil
}

func newTestServer(cmd *fakeCommander, board *status.Latest) http.Handler {
	st := fixedSession(session.State{Connection: session.Identified, Recording: "OBS_WEBSOCKET_OUTPUT_STARTED", HasCredential: true})
	return New(Deps{Session: st, Commands: cmd, Status: board, Version: "test"}).Handler()
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func TestStatusEndpoint(t *testing.T) {
	board := status.NewLatest()
	h := newTestServer(&fakeCommander{}, board)

	w := do(t, h, http.MethodGet, "/api/v1/status")
	require.Equal(t, http.StatusOK, w.Code)
	var empty StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &empty))
	assert.Equal(t, "identified", empty.Connection)
	assert.Equal(t, "OBS_WEBSOCKET_OUTPUT_STARTED", empty.Recording)
	assert.True(t, empty.HasCredential)
	assert.Empty(t, empty.Status)
	assert.Nil(t, empty.StatusAt)

	board.Publish("Uploaded: abc123")
	w = do(t, h, http.MethodGet, "/api/v1/status")
	var got StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Uploaded: abc123", got.Status)
	assert.Equal(t, uint64(1), got.StatusSeq)
	assert.NotNil(t, got.StatusAt)
}

func TestRecordingCommands(t *testing.T) {
	cmd := &fakeCommander{}
	h := newTestServer(cmd, status.NewLatest())

	w := do(t, h, http.MethodPost, "/api/v1/recording/start")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"requestId":"req-start"}`, w.Body.String())

	w = do(t, h, http.MethodPost, "/api/v1/recording/stop")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, cmd.starts)
	assert.Equal(t, 1, cmd.stops)

	w = do(t, h, http.MethodGet, "/api/v1/recording/start")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRecordingCommandTransportError(t *testing.T) {
	cmd := &fakeCommander{err: fmt.Errorf("%w: not connected", obsws.ErrTransport)}
	h := newTestServer(cmd, status.NewLatest())

	w := do(t, h, http.MethodPost, "/api/v1/recording/start")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not connected")
	assert.Contains(t, w.Body.String(), "control_plane_unavailable")

	cmd.err = errors.New("encode failed")
	w = do(t, h, http.MethodPost, "/api/v1/recording/stop")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecordingCommandsAreRateLimited(t *testing.T) {
	cmd := &fakeCommander{}
	h := newTestServer(cmd, status.NewLatest())

	for i := 0; i < 10; i++ {
		require.Equal(t, http.StatusAccepted, do(t, h, http.MethodPost, "/api/v1/recording/start").Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/api/v1/recording/start").Code)
	assert.Equal(t, 10, cmd.starts)

	// Reads are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/v1/status").Code)
}

func TestProbesAndMetrics(t *testing.T) {
	hm := health.NewManager("test")
	hm.RegisterChecker(health.NewCredentialChecker(func() bool { return false }))
	h := New(Deps{Commands: &fakeCommander{}, Health: hm}).Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/healthz").Code)

	w := do(t, h, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, w.Code, "degraded is still ready")
	assert.Contains(t, w.Body.String(), `"degraded"`)

	w = do(t, h, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "replay_http_request_duration_seconds")
}
