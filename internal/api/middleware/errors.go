// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/ManuGH/replay/internal/log"
)

// ErrorBody is the JSON shape of every error the local API returns.
type ErrorBody struct {
	Error     string `json:"error"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// WriteError writes an ErrorBody tagged with the request id from r.
func WriteError(w http.ResponseWriter, r *http.Request, code int, kind string) {
	WriteErrorDetail(w, r, code, kind, "")
}

// WriteErrorDetail is WriteError with a human readable detail.
func WriteErrorDetail(w http.ResponseWriter, r *http.Request, code int, kind, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error:     kind,
		Detail:    detail,
		RequestID: log.RequestIDFromContext(r.Context()),
	})
}
