// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ManuGH/replay/internal/log"
	"github.com/go-chi/httprate"
)

// Default budget for recording commands per client.
const (
	CommandLimit  = 10
	CommandWindow = time.Minute
)

// RateLimitConfig bounds requests per key within a sliding window.
type RateLimitConfig struct {
	RequestLimit int
	WindowSize   time.Duration
	KeyFunc      httprate.KeyFunc // client IP when nil
}

// RateLimit rejects requests over budget with 429, a Retry-After header and
// a JSON error body.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	key := cfg.KeyFunc
	if key == nil {
		key = httprate.KeyByIP
	}
	retryAfter := strconv.Itoa(int(cfg.WindowSize / time.Second))

	return httprate.Limit(cfg.RequestLimit, cfg.WindowSize,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			logger := log.ComponentFromContext(r.Context(), "api")
			logger.Warn().
				Str(log.FieldEvent, "http.rate_limited").
				Str(log.FieldPath, r.URL.Path).
				Msg("command rate limit exceeded")
			w.Header().Set("Retry-After", retryAfter)
			WriteError(w, r, http.StatusTooManyRequests, "rate_limit_exceeded")
		}),
	)
}

// CommandRateLimit guards the recording start/stop routes.
func CommandRateLimit() func(http.Handler) http.Handler {
	return RateLimit(RateLimitConfig{RequestLimit: CommandLimit, WindowSize: CommandWindow})
}
