// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var untraced = map[string]bool{"/healthz": true, "/readyz": true, "/metrics": true}

// OTelHTTP opens a server span per request, except for probes and scrapes.
func OTelHTTP(operation string) func(http.Handler) http.Handler {
	return otelhttp.NewMiddleware(operation,
		otelhttp.WithFilter(shouldTrace),
		otelhttp.WithSpanNameFormatter(spanNameFormatter),
	)
}

func shouldTrace(r *http.Request) bool { return !untraced[r.URL.Path] }

func spanNameFormatter(_ string, r *http.Request) string {
	return "HTTP " + r.Method + " " + r.URL.Path
}
