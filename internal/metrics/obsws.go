// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics exposes Prometheus instrumentation for replay. All
// collectors register with the default registry through promauto.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	obswsFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_obsws_frames_total",
		Help: "Total number of decoded control-plane frames by op code",
	}, []string{"op"})

	obswsDecodeErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "replay_obsws_decode_errors_total",
		Help: "Total number of malformed control-plane frames that were dropped",
	})

	obswsRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_obsws_requests_total",
		Help: "Total number of outbound control-plane requests by type and result",
	}, []string{"type", "result"}) // result=sent|transport_error

	sessionConnectionState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "replay_session_connection_state",
		Help: "Control-plane connection state (0=disconnected, 1=connecting, 2=identified)",
	})
)

// IncFrame records one decoded inbound frame.
func IncFrame(op int) {
	obswsFramesTotal.WithLabelValues(strconv.Itoa(op)).Inc()
}

// IncDecodeError records one dropped malformed frame.
func IncDecodeError() {
	obswsDecodeErrorsTotal.Inc()
}

// IncRequest records an outbound request attempt.
func IncRequest(requestType, result string) {
	if requestType == "" {
		requestType = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	obswsRequestsTotal.WithLabelValues(requestType, result).Inc()
}

// SetConnectionState publishes the tracker's connection state ordinal.
func SetConnectionState(ordinal int) {
	sessionConnectionState.Set(float64(ordinal))
}
