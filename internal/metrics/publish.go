// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	publishJobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_publish_jobs_total",
		Help: "Total number of auto-publish jobs by terminal outcome",
	}, []string{"outcome"})

	publishStepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "replay_publish_step_duration_seconds",
		Help:    "Duration of auto-publish steps",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 3600},
	}, []string{"step", "result"})
)

// IncPublishJob records a job reaching its terminal outcome.
// outcome ∈ {succeeded,thumbnail_partial_failure,failed}; anything else is "unknown".
func IncPublishJob(outcome string) {
	publishJobsTotal.WithLabelValues(normalizeOutcome(outcome)).Inc()
}

// ObservePublishStep records the duration of one pipeline step.
func ObservePublishStep(step, result string, d time.Duration) {
	if step == "" {
		step = "unknown"
	}
	if result == "" {
		result = "unknown"
	}
	publishStepDuration.WithLabelValues(step, result).Observe(d.Seconds())
}

func normalizeOutcome(outcome string) string {
	switch o := strings.ToLower(strings.TrimSpace(outcome)); o {
	case "succeeded", "thumbnail_partial_failure", "failed":
		return o
	default:
		return "unknown"
	}
}
