// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	procTerminateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_procgroup_signal_total",
		Help: "Signals sent to subprocess groups",
	}, []string{"signal", "result"})

	procWaitTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_procgroup_wait_total",
		Help: "Subprocess exits observed after termination",
	}, []string{"result"})

	ffmpegExtractTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "replay_ffmpeg_extract_total",
		Help: "Frame extractions by result",
	}, []string{"result"}) // ok|source_missing|exit_error|timeout|no_output
)

// IncProcTerminate records a signal sent to a process group.
func IncProcTerminate(signal, result string) {
	procTerminateTotal.WithLabelValues(signal, result).Inc()
}

// IncProcWait records how a terminated process exited.
func IncProcWait(result string) {
	procWaitTotal.WithLabelValues(result).Inc()
}

// IncFFmpegExtract records one frame extraction.
func IncFFmpegExtract(result string) {
	ffmpegExtractTotal.WithLabelValues(result).Inc()
}
