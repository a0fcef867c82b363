// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys shared by publish and control-plane spans.
const (
	JobIDKey       = "job.id"
	JobSourceKey   = "job.source"
	JobOutcomeKey  = "job.outcome"
	JobRemoteIDKey = "job.remote_id"

	StepNameKey = "step.name"

	RequestTypeKey = "obs.request_type"
	RequestIDKey   = "obs.request_id"
)

// JobAttributes creates the attributes of a publish job span.
func JobAttributes(jobID, sourcePath string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(JobIDKey, jobID),
		attribute.String(JobSourceKey, sourcePath),
	}
}

// OutcomeAttributes describes how a job ended. remoteID is omitted when empty.
func OutcomeAttributes(outcome, remoteID string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(JobOutcomeKey, outcome)}
	if remoteID != "" {
		attrs = append(attrs, attribute.String(JobRemoteIDKey, remoteID))
	}
	return attrs
}

// RequestAttributes creates attributes for an outbound control-plane request.
func RequestAttributes(requestType, requestID string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(RequestTypeKey, requestType),
		attribute.String(RequestIDKey, requestID),
	}
}
