// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldRequestID     = "request_id"
	FieldJobID         = "job_id"
	FieldRemoteID      = "remote_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldStep      = "step"
	FieldOutcome   = "outcome"

	// Protocol fields
	FieldOpCode      = "op"
	FieldEventType   = "event_type"
	FieldRequestType = "request_type"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"

	// Path / URL fields
	FieldPath          = "path"
	FieldThumbnailPath = "thumbnail_path"
	FieldURL           = "url"
)
