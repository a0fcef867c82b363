// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package session tracks the control-plane connection and recording state
// and decides when a finished recording is handed to the publish pipeline.
package session

import "github.com/ManuGH/replay/internal/obsws"

// ConnectionState is the lifecycle of the control-plane connection.
type ConnectionState int

const (
	Disconnected ConnectionState = iota
	Connecting
	Identified
)

func (c ConnectionState) String() string {
	switch c {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Identified:
		return "identified"
	default:
		return "unknown"
	}
}

// State is the (connection, recording, credential) triple owned by the Tracker.
type State struct {
	Connection    ConnectionState
	Recording     string // last outputState reported by the control plane
	HasCredential bool
}

// RecordingStopped reports whether the last recording state is the
// terminating sentinel.
func (s State) RecordingStopped() bool {
	return s.Recording == obsws.OutputStopped
}

// Config is the already-resolved configuration the tracker needs.
type Config struct {
	SocketURL       string
	PathRemapPrefix string
	UploadEnabled   bool
}

// Remap translates a path reported by the control plane into the local
// namespace by plain prefix concatenation.
func Remap(prefix, outputPath string) string {
	return prefix + outputPath
}
