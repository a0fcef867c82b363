// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daemon

import "errors"

var (
	// ErrMissingLogger is returned when logger is not provided
	ErrMissingLogger = errors.New("logger is required")

	// ErrMissingSession is returned when no session runner is provided
	ErrMissingSession = errors.New("session runner is required")

	// ErrMissingAPIHandler is returned when a listen address is set without a handler
	ErrMissingAPIHandler = errors.New("API handler is required when listen address is set")

	// ErrManagerNotStarted is returned when trying to shutdown a manager that hasn't started
	ErrManagerNotStarted = errors.New("manager not started")

	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("manager already started")
)
