// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package health

import (
	"context"
)

// FuncChecker adapts a plain function to Checker.
type FuncChecker struct {
	name string
	fn   func(context.Context) CheckResult
}

// NewFuncChecker creates a named checker around fn.
func NewFuncChecker(name string, fn func(context.Context) CheckResult) *FuncChecker {
	return &FuncChecker{name: name, fn: fn}
}

func (c *FuncChecker) Name() string { return c.name }

func (c *FuncChecker) Check(ctx context.Context) CheckResult { return c.fn(ctx) }

// NewControlPlaneChecker reports whether the OBS socket has completed the
// identify handshake. A missing control plane degrades the service but the
// daemon keeps reconnecting, so it is never unhealthy.
func NewControlPlaneChecker(state func() string, identified func() bool) *FuncChecker {
	return NewFuncChecker("obs", func(context.Context) CheckResult {
		if identified() {
			return CheckResult{Status: StatusHealthy, Message: state()}
		}
		return CheckResult{Status: StatusDegraded, Message: state()}
	})
}

// NewCredentialChecker reports whether a YouTube credential is loaded.
func NewCredentialChecker(present func() bool) *FuncChecker {
	return NewFuncChecker("youtube", func(context.Context) CheckResult {
		if present() {
			return CheckResult{Status: StatusHealthy, Message: "credential loaded"}
		}
		return CheckResult{Status: StatusDegraded, Message: "not authenticated"}
	})
}
