// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package procgroup

import (
	"os/exec"
	"syscall"
	"time"

	"github.com/ManuGH/replay/internal/metrics"
)

// Terminate stops the process group of cmd: SIGTERM, then SIGKILL once grace
// has elapsed. waitCh must deliver the result of cmd.Wait; Terminate always
// drains it and returns that result.
func Terminate(cmd *exec.Cmd, waitCh <-chan error, grace time.Duration) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}

	signal(cmd, syscall.SIGTERM)

	select {
	case err := <-waitCh:
		observeWait(err, false)
		return err
	case <-time.After(grace):
	}

	signal(cmd, syscall.SIGKILL)
	err := <-waitCh
	observeWait(err, true)
	return err
}

func signal(cmd *exec.Cmd, sig syscall.Signal) {
	name := "SIGTERM"
	if sig == syscall.SIGKILL {
		name = "SIGKILL"
	}
	if err := Kill(cmd, sig); err != nil {
		metrics.IncProcTerminate(name, "error")
		return
	}
	metrics.IncProcTerminate(name, "sent")
}

func observeWait(err error, forced bool) {
	switch {
	case forced && err == nil:
		metrics.IncProcWait("forced_exit0")
	case forced:
		metrics.IncProcWait("forced_error")
	case err == nil:
		metrics.IncProcWait("exit0")
	default:
		metrics.IncProcWait("exit_nonzero")
	}
}
