// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package ffmpeg extracts still frames from recordings with an ffmpeg
// subprocess.
package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/metrics"
	"github.com/ManuGH/replay/internal/procgroup"
	"github.com/ManuGH/replay/internal/publish"
	"github.com/rs/zerolog"
)

const (
	stderrLines  = 20
	defaultGrace = 2 * time.Second
)

// Extractor runs `ffmpeg -i <video> -vframes 1 -y <out>`.
type Extractor struct {
	bin     string
	timeout time.Duration
	grace   time.Duration
	logger  zerolog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithKillGrace sets how long a timed-out ffmpeg gets between SIGTERM and SIGKILL.
func WithKillGrace(d time.Duration) Option {
	return func(e *Extractor) { e.grace = d }
}

// WithLogger sets the extractor logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns an extractor for the given binary. A zero timeout
// means no limit beyond the caller's context.
func NewExtractor(bin string, timeout time.Duration, opts ...Option) *Extractor {
	if bin == "" {
		bin = "ffmpeg"
	}
	e := &Extractor{
		bin:     bin,
		timeout: timeout,
		grace:   defaultGrace,
		logger:  log.WithComponent("ffmpeg"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Args returns the ffmpeg argument list for one extraction.
func Args(videoPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-loglevel", "error",
		"-i", videoPath,
		"-vframes", "1",
		"-y", outputPath,
	}
}

// ExtractFrame writes the first frame of videoPath to outputPath, or to
// publish.DefaultFramePath when outputPath is empty, and returns the path
// written. Errors wrap publish.ErrSourceMissing or publish.ErrExtractionFailed.
func (e *Extractor) ExtractFrame(ctx context.Context, videoPath, outputPath string) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		metrics.IncFFmpegExtract("source_missing")
		return "", fmt.Errorf("%w: %s", publish.ErrSourceMissing, videoPath)
	}
	if outputPath == "" {
		outputPath = publish.DefaultFramePath(videoPath)
	}
	logger := log.WithContext(ctx, e.logger)

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	args := Args(videoPath, outputPath)
	cmd := exec.Command(e.bin, args...) // #nosec G204 -- binary comes from configuration
	procgroup.Set(cmd)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		metrics.IncFFmpegExtract("exit_error")
		return "", fmt.Errorf("%w: stderr pipe: %v", publish.ErrExtractionFailed, err)
	}

	logger.Debug().Str("bin", e.bin).Strs("args", args).Msg("starting ffmpeg")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		metrics.IncFFmpegExtract("exit_error")
		return "", fmt.Errorf("%w: start %s: %v", publish.ErrExtractionFailed, e.bin, err)
	}

	ring := NewLineRing(stderrLines)
	waitCh := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			_, _ = ring.Write(scanner.Bytes())
		}
		waitCh <- cmd.Wait()
	}()

	var runErr error
	timedOut := false
	select {
	case runErr = <-waitCh:
	case <-ctx.Done():
		timedOut = true
		logger.Warn().Err(ctx.Err()).Int("pid", cmd.Process.Pid).Msg("ffmpeg deadline reached, terminating process group")
		runErr = procgroup.Terminate(cmd, waitCh, e.grace)
	}

	tail := ring.LastN(stderrLines)
	if timedOut {
		metrics.IncFFmpegExtract("timeout")
		return "", extractionError(fmt.Errorf("ffmpeg interrupted: %w", ctx.Err()), tail)
	}
	if runErr != nil {
		metrics.IncFFmpegExtract("exit_error")
		logger.Warn().Err(runErr).Strs("stderr", tail).Msg("ffmpeg failed")
		return "", extractionError(runErr, tail)
	}

	if fi, err := os.Stat(outputPath); err != nil || fi.Size() == 0 {
		metrics.IncFFmpegExtract("no_output")
		return "", extractionError(fmt.Errorf("no frame written to %s", outputPath), tail)
	}

	metrics.IncFFmpegExtract("ok")
	logger.Info().
		Str(log.FieldPath, videoPath).
		Str(log.FieldThumbnailPath, outputPath).
		Dur("duration", time.Since(start)).
		Msg("frame extracted")
	return outputPath, nil
}

func extractionError(cause error, stderr []string) error {
	if errors.Is(cause, publish.ErrExtractionFailed) {
		return cause
	}
	if len(stderr) == 0 {
		return fmt.Errorf("%w: %v", publish.ErrExtractionFailed, cause)
	}
	return fmt.Errorf("%w: %v: %s", publish.ErrExtractionFailed, cause, strings.Join(stderr, " | "))
}
