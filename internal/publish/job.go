// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package publish turns a finished recording into a published remote video:
// extract a still frame, upload the recording, then patch the remote thumbnail.
package publish

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrSourceMissing means the recording did not exist when the job started.
	ErrSourceMissing = errors.New("source file missing")
	// ErrExtractionFailed means no still frame was produced.
	ErrExtractionFailed = errors.New("frame extraction failed")
	// ErrUploadFailed means the remote platform did not accept the recording.
	ErrUploadFailed = errors.New("upload failed")
	// ErrThumbnail classifies thumbnail-stage failures. They are warnings only.
	ErrThumbnail = errors.New("thumbnail update failed")
)

// Outcome is the terminal state of a Job.
type Outcome int

const (
	Pending Outcome = iota
	Succeeded
	ThumbnailPartialFailure
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "pending"
	case Succeeded:
		return "succeeded"
	case ThumbnailPartialFailure:
		return "thumbnail_partial_failure"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Delivered reports whether the recording reached the remote platform.
// ThumbnailPartialFailure counts as delivered.
func (o Outcome) Delivered() bool {
	return o == Succeeded || o == ThumbnailPartialFailure
}

// Credential is opaque authorization material for the remote platform.
type Credential interface {
	// Present reports whether the credential can authorize remote calls.
	Present() bool
}

// Metadata describes the remote video created by an upload.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	CategoryID  string
	Privacy     string
}

// Extractor produces a still image from a video. An empty outputPath selects
// DefaultFramePath. Existing files at the output path are overwritten.
type Extractor interface {
	ExtractFrame(ctx context.Context, videoPath, outputPath string) (string, error)
}

// Uploader submits a video and returns its remote identifier.
type Uploader interface {
	UploadVideo(ctx context.Context, cred Credential, path string, meta Metadata) (string, error)
}

// ThumbnailSetter replaces the remote thumbnail of a video.
type ThumbnailSetter interface {
	SetThumbnail(ctx context.Context, cred Credential, remoteID, imagePath string) error
}

// DefaultFramePath returns <dir>/<basename>_first_frame.png for videoPath.
func DefaultFramePath(videoPath string) string {
	dir := filepath.Dir(videoPath)
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(dir, base+"_first_frame.png")
}

// Result is the final record of one publish attempt.
type Result struct {
	JobID         string
	SourcePath    string
	ThumbnailPath string
	RemoteID      string
	Outcome       Outcome
	Err           error   // set when Outcome is Failed
	Warnings      []error // non-fatal failures
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Job is a handle to an asynchronous publish attempt.
type Job struct {
	id     string
	source string
	done   chan struct{}
	result Result
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// SourcePath returns the recording the job publishes.
func (j *Job) SourcePath() string { return j.source }

// Done is closed once the job reached its terminal outcome.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the job finished or ctx is done.
func (j *Job) Wait(ctx context.Context) (Result, error) {
	select {
	case <-j.done:
		return j.result, nil
	case <-ctx.Done():
		return Result{JobID: j.id, SourcePath: j.source, Outcome: Pending}, ctx.Err()
	}
}
