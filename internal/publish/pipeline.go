// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package publish

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ManuGH/replay/internal/fsutil"
	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/metrics"
	"github.com/ManuGH/replay/internal/status"
	"github.com/ManuGH/replay/internal/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ThumbnailDir is created beside the source recording.
	ThumbnailDir = "thumbnails"

	titleLayout        = "2006-01-02 15:04:05"
	defaultDescription = "Auto-uploaded from Replay App"
	watchURLPrefix     = "https://www.youtube.com/watch?v="
)

// Pipeline runs publish jobs. Jobs share nothing but the status sink.
type Pipeline struct {
	extractor Extractor
	uploader  Uploader
	thumbs    ThumbnailSetter

	sink         status.Sink
	logger       zerolog.Logger
	tracer       trace.Tracer
	now          func() time.Time
	newID        func() string
	template     Metadata
	deleteSource bool

	wg       sync.WaitGroup
	inFlight atomic.Int64
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStatusSink sets where step transitions are reported.
func WithStatusSink(s status.Sink) Option {
	return func(p *Pipeline) { p.sink = s }
}

// WithLogger sets the pipeline logger.
func WithLogger(l zerolog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer overrides the tracer used for job and step spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithClock overrides the clock used for titles and timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithMetadata sets the description, tags, category and privacy applied to
// every upload. The title is always generated.
func WithMetadata(m Metadata) Option {
	return func(p *Pipeline) { p.template = m }
}

// WithDeleteSource controls whether the local recording is removed after a
// successful upload. Defaults to true.
func WithDeleteSource(enabled bool) Option {
	return func(p *Pipeline) { p.deleteSource = enabled }
}

// New creates a pipeline around the three collaborators.
func New(extractor Extractor, uploader Uploader, thumbs ThumbnailSetter, opts ...Option) *Pipeline {
	p := &Pipeline{
		extractor: extractor,
		uploader:  uploader,
		thumbs:    thumbs,
		sink:      status.Discard,
		logger:    xglog.WithComponent("publish"),
		tracer:    otel.Tracer("github.com/ManuGH/replay/internal/publish"),
		now:       time.Now,
		newID:     uuid.NewString,
		template: Metadata{
			Description: defaultDescription,
			Privacy:     "private",
			CategoryID:  "22",
		},
		deleteSource: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish starts a job in the background and returns immediately. The job
// is detached from ctx cancellation and runs to completion or failure.
func (p *Pipeline) Publish(ctx context.Context, sourcePath string, cred Credential) *Job {
	j := &Job{
		id:     p.newID(),
		source: sourcePath,
		done:   make(chan struct{}),
	}
	jobCtx := context.WithoutCancel(ctx)

	p.wg.Add(1)
	p.inFlight.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.inFlight.Add(-1)
		j.result = p.run(jobCtx, j.id, sourcePath, cred)
		close(j.done)
	}()
	return j
}

// Run executes one job synchronously.
func (p *Pipeline) Run(ctx context.Context, sourcePath string, cred Credential) Result {
	return p.run(ctx, p.newID(), sourcePath, cred)
}

// InFlight returns the number of running jobs.
func (p *Pipeline) InFlight() int {
	return int(p.inFlight.Load())
}

// Wait blocks until every started job has finished or ctx is done.
func (p *Pipeline) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for %d publish job(s): %w", p.InFlight(), ctx.Err())
	}
}

func (p *Pipeline) run(ctx context.Context, jobID, sourcePath string, cred Credential) Result {
	ctx = xglog.ContextWithJobID(ctx, jobID)
	logger := xglog.WithContext(ctx, p.logger)

	ctx, span := p.tracer.Start(ctx, "publish.job", trace.WithAttributes(telemetry.JobAttributes(jobID, sourcePath)...))
	defer span.End()

	res := Result{
		JobID:      jobID,
		SourcePath: sourcePath,
		Outcome:    Pending,
		StartedAt:  p.now(),
	}
	logger.Info().Str(xglog.FieldEvent, "publish.started").Str(xglog.FieldPath, sourcePath).Msg("publish job started")

	p.execute(ctx, logger, &res, cred)

	res.FinishedAt = p.now()
	metrics.IncPublishJob(res.Outcome.String())
	span.SetAttributes(telemetry.OutcomeAttributes(res.Outcome.String(), res.RemoteID)...)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}

	evt := logger.Info()
	if res.Outcome == Failed {
		evt = logger.Error().Err(res.Err)
	}
	evt.Str(xglog.FieldEvent, "publish.finished").
		Str(xglog.FieldOutcome, res.Outcome.String()).
		Str(xglog.FieldRemoteID, res.RemoteID).
		Dur("duration", res.FinishedAt.Sub(res.StartedAt)).
		Msg("publish job finished")

	p.sink.Publish(finalStatus(res))
	return res
}

func (p *Pipeline) execute(ctx context.Context, logger zerolog.Logger, res *Result, cred Credential) {
	if cred == nil || !cred.Present() {
		res.Outcome = Failed
		res.Err = fmt.Errorf("%w: no credential", ErrUploadFailed)
		return
	}

	if err := fsutil.IsRegularFile(res.SourcePath); err != nil {
		res.Outcome = Failed
		res.Err = fmt.Errorf("%w: %s: %v", ErrSourceMissing, res.SourcePath, err)
		return
	}

	// 1. Extract
	p.sink.Publish("Extracting thumbnail...")
	var framePath string
	if !p.step(ctx, logger, res, StepExtract, func(ctx context.Context) error {
		out, err := p.extractor.ExtractFrame(ctx, res.SourcePath, DefaultFramePath(res.SourcePath))
		if err != nil {
			return err
		}
		if _, statErr := os.Stat(out); statErr != nil {
			return fmt.Errorf("no output at %s: %v", out, statErr)
		}
		framePath = out
		return nil
	}) {
		return
	}
	res.ThumbnailPath = framePath
	p.sink.Publish("Thumbnail extracted")

	// 2. Upload
	p.sink.Publish("Uploading to YouTube...")
	meta := p.template
	meta.Title = "Recording " + p.now().Format(titleLayout)
	if !p.step(ctx, logger, res, StepUpload, func(ctx context.Context) error {
		id, err := p.uploader.UploadVideo(ctx, cred, res.SourcePath, meta)
		if err != nil {
			return err
		}
		if strings.TrimSpace(id) == "" {
			return errors.New("empty remote id")
		}
		res.RemoteID = id
		return nil
	}) {
		return
	}
	res.Outcome = Succeeded
	p.sink.Publish("Uploaded: " + res.RemoteID)
	logger.Info().Str(xglog.FieldRemoteID, res.RemoteID).Str(xglog.FieldURL, watchURLPrefix+res.RemoteID).Msg("video uploaded")

	if p.deleteSource {
		p.step(ctx, logger, res, StepDeleteSource, func(context.Context) error {
			return os.Remove(res.SourcePath)
		})
	}

	// 3. Thumbnail
	p.sink.Publish("Setting YouTube thumbnail...")
	if p.step(ctx, logger, res, StepThumbnail, func(ctx context.Context) error {
		if err := p.thumbs.SetThumbnail(ctx, cred, res.RemoteID, framePath); err != nil {
			return err
		}
		dest, err := moveThumbnail(framePath, res.SourcePath, res.RemoteID)
		if err != nil {
			return err
		}
		res.ThumbnailPath = dest
		return nil
	}) && res.Outcome == Succeeded {
		p.sink.Publish("Thumbnail set: " + res.ThumbnailPath)
	}
}

// step runs fn under the policy for s and reports whether it succeeded. An
// abortJob failure marks the job Failed; a warnOnly failure is recorded and
// the job carries on.
func (p *Pipeline) step(ctx context.Context, logger zerolog.Logger, res *Result, s Step, fn func(context.Context) error) bool {
	pol := policies[s]

	ctx, span := p.tracer.Start(ctx, "publish."+string(s), trace.WithAttributes(attribute.String(telemetry.StepNameKey, string(s))))
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	if err == nil {
		metrics.ObservePublishStep(string(s), "ok", time.Since(start))
		return true
	}
	metrics.ObservePublishStep(string(s), "error", time.Since(start))

	if pol.class != nil && !errors.Is(err, pol.class) && !errors.Is(err, ErrSourceMissing) {
		err = fmt.Errorf("%w: %w", pol.class, err)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	switch pol.onFailure {
	case abortJob:
		res.Outcome = Failed
		res.Err = err
		logger.Error().Err(err).Str(xglog.FieldStep, string(s)).Msg("publish step failed")
		return false
	default:
		res.Warnings = append(res.Warnings, err)
		if pol.degrades && res.Outcome == Succeeded {
			res.Outcome = ThumbnailPartialFailure
		}
		logger.Warn().Err(err).Str(xglog.FieldStep, string(s)).Msg("publish step failed, continuing")
		p.sink.Publish(warningStatus(s, err))
		return false
	}
}

// moveThumbnail moves framePath to <source-dir>/thumbnails/<remoteID><ext>.
func moveThumbnail(framePath, sourcePath, remoteID string) (string, error) {
	dir := filepath.Join(filepath.Dir(sourcePath), ThumbnailDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	dest, err := fsutil.ConfineFileName(dir, remoteID+filepath.Ext(framePath))
	if err != nil {
		return "", fmt.Errorf("remote id %q is not a valid file name: %w", remoteID, err)
	}
	if err := os.Rename(framePath, dest); err != nil {
		return "", fmt.Errorf("move thumbnail: %w", err)
	}
	return dest, nil
}

func warningStatus(s Step, err error) string {
	switch s {
	case StepDeleteSource:
		return "Warning: could not delete local recording: " + err.Error()
	case StepThumbnail:
		return "Warning: thumbnail not updated: " + err.Error()
	default:
		return "Warning: " + err.Error()
	}
}

func finalStatus(res Result) string {
	switch res.Outcome {
	case Succeeded:
		return "Published: " + watchURLPrefix + res.RemoteID
	case ThumbnailPartialFailure:
		return "Published: " + watchURLPrefix + res.RemoteID + " (thumbnail not updated)"
	default:
		return failedPrefix(res.Err) + errString(res.Err)
	}
}

// failedPrefix names the step that ended the job.
func failedPrefix(err error) string {
	switch {
	case errors.Is(err, ErrSourceMissing):
		return "Publish failed: "
	case errors.Is(err, ErrExtractionFailed):
		return "Thumbnail extraction failed: "
	case errors.Is(err, ErrUploadFailed):
		return "Upload failed: "
	default:
		return "Publish failed: "
	}
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
