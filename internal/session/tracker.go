// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"errors"
	"sync"

	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/metrics"
	"github.com/ManuGH/replay/internal/obsws"
	"github.com/ManuGH/replay/internal/publish"
	"github.com/ManuGH/replay/internal/status"
	"github.com/rs/zerolog"
)

// Stream is one connection's frame sequence. *obsws.Stream implements it.
type Stream interface {
	Frames() <-chan obsws.Frame
	Err() error
}

// Connector opens a frame stream to the control plane.
type Connector interface {
	Connect(ctx context.Context, url string) (Stream, error)
}

// ConnectFunc adapts a function to Connector.
type ConnectFunc func(ctx context.Context, url string) (Stream, error)

func (f ConnectFunc) Connect(ctx context.Context, url string) (Stream, error) { return f(ctx, url) }

// ChannelConnector adapts an *obsws.Channel.
func ChannelConnector(c *obsws.Channel) Connector {
	return ConnectFunc(func(ctx context.Context, url string) (Stream, error) {
		s, err := c.Connect(ctx, url)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

// Publisher starts a publish job without blocking. *publish.Pipeline
// implements it.
type Publisher interface {
	Publish(ctx context.Context, sourcePath string, cred publish.Credential) *publish.Job
}

// Tracker owns the session State. All mutation happens on the goroutine
// running Run; readers use Snapshot.
type Tracker struct {
	cfg       Config
	connector Connector
	publisher Publisher
	cred      publish.Credential
	sink      status.Sink
	logger    zerolog.Logger

	mu    sync.RWMutex
	state State
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithStatusSink sets where reducer status lines go.
func WithStatusSink(s status.Sink) TrackerOption {
	return func(t *Tracker) { t.sink = s }
}

// WithLogger sets the tracker logger.
func WithLogger(l zerolog.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker in the Disconnected state. cred may be nil.
func NewTracker(cfg Config, connector Connector, publisher Publisher, cred publish.Credential, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		cfg:       cfg,
		connector: connector,
		publisher: publisher,
		cred:      cred,
		sink:      status.Discard,
		logger:    xglog.WithComponent("session"),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.state.HasCredential = cred != nil && cred.Present()
	return t
}

// Snapshot returns a copy of the current state.
func (t *Tracker) Snapshot() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// Run performs one connection: it dials, consumes frames strictly in order
// until the stream terminates, and returns the stream's termination error
// (nil for a graceful close). It does not reconnect.
func (t *Tracker) Run(ctx context.Context) error {
	t.apply(ctx, ConnectAttempt{})

	stream, err := t.connector.Connect(ctx, t.cfg.SocketURL)
	if err != nil {
		t.apply(ctx, StreamEnded{Err: err})
		return err
	}

	for frame := range stream.Frames() {
		t.apply(ctx, FrameReceived{Frame: frame})
	}

	err = stream.Err()
	t.apply(ctx, StreamEnded{Err: err})
	return err
}

func (t *Tracker) apply(ctx context.Context, in Input) {
	t.mu.Lock()
	prev := t.state
	next, effects, err := Reduce(t.cfg, prev, in)
	t.state = next
	t.mu.Unlock()

	if err != nil {
		if errors.Is(err, obsws.ErrProtocolDecode) {
			metrics.IncDecodeError()
		}
		t.logger.Warn().Err(err).Str(xglog.FieldEvent, "session.frame_undecodable").Msg("frame payload undecodable")
		for _, eff := range effects {
			t.run(ctx, eff)
		}
		return
	}

	if prev.Connection != next.Connection {
		metrics.SetConnectionState(int(next.Connection))
		evt := t.logger.Info()
		if se, ok := in.(StreamEnded); ok && se.Err != nil {
			evt = t.logger.Warn().Err(se.Err)
		}
		evt.Str(xglog.FieldEvent, "session.connection_state").
			Str(xglog.FieldOldState, prev.Connection.String()).
			Str(xglog.FieldNewState, next.Connection.String()).
			Msg("connection state changed")
	}
	if prev.Recording != next.Recording {
		t.logger.Info().
			Str(xglog.FieldEvent, "session.record_state").
			Str(xglog.FieldOldState, prev.Recording).
			Str(xglog.FieldNewState, next.Recording).
			Msg("recording state changed")
	}
	if fr, ok := in.(FrameReceived); ok && fr.Frame.Op == obsws.OpHello {
		t.logger.Debug().Int(xglog.FieldOpCode, int(fr.Frame.Op)).Msg("ignoring hello frame")
	}

	for _, eff := range effects {
		t.run(ctx, eff)
	}
}

func (t *Tracker) run(ctx context.Context, eff Effect) {
	switch e := eff.(type) {
	case EmitStatus:
		t.sink.Publish(e.Text)
	case LogResponse:
		r := e.Response
		evt := t.logger.Info()
		if !r.RequestStatus.Result {
			evt = t.logger.Warn()
		}
		evt.Str(xglog.FieldEvent, "session.request_response").
			Str(xglog.FieldRequestType, r.RequestType).
			Str(xglog.FieldRequestID, r.RequestID).
			Bool("result", r.RequestStatus.Result).
			Int("code", r.RequestStatus.Code).
			Msg("request response received")
	case TriggerPublish:
		job := t.publisher.Publish(ctx, e.SourcePath, t.cred)
		evt := t.logger.Info().Str(xglog.FieldEvent, "session.publish_triggered").Str(xglog.FieldPath, e.SourcePath)
		if job != nil {
			evt = evt.Str(xglog.FieldJobID, job.ID())
		}
		evt.Msg("recording stopped, publish job started")
	}
}
