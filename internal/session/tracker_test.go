// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ManuGH/replay/internal/obsws"
	"github.com/ManuGH/replay/internal/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type scriptedStream struct {
	frames chan obsws.Frame
	err    error
}

func newScriptedStream(err error, frames ...obsws.Frame) *scriptedStream {
	s := &scriptedStream{frames: make(chan obsws.Frame, len(frames)), err: err}
	for _, f := range frames {
		s.frames <- f
	}
	close(s.frames)
	return s
}

func (s *scriptedStream) Frames() <-chan obsws.Frame { return s.frames }
func (s *scriptedStream) Err() error                 { return s.err }

type recordingPublisher struct {
	mu    sync.Mutex
	paths []string
	creds []publish.Credential
}

func (p *recordingPublisher) Publish(_ context.Context, src string, cred publish.Credential) *publish.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.paths = append(p.paths, src)
	p.creds = append(p.creds, cred)
	return nil
}

type presentCred struct{}

func (presentCred) Present() bool { return true }

type statusRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (s *statusRecorder) Publish(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, text)
}

func (s *statusRecorder) count(text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.lines {
		if l == text {
			n++
		}
	}
	return n
}

func TestTrackerRunPublishesOnStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	stream := newScriptedStream(nil,
		ackFrame(),
		recordFrame("OBS_WEBSOCKET_OUTPUT_STARTED", ""),
		obsws.Frame{Op: obsws.OpEvent, Data: []byte(`garbage`)},
		recordFrame(obsws.OutputStopped, "/rec/a.mkv"),
	)
	var gotURL string
	conn := ConnectFunc(func(_ context.Context, url string) (Stream, error) {
		gotURL = url
		return stream, nil
	})
	pub := &recordingPublisher{}
	sink := &statusRecorder{}
	cfg := Config{SocketURL: "ws://obs:4455", PathRemapPrefix: "/mnt", UploadEnabled: true}

	tr := NewTracker(cfg, conn, pub, presentCred{}, WithStatusSink(sink))
	assert.True(t, tr.Snapshot().HasCredential)

	err := tr.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "ws://obs:4455", gotURL)
	assert.Equal(t, []string{"/mnt/rec/a.mkv"}, pub.paths)
	assert.Equal(t, presentCred{}, pub.creds[0])

	snap := tr.Snapshot()
	assert.Equal(t, Disconnected, snap.Connection)
	assert.Equal(t, obsws.OutputStopped, snap.Recording)
	assert.Equal(t, 1, sink.count(StatusConnected))
	assert.Equal(t, 1, sink.count(StatusNotConnected))
}

func TestTrackerWithoutCredentialSkipsPublish(t *testing.T) {
	stream := newScriptedStream(nil, ackFrame(), recordFrame(obsws.OutputStopped, "/rec/a.mkv"))
	pub := &recordingPublisher{}
	sink := &statusRecorder{}
	tr := NewTracker(Config{UploadEnabled: true},
		ConnectFunc(func(context.Context, string) (Stream, error) { return stream, nil }),
		pub, nil, WithStatusSink(sink))

	require.NoError(t, tr.Run(context.Background()))
	assert.Empty(t, pub.paths)
	assert.Equal(t, 1, sink.count(StatusNoAuth))
}

func TestTrackerDialFailure(t *testing.T) {
	dialErr := errors.New("connection refused")
	sink := &statusRecorder{}
	tr := NewTracker(Config{}, ConnectFunc(func(context.Context, string) (Stream, error) {
		return nil, dialErr
	}), &recordingPublisher{}, nil, WithStatusSink(sink))

	err := tr.Run(context.Background())
	assert.ErrorIs(t, err, dialErr)
	assert.Equal(t, Disconnected, tr.Snapshot().Connection)
	assert.Equal(t, 1, sink.count(StatusConnecting))
	assert.Equal(t, 1, sink.count(StatusNotConnected))
}

func TestTrackerAbnormalCloseReturnsError(t *testing.T) {
	streamErr := errors.New("read: connection reset")
	stream := newScriptedStream(streamErr, ackFrame())
	tr := NewTracker(Config{}, ConnectFunc(func(context.Context, string) (Stream, error) {
		return stream, nil
	}), &recordingPublisher{}, nil)

	assert.ErrorIs(t, tr.Run(context.Background()), streamErr)
	assert.Equal(t, Disconnected, tr.Snapshot().Connection)
}

func TestTrackerSnapshotWhileRunning(t *testing.T) {
	defer goleak.VerifyNone(t)

	frames := make(chan obsws.Frame)
	stream := &scriptedStream{frames: frames}
	tr := NewTracker(Config{}, ConnectFunc(func(context.Context, string) (Stream, error) {
		return stream, nil
	}), &recordingPublisher{}, nil)

	done := make(chan error, 1)
	go func() { done <- tr.Run(context.Background()) }()

	frames <- ackFrame()
	// The unbuffered send above returns once the tracker took the frame;
	// the next send proves the first one has been applied.
	frames <- recordFrame("OBS_WEBSOCKET_OUTPUT_STARTED", "")
	assert.Equal(t, Identified, tr.Snapshot().Connection)

	close(frames)
	require.NoError(t, <-done)
	snap := tr.Snapshot()
	assert.Equal(t, Disconnected, snap.Connection)
	assert.Equal(t, "OBS_WEBSOCKET_OUTPUT_STARTED", snap.Recording)
}

func TestTrackerAcknowledgesBareRequestResponse(t *testing.T) {
	stream := newScriptedStream(nil, ackFrame(), obsws.Frame{Op: obsws.OpRequestResponse})
	sink := &statusRecorder{}
	tr := NewTracker(Config{UploadEnabled: true},
		ConnectFunc(func(context.Context, string) (Stream, error) { return stream, nil }),
		&recordingPublisher{}, nil, WithStatusSink(sink))

	require.NoError(t, tr.Run(context.Background()))
	assert.Equal(t, 1, sink.count(StatusRequestAck))
}
