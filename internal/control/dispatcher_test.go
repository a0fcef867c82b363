// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package control

import (
	"fmt"
	"testing"

	"github.com/ManuGH/replay/internal/obsws"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []obsws.Request
	ids  []string
	err  error
}

func (f *fakeSender) Send(req obsws.Request) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, req)
	id := uuid.NewString()
	f.ids = append(f.ids, id)
	return id, nil
}

func TestDispatcherMapsTriggersToRequests(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(s)

	_, err := d.StartRecording()
	require.NoError(t, err)
	_, err = d.StopRecording()
	require.NoError(t, err)

	require.Len(t, s.sent, 2)
	assert.Equal(t, obsws.RequestStartRecord, s.sent[0].Type)
	assert.Equal(t, obsws.RequestStopRecord, s.sent[1].Type)
}

func TestStartRecordingTwiceSendsTwice(t *testing.T) {
	s := &fakeSender{}
	d := NewDispatcher(s)

	id1, err := d.StartRecording()
	require.NoError(t, err)
	id2, err := d.StartRecording()
	require.NoError(t, err)

	assert.Len(t, s.sent, 2)
	assert.NotEqual(t, id1, id2)
	for _, id := range []string{id1, id2} {
		_, perr := uuid.Parse(id)
		assert.NoError(t, perr)
	}
}

func TestDispatcherPropagatesTransportError(t *testing.T) {
	s := &fakeSender{err: fmt.Errorf("%w: socket not open", obsws.ErrTransport)}
	d := NewDispatcher(s)

	_, err := d.StopRecording()
	assert.ErrorIs(t, err, obsws.ErrTransport)
}

func TestChannelSatisfiesSender(t *testing.T) {
	var _ Sender = obsws.NewChannel()

	// Not connected: the real channel reports a transport error, not a panic.
	_, err := NewDispatcher(obsws.NewChannel()).StartRecording()
	assert.ErrorIs(t, err, obsws.ErrTransport)
}
