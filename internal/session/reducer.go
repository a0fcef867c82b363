// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package session

import (
	"fmt"

	"github.com/ManuGH/replay/internal/obsws"
)

// Status lines emitted by the reducer.
const (
	StatusConnecting       = "obs connecting"
	StatusConnected        = "obs connected"
	StatusNotConnected     = "obs not connected"
	StatusPublishDisabled  = "Auto-publish disabled"
	StatusNoAuth           = "No YouTube auth - run: replay auth"
	StatusNoOutputPath     = "Recording stopped without an output path"
	StatusRequestAck       = "obs request acknowledged"
	statusRecordingPrefix  = "Recording: "
	statusPublishingPrefix = "Recording stopped, publishing "
)

// Input is one thing that happened to the session.
type Input interface{ isInput() }

// ConnectAttempt is recorded right before the channel dials.
type ConnectAttempt struct{}

// FrameReceived carries one decoded inbound frame.
type FrameReceived struct{ Frame obsws.Frame }

// StreamEnded is recorded when the frame stream terminates or the dial fails.
// Err is nil for a graceful close.
type StreamEnded struct{ Err error }

func (ConnectAttempt) isInput() {}
func (FrameReceived) isInput()  {}
func (StreamEnded) isInput()    {}

// Effect is a side effect the caller of Reduce must carry out.
type Effect interface{ isEffect() }

// EmitStatus publishes Text to the status sink.
type EmitStatus struct{ Text string }

// TriggerPublish starts a publish job for the already remapped SourcePath.
type TriggerPublish struct{ SourcePath string }

// LogResponse records an op=7 response. Responses are not correlated with
// the requests that caused them.
type LogResponse struct{ Response obsws.RequestResponseData }

func (EmitStatus) isEffect()     {}
func (TriggerPublish) isEffect() {}
func (LogResponse) isEffect()    {}

// Reduce applies one input to s. It never mutates anything else. The error
// is non-nil only when a frame payload could not be decoded; the state is
// then returned unchanged, and any effects returned alongside still apply.
func Reduce(cfg Config, s State, in Input) (State, []Effect, error) {
	switch in := in.(type) {
	case ConnectAttempt:
		if s.Connection != Disconnected {
			return s, nil, nil
		}
		s.Connection = Connecting
		return s, []Effect{EmitStatus{Text: StatusConnecting}}, nil

	case StreamEnded:
		s.Connection = Disconnected
		return s, []Effect{EmitStatus{Text: StatusNotConnected}}, nil

	case FrameReceived:
		return reduceFrame(cfg, s, in.Frame)

	default:
		return s, nil, fmt.Errorf("session: unsupported input %T", in)
	}
}

func reduceFrame(cfg Config, s State, f obsws.Frame) (State, []Effect, error) {
	switch f.Op {
	case obsws.OpIdentified:
		s.Connection = Identified
		return s, []Effect{EmitStatus{Text: StatusConnected}}, nil

	case obsws.OpRequestResponse:
		resp, err := f.RequestResponse()
		if err != nil {
			// Any op=7 counts as activity, whatever its payload.
			return s, []Effect{EmitStatus{Text: StatusRequestAck}}, err
		}
		return s, []Effect{LogResponse{Response: resp}, EmitStatus{Text: responseStatus(resp)}}, nil

	case obsws.OpEvent:
		evt, err := f.Event()
		if err != nil {
			return s, nil, err
		}
		if evt.EventType != obsws.EventRecordStateChanged {
			return s, nil, nil
		}
		rec, err := evt.RecordStateChanged()
		if err != nil {
			return s, nil, err
		}
		return reduceRecordState(cfg, s, rec)

	default:
		return s, nil, nil
	}
}

func reduceRecordState(cfg Config, s State, rec obsws.RecordStateChanged) (State, []Effect, error) {
	s.Recording = rec.OutputState
	effects := []Effect{EmitStatus{Text: statusRecordingPrefix + rec.OutputState}}
	if !rec.Stopped() {
		return s, effects, nil
	}

	switch {
	case !cfg.UploadEnabled:
		effects = append(effects, EmitStatus{Text: StatusPublishDisabled})
	case rec.OutputPath == "":
		effects = append(effects, EmitStatus{Text: StatusNoOutputPath})
	case !s.HasCredential:
		effects = append(effects, EmitStatus{Text: StatusNoAuth})
	default:
		src := Remap(cfg.PathRemapPrefix, rec.OutputPath)
		effects = append(effects,
			EmitStatus{Text: statusPublishingPrefix + src},
			TriggerPublish{SourcePath: src},
		)
	}
	return s, effects, nil
}

func responseStatus(r obsws.RequestResponseData) string {
	if r.RequestStatus.Result {
		return r.RequestType + " acknowledged"
	}
	if r.RequestStatus.Comment != "" {
		return fmt.Sprintf("%s rejected (%d): %s", r.RequestType, r.RequestStatus.Code, r.RequestStatus.Comment)
	}
	return fmt.Sprintf("%s rejected (%d)", r.RequestType, r.RequestStatus.Code)
}
