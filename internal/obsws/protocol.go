// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package obsws speaks the control plane's JSON frame protocol over a
// persistent websocket.
package obsws

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OpCode selects the meaning of a frame.
type OpCode int

const (
	OpHello           OpCode = 0
	OpIdentify        OpCode = 1
	OpIdentified      OpCode = 2
	OpEvent           OpCode = 5
	OpRequest         OpCode = 6
	OpRequestResponse OpCode = 7
)

func (o OpCode) String() string {
	switch o {
	case OpHello:
		return "hello"
	case OpIdentify:
		return "identify"
	case OpIdentified:
		return "identified"
	case OpEvent:
		return "event"
	case OpRequest:
		return "request"
	case OpRequestResponse:
		return "request_response"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// RPCVersion is the protocol version announced in the identify frame.
const RPCVersion = 1

// Event and request vocabulary interpreted by this module.
const (
	EventRecordStateChanged = "RecordStateChanged"
	OutputStopped           = "OBS_WEBSOCKET_OUTPUT_STOPPED"

	RequestStartRecord = "StartRecord"
	RequestStopRecord  = "StopRecord"
)

// Frame is the wire envelope {"op": <int>, "d": {...}}.
type Frame struct {
	Op   OpCode          `json:"op"`
	Data json.RawMessage `json:"d,omitempty"`
}

// IdentifyData is the payload of the outbound op=1 frame.
type IdentifyData struct {
	RPCVersion int `json:"rpcVersion"`
}

// EventData is the payload of an inbound op=5 frame.
type EventData struct {
	EventType   string          `json:"eventType"`
	EventIntent int             `json:"eventIntent,omitempty"`
	EventData   json.RawMessage `json:"eventData,omitempty"`
}

// RecordStateChanged is the eventData of a RecordStateChanged event.
type RecordStateChanged struct {
	OutputActive bool   `json:"outputActive"`
	OutputState  string `json:"outputState"`
	OutputPath   string `json:"outputPath"`
}

// Stopped reports whether the event carries the terminating output state.
func (r RecordStateChanged) Stopped() bool {
	return r.OutputState == OutputStopped
}

// RequestData is the payload of an outbound op=6 frame.
type RequestData struct {
	RequestType string         `json:"requestType"`
	RequestID   string         `json:"requestId"`
	RequestData map[string]any `json:"requestData"`
}

// RequestStatus is the status block of an op=7 response.
type RequestStatus struct {
	Result  bool   `json:"result"`
	Code    int    `json:"code"`
	Comment string `json:"comment,omitempty"`
}

// RequestResponseData is the payload of an inbound op=7 frame.
type RequestResponseData struct {
	RequestType   string        `json:"requestType"`
	RequestID     string        `json:"requestId"`
	RequestStatus RequestStatus `json:"requestStatus"`
}

// Request is what callers hand to Channel.Send.
type Request struct {
	Type string
	Data map[string]any
}

// DecodeFrame parses one inbound message. Anything that is not a JSON object
// with an integer "op" field is a *DecodeError.
func DecodeFrame(raw []byte) (Frame, error) {
	var env struct {
		Op   *OpCode         `json:"op"`
		Data json.RawMessage `json:"d"`
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&env); err != nil {
		return Frame{}, &DecodeError{Size: len(raw), Err: err}
	}
	if env.Op == nil {
		return Frame{}, &DecodeError{Size: len(raw), Err: fmt.Errorf("missing op field")}
	}
	return Frame{Op: *env.Op, Data: env.Data}, nil
}

// Event decodes the payload of an op=5 frame.
func (f Frame) Event() (EventData, error) {
	var ev EventData
	if f.Op != OpEvent {
		return ev, &DecodeError{Size: len(f.Data), Err: fmt.Errorf("frame %s is not an event", f.Op)}
	}
	if err := unmarshalData(f.Data, &ev); err != nil {
		return ev, err
	}
	return ev, nil
}

// RequestResponse decodes the payload of an op=7 frame.
func (f Frame) RequestResponse() (RequestResponseData, error) {
	var resp RequestResponseData
	if f.Op != OpRequestResponse {
		return resp, &DecodeError{Size: len(f.Data), Err: fmt.Errorf("frame %s is not a request response", f.Op)}
	}
	if err := unmarshalData(f.Data, &resp); err != nil {
		return resp, err
	}
	return resp, nil
}

// RecordStateChanged decodes the eventData of a RecordStateChanged event.
// A missing eventData block yields the zero value.
func (e EventData) RecordStateChanged() (RecordStateChanged, error) {
	var rsc RecordStateChanged
	if e.EventType != EventRecordStateChanged {
		return rsc, &DecodeError{Size: len(e.EventData), Err: fmt.Errorf("event %q is not %s", e.EventType, EventRecordStateChanged)}
	}
	if len(e.EventData) == 0 || string(e.EventData) == "null" {
		return rsc, nil
	}
	if err := json.Unmarshal(e.EventData, &rsc); err != nil {
		return rsc, &DecodeError{Size: len(e.EventData), Err: err}
	}
	return rsc, nil
}

func unmarshalData(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return &DecodeError{Size: 0, Err: fmt.Errorf("missing d field")}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{Size: len(data), Err: err}
	}
	return nil
}

// EncodeFrame marshals an outbound frame.
func EncodeFrame(op OpCode, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", op, err)
	}
	return json.Marshal(Frame{Op: op, Data: data})
}

// IdentifyFrame returns the handshake frame sent right after the socket opens.
func IdentifyFrame() ([]byte, error) {
	return EncodeFrame(OpIdentify, IdentifyData{RPCVersion: RPCVersion})
}

// RequestFrame returns the op=6 frame for req under the given correlation id.
func RequestFrame(req Request, requestID string) ([]byte, error) {
	if req.Type == "" {
		return nil, fmt.Errorf("request type is empty")
	}
	if requestID == "" {
		return nil, fmt.Errorf("request id is empty")
	}
	data := req.Data
	if data == nil {
		data = map[string]any{}
	}
	return EncodeFrame(OpRequest, RequestData{
		RequestType: req.Type,
		RequestID:   requestID,
		RequestData: data,
	})
}
