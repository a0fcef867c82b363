// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package control translates external triggers into control-plane requests.
package control

import (
	"github.com/ManuGH/replay/internal/obsws"
	"github.com/rs/zerolog"

	xglog "github.com/ManuGH/replay/internal/log"
)

// Sender writes one request to the control plane and returns its
// correlation id. *obsws.Channel implements it; failures wrap
// obsws.ErrTransport.
type Sender interface {
	Send(req obsws.Request) (string, error)
}

// Dispatcher is stateless: every call maps to exactly one Send.
type Dispatcher struct {
	sender Sender
	logger zerolog.Logger
}

// NewDispatcher wraps sender.
func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		logger: xglog.WithComponent("control"),
	}
}

// StartRecording sends StartRecord.
func (d *Dispatcher) StartRecording() (string, error) {
	return d.send(obsws.RequestStartRecord)
}

// StopRecording sends StopRecord.
func (d *Dispatcher) StopRecording() (string, error) {
	return d.send(obsws.RequestStopRecord)
}

func (d *Dispatcher) send(requestType string) (string, error) {
	id, err := d.sender.Send(obsws.Request{Type: requestType})
	if err != nil {
		d.logger.Warn().Err(err).Str(xglog.FieldRequestType, requestType).Msg("dispatch failed")
		return "", err
	}
	d.logger.Debug().Str(xglog.FieldRequestType, requestType).Str(xglog.FieldRequestID, id).Msg("dispatched")
	return id, nil
}
