// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package status carries human-readable status transitions from the core to
// whatever renders them (tray, HTTP, log).
package status

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Sink receives status text. Publish must be safe for concurrent use and must
// never fail or block for long.
type Sink interface {
	Publish(text string)
}

// Func adapts a plain function to Sink.
type Func func(text string)

// Publish implements Sink.
func (f Func) Publish(text string) { f(text) }

// Discard drops every update.
var Discard Sink = Func(func(string) {})

// LogSink writes each status line to a zerolog logger at info level.
type LogSink struct {
	Logger zerolog.Logger
}

// Publish implements Sink.
func (s LogSink) Publish(text string) {
	s.Logger.Info().Str("event", "status.update").Msg(text)
}

// Entry is one published status line.
type Entry struct {
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Latest coalesces updates and keeps only the most recent one. The final
// status of a job is therefore always the value observed after it completes.
type Latest struct {
	mu    sync.RWMutex
	entry Entry
	seq   uint64
	now   func() time.Time
}

// NewLatest returns an empty Latest board.
func NewLatest() *Latest {
	return &Latest{now: time.Now}
}

// Publish implements Sink.
func (l *Latest) Publish(text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry = Entry{Text: text, At: l.now()}
	l.seq++
}

// Get returns the latest entry and a sequence number that increases with
// every update.
func (l *Latest) Get() (Entry, uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.entry, l.seq
}

// Fanout forwards each update to every sink in order. A panicking sink is
// isolated so it cannot affect the publisher or the remaining sinks.
type Fanout []Sink

// Publish implements Sink.
func (f Fanout) Publish(text string) {
	for _, s := range f {
		if s == nil {
			continue
		}
		publishSafe(s, text)
	}
}

func publishSafe(s Sink, text string) {
	defer func() { _ = recover() }()
	s.Publish(text)
}
