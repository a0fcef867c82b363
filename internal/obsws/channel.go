// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package obsws

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	xglog "github.com/ManuGH/replay/internal/log"
	"github.com/ManuGH/replay/internal/metrics"
	"github.com/ManuGH/replay/internal/status"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	frameBuffer             = 16
)

// Channel owns the persistent socket to the control plane. One Channel
// serves one connection at a time; Connect may be called again after the
// previous stream has terminated.
type Channel struct {
	dialer       *websocket.Dialer
	sink         status.Sink
	logger       zerolog.Logger
	newID        func() string
	writeTimeout time.Duration

	mu      sync.Mutex // guards link and dialing, serialises data writes
	link    *link
	dialing bool
}

// link is one open websocket connection.
type link struct {
	conn    *websocket.Conn
	closing atomic.Bool
}

// Option configures a Channel.
type Option func(*Channel)

// WithDialer overrides the websocket dialer.
func WithDialer(d *websocket.Dialer) Option {
	return func(c *Channel) { c.dialer = d }
}

// WithStatusSink sets where open/error/close transitions are reported.
func WithStatusSink(s status.Sink) Option {
	return func(c *Channel) { c.sink = s }
}

// WithLogger sets the channel logger.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Channel) { c.logger = l }
}

// WithRequestIDFunc overrides correlation id generation.
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Channel) { c.newID = fn }
}

// WithWriteTimeout bounds every outbound write.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Channel) { c.writeTimeout = d }
}

// NewChannel creates a disconnected channel.
func NewChannel(opts ...Option) *Channel {
	c := &Channel{
		dialer: &websocket.Dialer{
			HandshakeTimeout: defaultHandshakeTimeout,
			NetDialContext:   (&net.Dialer{Timeout: defaultHandshakeTimeout}).DialContext,
		},
		sink:         status.Discard,
		logger:       xglog.WithComponent("obsws"),
		newID:        uuid.NewString,
		writeTimeout: defaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Stream is the lazy, non-restartable sequence of frames from one connection.
// Frames is closed when the connection ends, after Done; Err then reports nil
// for a graceful close and an ErrTransport-wrapped error otherwise.
type Stream struct {
	frames chan Frame
	done   chan struct{}
	err    error
}

// Frames returns the decoded frames in arrival order.
func (s *Stream) Frames() <-chan Frame { return s.frames }

// Done is closed once the stream has terminated and Err is final.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Err returns the termination error. Only valid after Done is closed.
func (s *Stream) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Connected reports whether a socket is currently open.
func (c *Channel) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.link != nil
}

// Connect dials url, sends the identify frame and starts producing frames.
// It returns once the socket is open; cancelling ctx closes the socket.
// A Connect while another is dialing or open fails with ErrTransport.
func (c *Channel) Connect(ctx context.Context, url string) (*Stream, error) {
	c.mu.Lock()
	if c.link != nil || c.dialing {
		c.mu.Unlock()
		return nil, transportErr("already connected")
	}
	c.dialing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.dialing = false
		c.mu.Unlock()
	}()

	conn, resp, err := c.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		c.logger.Warn().Err(err).Str(xglog.FieldEvent, "obsws.dial_failed").Str(xglog.FieldURL, url).Msg("control plane dial failed")
		c.sink.Publish("obs websocket error: " + err.Error())
		return nil, transportErr("dial %s: %v", url, err)
	}

	l := &link{conn: conn}

	// The identify frame goes out before any inbound frame is surfaced.
	hello, err := IdentifyFrame()
	if err == nil {
		_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
		err = conn.WriteMessage(websocket.TextMessage, hello)
	}
	if err != nil {
		_ = conn.Close()
		c.logger.Warn().Err(err).Str(xglog.FieldEvent, "obsws.identify_failed").Msg("failed to send identify frame")
		c.sink.Publish("obs websocket error: " + err.Error())
		return nil, transportErr("send identify: %v", err)
	}

	c.mu.Lock()
	c.link = l
	c.mu.Unlock()

	c.logger.Info().Str(xglog.FieldEvent, "obsws.connected").Str(xglog.FieldURL, url).Msg("control plane connected")
	c.sink.Publish("obs websocket connected")

	s := &Stream{
		frames: make(chan Frame, frameBuffer),
		done:   make(chan struct{}),
	}
	readerDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.closeLink(l)
		case <-readerDone:
		}
	}()
	go c.read(ctx, l, s, readerDone)
	return s, nil
}

func (c *Channel) read(ctx context.Context, l *link, s *Stream, readerDone chan struct{}) {
	var termErr error
	defer func() {
		close(readerDone)
		c.mu.Lock()
		if c.link == l {
			c.link = nil
		}
		c.mu.Unlock()
		_ = l.conn.Close()

		if termErr != nil {
			c.logger.Warn().Err(termErr).Str(xglog.FieldEvent, "obsws.error").Msg("control plane connection failed")
			c.sink.Publish("obs websocket error: " + termErr.Error())
		}
		c.logger.Info().Str(xglog.FieldEvent, "obsws.closed").Msg("control plane connection closed")
		c.sink.Publish("obs websocket connection closed")

		s.err = termErr
		close(s.done)
		close(s.frames)
	}()

	for {
		mt, data, err := l.conn.ReadMessage()
		if err != nil {
			if !c.graceful(ctx, l, err) {
				termErr = transportErr("read: %v", err)
			}
			return
		}
		if mt != websocket.TextMessage {
			c.logger.Debug().Int("message_type", mt).Msg("ignoring non-text message")
			continue
		}

		frame, err := DecodeFrame(data)
		if err != nil {
			metrics.IncDecodeError()
			c.logger.Warn().Err(err).Str(xglog.FieldEvent, "obsws.decode_failed").Int("size", len(data)).Msg("dropping malformed frame")
			continue
		}
		metrics.IncFrame(int(frame.Op))
		c.logger.Debug().Int(xglog.FieldOpCode, int(frame.Op)).RawJSON("d", rawOrNull(frame.Data)).Msg("frame received")

		select {
		case s.frames <- frame:
		case <-ctx.Done():
			return
		}
	}
}

func (c *Channel) graceful(ctx context.Context, l *link, err error) bool {
	if ctx.Err() != nil || l.closing.Load() {
		return true
	}
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway)
}

// Send writes one op=6 request with a freshly generated correlation id and
// returns that id. Responses are not awaited.
func (c *Channel) Send(req Request) (string, error) {
	id := c.newID()
	payload, err := RequestFrame(req, id)
	if err != nil {
		metrics.IncRequest(req.Type, "transport_error")
		return "", transportErr("encode request: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.link == nil || c.link.closing.Load() {
		metrics.IncRequest(req.Type, "transport_error")
		return "", transportErr("socket not open")
	}

	conn := c.link.conn
	_ = conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		metrics.IncRequest(req.Type, "transport_error")
		c.logger.Warn().Err(err).Str(xglog.FieldRequestType, req.Type).Msg("request write failed")
		return "", transportErr("write %s: %v", req.Type, err)
	}

	metrics.IncRequest(req.Type, "sent")
	c.logger.Info().
		Str(xglog.FieldEvent, "obsws.request_sent").
		Str(xglog.FieldRequestType, req.Type).
		Str(xglog.FieldRequestID, id).
		Msg("request sent")
	return id, nil
}

// Close closes the current connection, if any, with a normal-closure frame.
// The stream then terminates without error.
func (c *Channel) Close() error {
	c.mu.Lock()
	l := c.link
	c.mu.Unlock()
	if l == nil {
		return nil
	}
	c.closeLink(l)
	return nil
}

func (c *Channel) closeLink(l *link) {
	if !l.closing.CompareAndSwap(false, true) {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := l.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil && !errors.Is(err, websocket.ErrCloseSent) {
		c.logger.Debug().Err(err).Msg("close frame not sent")
	}
	_ = l.conn.Close()
}

func rawOrNull(b []byte) []byte {
	if len(b) == 0 {
		return []byte("null")
	}
	return b
}
