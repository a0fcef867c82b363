// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package log wraps zerolog with the replay daemon's conventions: one
// process-wide base logger, component child loggers and ids carried on
// context.Context.
package log

import (
	"context"

	"github.com/rs/zerolog"
)

type idKind uint8

const (
	kindRequest idKind = iota // local HTTP request
	kindJob                   // publish job
)

type idKey struct{ kind idKind }

func withID(ctx context.Context, k idKind, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, idKey{k}, id)
}

func idFrom(ctx context.Context, k idKind) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(idKey{k}).(string)
	return id
}

// ContextWithRequestID tags ctx with the id of the HTTP request being served.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return withID(ctx, kindRequest, id)
}

// ContextWithJobID tags ctx with a publish job id.
func ContextWithJobID(ctx context.Context, id string) context.Context {
	return withID(ctx, kindJob, id)
}

// RequestIDFromContext returns the HTTP request id, or "".
func RequestIDFromContext(ctx context.Context) string { return idFrom(ctx, kindRequest) }

// JobIDFromContext returns the publish job id, or "".
func JobIDFromContext(ctx context.Context) string { return idFrom(ctx, kindJob) }

// WithContext returns logger with whichever ids ctx carries. A context
// without ids yields logger unchanged.
func WithContext(ctx context.Context, logger zerolog.Logger) zerolog.Logger {
	rid, jid := RequestIDFromContext(ctx), JobIDFromContext(ctx)
	if rid == "" && jid == "" {
		return logger
	}
	lc := logger.With()
	if rid != "" {
		lc = lc.Str(FieldRequestID, rid)
	}
	if jid != "" {
		lc = lc.Str(FieldJobID, jid)
	}
	return lc.Logger()
}

// ComponentFromContext is WithComponent followed by WithContext.
func ComponentFromContext(ctx context.Context, component string) zerolog.Logger {
	return WithContext(ctx, WithComponent(component))
}
