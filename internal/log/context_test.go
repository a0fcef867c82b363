// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextIDs(t *testing.T) {
	//nolint:staticcheck // nil context is accepted on purpose
	ctx := ContextWithRequestID(nil, "req-1")
	ctx = ContextWithJobID(ctx, "job-9")

	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
	assert.Equal(t, "job-9", JobIDFromContext(ctx))

	// Request and job ids live under distinct keys.
	only := ContextWithJobID(context.Background(), "job-2")
	assert.Empty(t, RequestIDFromContext(only))
}

func TestFromContextNilSafe(t *testing.T) {
	//nolint:staticcheck
	assert.Empty(t, JobIDFromContext(nil))
	//nolint:staticcheck
	assert.Empty(t, RequestIDFromContext(nil))
}

func TestWithContextAddsIDs(t *testing.T) {
	var buf bytes.Buffer
	ctx := ContextWithJobID(context.Background(), "job-1")

	l := WithContext(ctx, zerolog.New(&buf))
	l.Info().Msg("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "job-1", entry[FieldJobID])
	assert.NotContains(t, entry, FieldRequestID)
}

func TestWithContextWithoutIDs(t *testing.T) {
	var buf bytes.Buffer

	l := WithContext(context.Background(), zerolog.New(&buf))
	l.Info().Msg("plain")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, map[string]any{"level": "info", "message": "plain"}, entry)
}
