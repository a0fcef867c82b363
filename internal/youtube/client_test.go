// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package youtube

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ManuGH/replay/internal/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func staticCred() *Credential {
	return NewCredential(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "test-token", TokenType: "Bearer"}))
}

func tempFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestUploadVideo(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/youtube/v3/videos") {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "snippet,status", r.URL.Query().Get("part"))
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"abc123","kind":"youtube#video"}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL + "/"})
	id, err := c.UploadVideo(context.Background(), staticCred(), tempFile(t, "take.mkv", "matroska-bytes"), publish.Metadata{
		Title:       "Recording 2025-03-01 10:20:30",
		Description: "Auto-uploaded from Replay App",
		Tags:        []string{"replay"},
		CategoryID:  "22",
		Privacy:     "private",
	})
	require.NoError(t, err)
	assert.Equal(t, "abc123", id)
	assert.Contains(t, body, "Recording 2025-03-01 10:20:30")
	assert.Contains(t, body, `"privacyStatus":"private"`)
	assert.Contains(t, body, "matroska-bytes")
}

func TestUploadVideoAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"quotaExceeded"}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL + "/"})
	_, err := c.UploadVideo(context.Background(), staticCred(), tempFile(t, "a.mkv", "x"), publish.Metadata{Title: "t"})
	require.ErrorIs(t, err, publish.ErrUploadFailed)
	assert.Contains(t, err.Error(), "quotaExceeded")
}

func TestUploadVideoWithoutCredential(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL + "/"})
	_, err := c.UploadVideo(context.Background(), nil, tempFile(t, "a.mkv", "x"), publish.Metadata{})
	assert.ErrorIs(t, err, publish.ErrUploadFailed)

	var none *Credential
	_, err = c.UploadVideo(context.Background(), none, tempFile(t, "b.mkv", "x"), publish.Metadata{})
	assert.ErrorIs(t, err, publish.ErrUploadFailed)
	assert.Zero(t, hits.Load())
}

func TestSetThumbnail(t *testing.T) {
	var videoID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/youtube/v3/thumbnails/set") {
			http.NotFound(w, r)
			return
		}
		videoID = r.URL.Query().Get("videoId")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"items":[]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL + "/"})
	err := c.SetThumbnail(context.Background(), staticCred(), "abc123", tempFile(t, "f.png", "\x89PNG"))
	require.NoError(t, err)
	assert.Equal(t, "abc123", videoID)
}

func TestSetThumbnailFailureIsThumbnailClass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"The authenticated user doesnt have permissions to upload and set custom video thumbnails."}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL + "/"})
	err := c.SetThumbnail(context.Background(), staticCred(), "abc123", tempFile(t, "f.png", "\x89PNG"))
	assert.ErrorIs(t, err, publish.ErrThumbnail)

	err = c.SetThumbnail(context.Background(), staticCred(), "abc123", filepath.Join(t.TempDir(), "missing.png"))
	assert.ErrorIs(t, err, publish.ErrThumbnail)
}

func TestClientSatisfiesPorts(t *testing.T) {
	c := NewClient(Config{})
	var _ publish.Uploader = c
	var _ publish.ThumbnailSetter = c
	var _ publish.Credential = staticCred()
}
