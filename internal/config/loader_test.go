// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader("", "v1.2.3").Load()
	require.NoError(t, err)

	assert.Equal(t, "v1.2.3", cfg.Version)
	assert.Equal(t, DefaultSocketURL, cfg.SocketURL)
	assert.Equal(t, "", cfg.PathRemapPrefix)
	assert.True(t, cfg.UploadEnabled)
	assert.Equal(t, DefaultListenAddr, cfg.ListenAddr)
	assert.Equal(t, 5*time.Second, cfg.ReconnectInterval)
	assert.Equal(t, "ffmpeg", cfg.FFmpeg.Bin)
	assert.Equal(t, "private", cfg.YouTube.Privacy)
	assert.Equal(t, "22", cfg.YouTube.CategoryID)
	assert.Equal(t, []string{"replay"}, cfg.YouTube.Tags)
	assert.Equal(t, "Auto-uploaded from Replay App", cfg.YouTube.Description)
	assert.True(t, cfg.YouTube.DeleteAfterUpload)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoadPrecedenceEnvOverFile(t *testing.T) {
	path := writeConfig(t, "replay.yaml", `
obs:
  url: ws://studio.local:4455
  networkPath: /Volumes/studio
upload: false
server:
  listen: ":9000"
  reconnectInterval: 10s
ffmpeg:
  bin: /opt/ffmpeg/bin/ffmpeg
  timeout: 30s
youtube:
  privacy: unlisted
  tags: [replay, obs]
`)
	t.Setenv(EnvSocketURL, "ws://override:4455")
	t.Setenv(EnvUpload, "true")

	l := NewLoader(path, "dev")
	cfg, err := l.Load()
	require.NoError(t, err)

	assert.Equal(t, "ws://override:4455", cfg.SocketURL, "env beats file")
	assert.True(t, cfg.UploadEnabled, "env beats file")
	assert.Equal(t, "/Volumes/studio", cfg.PathRemapPrefix, "file beats default")
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, 10*time.Second, cfg.ReconnectInterval)
	assert.Equal(t, "/opt/ffmpeg/bin/ffmpeg", cfg.FFmpeg.Bin)
	assert.Equal(t, 30*time.Second, cfg.FFmpeg.Timeout)
	assert.Equal(t, "unlisted", cfg.YouTube.Privacy)
	assert.Equal(t, []string{"replay", "obs"}, cfg.YouTube.Tags)

	assert.Contains(t, l.ConsumedEnvKeys, EnvSocketURL)
	assert.Contains(t, l.ConsumedEnvKeys, EnvNetworkPath)
}

func TestLoadEmptyListenDisablesHTTP(t *testing.T) {
	t.Setenv(EnvListen, "")
	cfg, err := NewLoader("", "dev").Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.ListenAddr)
}

func TestLoadNetworkPathFromEnv(t *testing.T) {
	t.Setenv(EnvNetworkPath, `\\macbook-pro.local\Macintosh HD`)
	cfg, err := NewLoader("", "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, `\\macbook-pro.local\Macintosh HD`, cfg.Core().PathRemapPrefix)
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "replay.yaml", "obs:\n  url: ws://x:1\n  pasword: nope\n")
	_, err := NewLoader(path, "dev").Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownConfigField)
}

func TestLoadRejectsMultipleDocuments(t *testing.T) {
	path := writeConfig(t, "replay.yaml", "upload: true\n---\nupload: false\n")
	_, err := NewLoader(path, "dev").Load()
	assert.ErrorContains(t, err, "multiple documents")
}

func TestLoadRejectsNonYAML(t *testing.T) {
	path := writeConfig(t, "replay.json", "{}")
	_, err := NewLoader(path, "dev").Load()
	assert.ErrorContains(t, err, "only YAML supported")
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "replay.yml", "")
	cfg, err := NewLoader(path, "dev").Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultSocketURL, cfg.SocketURL)
}

func TestLoadBadDurationInFile(t *testing.T) {
	path := writeConfig(t, "replay.yaml", "ffmpeg:\n  timeout: forever\n")
	_, err := NewLoader(path, "dev").Load()
	assert.ErrorContains(t, err, "ffmpeg.timeout")
}

func TestCore(t *testing.T) {
	cfg := Defaults()
	cfg.PathRemapPrefix = "/mnt"
	cfg.UploadEnabled = false
	assert.Equal(t, Core{SocketURL: DefaultSocketURL, PathRemapPrefix: "/mnt", UploadEnabled: false}, cfg.Core())
}
