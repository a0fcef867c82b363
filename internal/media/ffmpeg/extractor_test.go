// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/ManuGH/replay/internal/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFFmpeg writes an executable shell script standing in for ffmpeg.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fakes need a unix shell")
	}
	p := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(p, []byte(script), 0o755))
	return p
}

// writesLastArg emulates a successful extraction: the last argument is the
// output file.
const writesLastArg = `for a in "$@"; do out="$a"; done
printf 'PNG' > "$out"`

func video(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "take.mkv")
	require.NoError(t, os.WriteFile(p, []byte("video"), 0o644))
	return p
}

func TestExtractFrameDefaultOutput(t *testing.T) {
	bin := fakeFFmpeg(t, writesLastArg)
	src := video(t)

	out, err := NewExtractor(bin, 5*time.Second).ExtractFrame(context.Background(), src, "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(filepath.Dir(src), "take_first_frame.png"), out)
	assert.FileExists(t, out)
}

func TestExtractFrameOverwritesExisting(t *testing.T) {
	bin := fakeFFmpeg(t, writesLastArg)
	src := video(t)
	target := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, os.WriteFile(target, []byte("old contents"), 0o644))

	out, err := NewExtractor(bin, 5*time.Second).ExtractFrame(context.Background(), src, target)
	require.NoError(t, err)
	assert.Equal(t, target, out)
	b, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "PNG", string(b))
}

func TestExtractFramePassesArgs(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeFFmpeg(t, `printf '%s\n' "$@" > "`+argsFile+`"
`+writesLastArg)
	src := video(t)
	out := filepath.Join(t.TempDir(), "f.png")

	_, err := NewExtractor(bin, 5*time.Second).ExtractFrame(context.Background(), src, out)
	require.NoError(t, err)

	b, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	want := ""
	for _, a := range Args(src, out) {
		want += a + "\n"
	}
	assert.Equal(t, want, string(b))
}

func TestExtractFrameSourceMissing(t *testing.T) {
	bin := fakeFFmpeg(t, writesLastArg)
	_, err := NewExtractor(bin, time.Second).ExtractFrame(context.Background(), filepath.Join(t.TempDir(), "nope.mkv"), "")
	assert.ErrorIs(t, err, publish.ErrSourceMissing)
}

func TestExtractFrameNonZeroExitCarriesStderr(t *testing.T) {
	bin := fakeFFmpeg(t, `echo "Invalid data found when processing input" >&2
exit 1`)

	_, err := NewExtractor(bin, 5*time.Second).ExtractFrame(context.Background(), video(t), "")
	require.ErrorIs(t, err, publish.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "Invalid data found when processing input")
}

func TestExtractFrameNoOutput(t *testing.T) {
	bin := fakeFFmpeg(t, `exit 0`)

	_, err := NewExtractor(bin, 5*time.Second).ExtractFrame(context.Background(), video(t), "")
	require.ErrorIs(t, err, publish.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "no frame written")
}

func TestExtractFrameTimeoutKillsProcess(t *testing.T) {
	bin := fakeFFmpeg(t, `sleep 30`)

	start := time.Now()
	_, err := NewExtractor(bin, 200*time.Millisecond, WithKillGrace(200*time.Millisecond)).
		ExtractFrame(context.Background(), video(t), "")
	require.ErrorIs(t, err, publish.ErrExtractionFailed)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestExtractFrameMissingBinary(t *testing.T) {
	_, err := NewExtractor(filepath.Join(t.TempDir(), "no-ffmpeg"), time.Second).
		ExtractFrame(context.Background(), video(t), "")
	assert.ErrorIs(t, err, publish.ErrExtractionFailed)
}

func TestExtractorSatisfiesPort(t *testing.T) {
	var _ publish.Extractor = NewExtractor("", 0)
}
