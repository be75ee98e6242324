package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-graph/internal/audiofile"
)

func writeDC(t *testing.T, dir, name string, sampleRate, frames int, v float32) string {
	t.Helper()
	path := filepath.Join(dir, name)
	samples := make([]float32, frames)
	for i := range samples {
		samples[i] = v
	}
	w, err := audiofile.Create(path, sampleRate, 16, 1)
	require.NoError(t, err)
	require.NoError(t, w.WriteInterleaved(samples))
	require.NoError(t, w.Close())
	return path
}

// drain reads the whole stream of src.
func drain(t *testing.T, src *source) []float32 {
	t.Helper()
	lease, err := src.reader.Acquire()
	require.NoError(t, err)
	defer lease.Release()

	var out []float32
	buf := make([]float32, 64)
	for {
		n, eof, err := lease.ReadFrames(buf, false)
		require.NoError(t, err)
		out = append(out, buf[:n]...)
		if eof {
			return out
		}
	}
}

func TestOpenSource_SingleFile(t *testing.T) {
	path := writeDC(t, t.TempDir(), "a.wav", 8000, 10, 0.5)

	src, err := openSource([]string{path}, "shuffle", 0)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, path, src.reader.Name())
	assert.Equal(t, int64(10), src.reader.Frames())
}

func TestOpenSource_Sequence(t *testing.T) {
	dir := t.TempDir()
	a := writeDC(t, dir, "a.wav", 8000, 3, 0.5)
	b := writeDC(t, dir, "b.wav", 8000, 2, -0.5)

	for _, mode := range []string{"sequence", "queue"} {
		t.Run(mode, func(t *testing.T) {
			src, err := openSource([]string{a, b}, mode, 0)
			require.NoError(t, err)
			defer src.Close()

			got := drain(t, src)
			require.Len(t, got, 5)
			for i, v := range got {
				want := 0.5
				if i >= 3 {
					want = -0.5
				}
				assert.InDelta(t, want, v, 1e-3, "frame %d", i)
			}
		})
	}
}

func TestOpenSource_Errors(t *testing.T) {
	dir := t.TempDir()
	a := writeDC(t, dir, "a.wav", 8000, 3, 0)
	b := writeDC(t, dir, "b.wav", 16000, 3, 0)

	_, err := openSource([]string{a, b}, "sequence", 0)
	require.ErrorIs(t, err, audiofile.ErrFormatMismatch)

	_, err = openSource([]string{a, a}, "backwards", 0)
	require.ErrorIs(t, err, audiofile.ErrInvalidMode)

	_, err = openSource(nil, "sequence", 0)
	require.ErrorIs(t, err, audiofile.ErrNoFiles)

	_, err = openSource([]string{filepath.Join(dir, "missing.wav")}, "sequence", 0)
	require.Error(t, err)
}
