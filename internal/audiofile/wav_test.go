package audiofile

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWAV(t *testing.T, path string, rate, bits int, planar [][]float64) {
	t.Helper()
	w, err := Create(path, rate, bits, len(planar))
	require.NoError(t, err)
	require.NoError(t, WritePlanar(w, planar))
	assert.Equal(t, int64(len(planar[0])), w.Frames())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}

func TestWAV_RoundTrip(t *testing.T) {
	left := []float64{0, 0.5, -0.5, 0.25, 1, -1, 0.125, 0}
	right := []float64{0.75, -0.25, 0, 0, 0.5, 0.5, -0.75, 0.1}

	for _, bits := range []int{8, 16, 24, 32} {
		t.Run(fmt.Sprintf("%dbit", bits), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "clip.wav")
			writeWAV(t, path, 22050, bits, [][]float64{left, right})

			r, err := Open(path)
			require.NoError(t, err)
			defer func() { _ = r.Close() }()

			assert.Equal(t, 2, r.NumChannels())
			assert.InDelta(t, 22050.0, r.SampleRate(), 0)
			assert.Equal(t, int64(len(left)), r.Frames())

			l, err := r.Acquire()
			require.NoError(t, err)
			defer l.Release()

			dst := make([]float32, 2*(len(left)+2))
			n, eof, err := l.ReadFrames(dst, false)
			require.NoError(t, err)
			assert.True(t, eof)
			require.Equal(t, len(left), n)

			tol := max(2.0/float64(int64(1)<<(bits-1)), 1e-6)
			for i := range left {
				assert.InDelta(t, left[i], float64(dst[2*i]), tol, "left[%d]", i)
				assert.InDelta(t, right[i], float64(dst[2*i+1]), tol, "right[%d]", i)
			}
		})
	}
}

func TestWAV_LoopRewinds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loop.wav")
	writeWAV(t, path, 8000, 16, [][]float64{{0.25, 0.5, 0.75}})

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	l, err := r.Acquire()
	require.NoError(t, err)

	dst := make([]float32, 7)
	n, eof, err := l.ReadFrames(dst, true)
	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, 7, n)
	for i, want := range []float64{0.25, 0.5, 0.75, 0.25, 0.5, 0.75, 0.25} {
		assert.InDelta(t, want, float64(dst[i]), 1e-4, "i=%d", i)
	}
}

func TestWriter_InterleavedAndClipping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.wav")
	w, err := Create(path, 8000, 16, 2)
	require.NoError(t, err)
	require.NoError(t, w.WriteInterleaved([]float32{2, -2, 0.5, -0.5, 9}))
	assert.Equal(t, int64(2), w.Frames())
	require.NoError(t, w.Close())
	require.ErrorIs(t, w.WriteInterleaved([]float32{0, 0}), ErrWriterClosed)

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	l, err := r.Acquire()
	require.NoError(t, err)

	dst := make([]float32, 4)
	n, _, err := l.ReadFrames(dst, false)
	require.NoError(t, err)
	require.Equal(t, 2, n)
	assert.InDelta(t, 1.0, float64(dst[0]), 1e-4)
	assert.InDelta(t, -1.0, float64(dst[1]), 1e-4)
	assert.InDelta(t, 0.5, float64(dst[2]), 1e-4)
	assert.InDelta(t, -0.5, float64(dst[3]), 1e-4)
}

func TestWritePlanar_MissingChannelIsSilent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono-to-stereo.wav")
	w, err := Create(path, 8000, 16, 2)
	require.NoError(t, err)
	require.NoError(t, WritePlanar(w, [][]float32{{0.5, 0.5}}))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	l, err := r.Acquire()
	require.NoError(t, err)

	dst := make([]float32, 4)
	_, _, err = l.ReadFrames(dst, false)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, float64(dst[0]), 1e-4)
	assert.InDelta(t, 0.0, float64(dst[1]), 0)
}

func TestCreate_Errors(t *testing.T) {
	dir := t.TempDir()
	_, err := Create(filepath.Join(dir, "a.wav"), 8000, 12, 1)
	require.ErrorIs(t, err, ErrBitDepth)
	_, err = Create(filepath.Join(dir, "b.wav"), 8000, 16, 0)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
