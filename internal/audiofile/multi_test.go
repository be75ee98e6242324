package audiofile

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readAll(t *testing.T, r *Reader, frames int, loop bool) ([]float32, bool) {
	t.Helper()
	l, err := r.Acquire()
	require.NoError(t, err)
	defer l.Release()

	dst := make([]float32, frames*r.NumChannels())
	n, eof, err := l.ReadFrames(dst, loop)
	require.NoError(t, err)
	return dst[:n*r.NumChannels()], eof
}

func clips(t *testing.T) []*Reader {
	t.Helper()
	return []*Reader{
		mono(t, "a", 1, 1),
		mono(t, "b", 2, 2, 2),
		mono(t, "c", 3),
	}
}

func singles(t *testing.T, n int) []*Reader {
	t.Helper()
	out := make([]*Reader, n)
	for i := range out {
		out[i] = mono(t, "single", float32(i))
	}
	return out
}

func TestMulti_SequenceOnce(t *testing.T) {
	m, err := NewMulti(SequenceOnce, clips(t))
	require.NoError(t, err)

	got, eof := readAll(t, m.Reader(), 10, false)
	assert.True(t, eof)
	assert.Equal(t, []float32{1, 1, 2, 2, 2, 3}, got)

	got, eof = readAll(t, m.Reader(), 4, false)
	assert.True(t, eof, "stays ended until rewound")
	assert.Empty(t, got)

	// Looping the combined stream starts the sequence over.
	got, _ = readAll(t, m.Reader(), 8, true)
	assert.Equal(t, []float32{1, 1, 2, 2, 2, 3, 1, 1}, got)
}

func TestMulti_SequenceLoop(t *testing.T) {
	m, err := NewMulti(SequenceLoop, clips(t))
	require.NoError(t, err)

	got, eof := readAll(t, m.Reader(), 14, false)
	assert.False(t, eof)
	assert.Equal(t, []float32{1, 1, 2, 2, 2, 3, 1, 1, 2, 2, 2, 3, 1, 1}, got)
}

func TestMulti_RandomIsSeeded(t *testing.T) {
	play := func() []float32 {
		m, err := NewMulti(Random, singles(t, 5), WithRand(rand.New(rand.NewPCG(7, 11))))
		require.NoError(t, err)
		got, _ := readAll(t, m.Reader(), 40, false)
		return got
	}
	first := play()
	assert.Len(t, first, 40)
	assert.Equal(t, first, play())
}

func TestMulti_RandomNoRepeat(t *testing.T) {
	m, err := NewMulti(RandomNoRepeat, singles(t, 3), WithRand(rand.New(rand.NewPCG(1, 2))))
	require.NoError(t, err)

	got, eof := readAll(t, m.Reader(), 200, false)
	assert.False(t, eof)
	require.Len(t, got, 200)
	for i := 1; i < len(got); i++ {
		assert.NotEqual(t, got[i-1], got[i], "repeat at %d", i)
	}
}

func TestMulti_RandomNoRepeatSingleFile(t *testing.T) {
	m, err := NewMulti(RandomNoRepeat, singles(t, 1))
	require.NoError(t, err)

	got, _ := readAll(t, m.Reader(), 3, false)
	assert.Equal(t, []float32{0, 0, 0}, got)
}

func TestMulti_Callback(t *testing.T) {
	skip := func(prev, _ int) int { return prev + 2 }
	m, err := NewMulti(Callback, singles(t, 5), WithNext(skip))
	require.NoError(t, err)

	got, eof := readAll(t, m.Reader(), 10, false)
	assert.True(t, eof)
	assert.Equal(t, []float32{1, 3}, got)
}

func TestMulti_Queue(t *testing.T) {
	m, err := NewQueue(1, 1000, WithQueueCapacity(2))
	require.NoError(t, err)

	files := clips(t)
	require.NoError(t, m.Enqueue(files[0]))
	require.NoError(t, m.Enqueue(files[1]))
	require.ErrorIs(t, m.Enqueue(files[2]), ErrQueueFull)
	assert.False(t, files[2].Leased(), "rejected file is handed back")

	got, eof := readAll(t, m.Reader(), 10, false)
	assert.True(t, eof)
	assert.Equal(t, []float32{1, 1, 2, 2, 2}, got)
	assert.False(t, files[0].Leased())
	assert.False(t, files[1].Leased())

	require.NoError(t, m.Enqueue(files[2]))
	got, _ = readAll(t, m.Reader(), 4, false)
	assert.Equal(t, []float32{3}, got)
}

func TestMulti_Errors(t *testing.T) {
	_, err := NewMulti(SequenceOnce, nil)
	require.ErrorIs(t, err, ErrNoFiles)

	_, err = NewMulti(Queue, clips(t))
	require.ErrorIs(t, err, ErrInvalidMode)

	_, err = NewMulti(Callback, clips(t))
	require.ErrorIs(t, err, ErrInvalidMode)

	stereo, err := FromSamples("stereo", []float32{0, 0}, 2, 1000)
	require.NoError(t, err)
	_, err = NewMulti(SequenceOnce, append(clips(t), stereo))
	require.ErrorIs(t, err, ErrFormatMismatch)

	owned := clips(t)
	_, err = owned[1].Acquire()
	require.NoError(t, err)
	_, err = NewMulti(SequenceOnce, owned)
	require.ErrorIs(t, err, ErrReaderOwned)
	assert.False(t, owned[0].Leased(), "partial leases are released")

	m, err := NewMulti(SequenceOnce, clips(t))
	require.NoError(t, err)
	require.ErrorIs(t, m.Enqueue(mono(t, "x", 1)), ErrInvalidMode)
}

func TestParseMode(t *testing.T) {
	for _, mode := range []Mode{SequenceOnce, SequenceLoop, Random, RandomNoRepeat, Queue} {
		got, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	_, err := ParseMode("bogus")
	require.ErrorIs(t, err, ErrInvalidMode)
}
