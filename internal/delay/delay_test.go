package delay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-graph/internal/testutil"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// With a sample rate of 1 a duration in seconds is a delay in samples.
func newUnitRateLine(t *testing.T, capacity float64) *Line[float64] {
	t.Helper()
	l, err := NewLine[float64](capacity, 1)
	require.NoError(t, err)
	return l
}

func runImpulse(l *Line[float64], at, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		in := 0.0
		if i == at {
			in = 1
		}
		out[i] = l.Tick(in)
	}
	return out
}

func TestLine_IntegerDelays(t *testing.T) {
	const capacity = 8
	for _, at := range []int{0, 3, 20} {
		for d := 0; d <= capacity; d++ {
			l := newUnitRateLine(t, capacity)
			l.SetDuration(float64(d))

			out := runImpulse(l, at, at+capacity+4)
			assert.Equal(t, testutil.Impulse[float64](len(out), at+d), out, "impulse at %d, delay %d", at, d)
		}
	}
}

func TestLine_FractionalDelay(t *testing.T) {
	l := newUnitRateLine(t, 8)
	l.SetDuration(2.25)

	out := runImpulse(l, 10, 20)
	assert.InDelta(t, 0.75, out[12], 1e-12)
	assert.InDelta(t, 0.25, out[13], 1e-12)
	out[12], out[13] = 0, 0
	testutil.AssertAllEqual(t, out, 0, 0)
}

func TestLine_FractionalDelayAcrossMirror(t *testing.T) {
	// Ring length is 5: the read between the last slot and slot 0 goes
	// through the mirrored sample.
	l := newUnitRateLine(t, 4)
	for i := range 4 {
		l.Tick(float64(i + 1))
	}
	l.SetDuration(0.5)
	assert.InDelta(t, 4.5, l.Tick(5), 1e-12)
	assert.InDelta(t, 5.5, l.Tick(6), 1e-12)
}

func TestLine_DurationClamp(t *testing.T) {
	l, err := NewLine[float64](0.5, 100)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, l.Capacity(), 0)

	l.SetDuration(10)
	assert.InDelta(t, 50.0, l.DelaySamples(), 0)
	assert.InDelta(t, 10.0, l.Duration(), 0)

	l.SetDuration(-1)
	assert.InDelta(t, 0.0, l.DelaySamples(), 0)

	// A clamped line must never read out of range.
	l.SetDuration(10)
	for i := range 500 {
		l.Tick(float64(i))
	}
	assert.InDelta(t, 450.0, l.Tick(500), 1e-9)
}

func TestLine_TinyDelayStaysInRing(t *testing.T) {
	l, err := NewLine[float64](1, 44100)
	require.NoError(t, err)
	l.SetDuration(1e-20)
	require.Greater(t, l.DelaySamples(), 0.0)

	for i := range 3 {
		assert.InDelta(t, float64(i+1), l.Tick(float64(i+1)), 1e-9)
	}
}

func TestLine_Reset(t *testing.T) {
	l := newUnitRateLine(t, 4)
	l.SetDuration(2)
	l.Tick(1)
	l.Tick(2)
	l.Reset()
	assert.Equal(t, []float64{0, 0, 0}, []float64{l.Tick(0), l.Tick(0), l.Tick(0)})
}

func TestNewLine_Errors(t *testing.T) {
	_, err := NewLine[float32](0, 44100)
	require.ErrorIs(t, err, ErrMaxDuration)
	_, err = NewLine[float32](1, 0)
	require.ErrorIs(t, err, ErrSampleRate)
}

func TestUnit_ScalarDuration(t *testing.T) {
	src := testutil.NewSequence(4, testutil.Ramp(1.0, 4), testutil.Ramp(5.0, 4))
	u, err := NewUnit[float64](src, unit.NewConstant(0.5), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, u.BlockSize(0))
	assert.InDelta(t, 4.0, u.SampleRate(0), 0)

	got := testutil.Pull[float64](u, 0, 2)
	assert.Equal(t, []float64{0, 0, 1, 2, 3, 4, 5, 6}, got)
}

func TestUnit_PerSampleDuration(t *testing.T) {
	src := testutil.NewSequence(1, testutil.Ramp(1.0, 6))
	dur := testutil.NewSequence(1, []float64{0, 0, 1, 1, 2, 2})
	u, err := NewUnit[float64](src, dur, 4)
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 2, 2, 3, 3, 4}, u.Process(&unit.Info{}, 0))
}

func TestUnit_DurationChannelsWrap(t *testing.T) {
	src := testutil.NewSequence(1, testutil.Ramp(1.0, 4))
	src.Channels = 3
	src.ChannelOffset = 10
	u, err := NewUnit[float64](src, unit.NewConstant(0.0, 1.0), 2)
	require.NoError(t, err)
	require.Equal(t, 3, u.NumChannels())

	out := testutil.PullAll[float64](u, 1)
	assert.Equal(t, []float64{1, 2, 3, 4}, out[0])
	assert.Equal(t, []float64{0, 11, 12, 13}, out[1])
	assert.Equal(t, []float64{21, 22, 23, 24}, out[2])
}

func TestUnit_Float32WithMulAdd(t *testing.T) {
	src := testutil.NewSequence(2, []float32{1, 2, 3, 4})
	d, err := NewUnit[float32](src, unit.NewConstant[float32](1), 1)
	require.NoError(t, err)
	m := unit.NewMulAdd[float32](d, unit.NewConstant[float32](2), unit.NewConstant[float32](1))

	assert.Equal(t, []float32{1, 1, 3, 5}, m.Process(&unit.Info{}, 0))
}

func TestUnit_DCInputFillsBlock(t *testing.T) {
	u, err := NewUnit[float64](unit.NewConstant(1.0), unit.NewConstant(0.0), 1,
		unit.WithBlockSize(8), unit.WithSampleRate(100))
	require.NoError(t, err)
	assert.Equal(t, 8, u.BlockSize(0))

	testutil.AssertAllEqual(t, u.Process(&unit.Info{}, 0), 1, 0)

	// Delayed by two samples, the held value starts after the initial silence.
	d, err := NewUnit[float64](unit.NewConstant(1.0), unit.NewConstant(2.0/128), 1,
		unit.WithBlockSize(4), unit.WithSampleRate(128))
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 1, 1, 1, 1, 1, 1}, testutil.Pull[float64](d, 0, 2))
}

func TestNewUnit_NilInput(t *testing.T) {
	_, err := NewUnit[float64](nil, nil, 1)
	require.ErrorIs(t, err, ErrNilInput)
}
