package audiograph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-graph/internal/analysis"
	"github.com/tphakala/go-audio-graph/internal/resample"
	"github.com/tphakala/go-audio-graph/internal/testutil"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

func TestResample_BypassWhenFormatMatches(t *testing.T) {
	cfg := testConfig(4)
	sine, err := Sine[float64](100, 1, cfg)
	require.NoError(t, err)

	out, err := Resample(sine, nil, cfg)
	require.NoError(t, err)
	assert.Same(t, sine, out)

	out, err = Resample(sine, Constant(1.0), cfg)
	require.NoError(t, err)
	assert.Same(t, sine, out, "unity rate is no conversion")

	_, err = Resample[float64](nil, nil, cfg)
	require.ErrorIs(t, err, ErrNilUnit)
}

func TestResample_HalfSpeedHalvesPitch(t *testing.T) {
	const rate = 8192.0
	cfg := DefaultConfig()
	cfg.SampleRate = rate
	cfg.BlockSize = 256

	sine, err := Sine[float64](1000, 0.5, &cfg)
	require.NoError(t, err)
	slow, err := Resample(sine, Constant(0.5), &cfg)
	require.NoError(t, err)

	g, err := NewGraph(slow, &cfg)
	require.NoError(t, err)

	out := g.Render(4096)[0]
	assert.InDelta(t, 500.0, analysis.DominantFrequency(out, rate), 5)
	testutil.AssertAllInRange(t, out, -0.5, 0.5)
}

func TestDelay_ShiftsImpulse(t *testing.T) {
	cfg := testConfig(4)
	src := testutil.NewSequence(testRate, testutil.Impulse[float64](4, 1), make([]float64, 4), make([]float64, 4))

	d, err := Delay(src, Constant(3/testRate), 8/testRate, cfg)
	require.NoError(t, err)
	g, err := NewGraph(d, cfg)
	require.NoError(t, err)

	assert.Equal(t, testutil.Impulse[float64](12, 4), g.Render(12)[0])
}

func TestControl_FollowsVariable(t *testing.T) {
	v := NewVar(0.25)
	g, err := NewGraph(Control[float64](v), testConfig(4))
	require.NoError(t, err)

	testutil.AssertAllEqual(t, g.Next()[0], 0.25, 0)
	v.Set(0.75)
	testutil.AssertAllEqual(t, g.Next()[0], 0.75, 0)
}

func TestFilePlay_MulAdd(t *testing.T) {
	cfg := testConfig(3)
	r, err := ReaderFromSamples("ramp", []float32{1, 2, 3}, 1, testRate)
	require.NoError(t, err)

	file, err := FilePlay(r, Constant(0.0), Constant(2.0), Constant(1.0), cfg)
	require.NoError(t, err)
	assert.IsType(t, &unit.MulAdd[float64]{}, file.Unit)
	assert.Same(t, r, file.Reader())

	g, err := NewGraph[float64](file, cfg)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 5, 7}, g.Render(3)[0])
	require.NoError(t, file.Close())
}

func TestFilePlay_IdentityMulAddIsSkipped(t *testing.T) {
	r, err := ReaderFromSamples("ramp", []float32{1, 2, 3}, 1, testRate)
	require.NoError(t, err)

	file, err := FilePlay(r, nil, Constant[float32](1), Constant[float32](0), testConfig(3))
	require.NoError(t, err)
	defer file.Close()

	_, wrapped := file.Unit.(*unit.MulAdd[float32])
	assert.False(t, wrapped)
}

func TestMixer_FinishesWithLastInput(t *testing.T) {
	cfg := testConfig(2)
	mix, err := Mixer[float64](1, true, cfg)
	require.NoError(t, err)

	for _, samples := range [][]float32{{1, 1, 1}, {10, 10, 10, 10, 10}} {
		r, err := ReaderFromSamples("clip", samples, 1, testRate)
		require.NoError(t, err)
		file, err := FilePlay[float64](r, Constant(0.0), nil, nil, cfg)
		require.NoError(t, err)
		mix.Add(file)
	}

	g, err := NewGraph[float64](mix, cfg)
	require.NoError(t, err)

	assert.Equal(t, []float64{11, 11, 11, 10, 10, 0}, g.Render(6)[0])
	assert.Equal(t, 0, mix.Len())
	assert.True(t, g.Finished())
}

func TestMixer_ConvertedFilePlaysToTheEnd(t *testing.T) {
	ones := make([]float32, 12)
	for i := range ones {
		ones[i] = 1
	}
	r, err := ReaderFromSamples("ones", ones, 1, testRate)
	require.NoError(t, err)
	file, err := FilePlay[float64](r, Constant(0.0), nil, nil, testConfig(8))
	require.NoError(t, err)
	defer file.Close()

	cfg := testConfig(2)
	conv, err := resample.New[float64](file, nil, InterpLinear, unit.WithBlockSize(cfg.BlockSize), unit.WithSampleRate(cfg.SampleRate))
	require.NoError(t, err)
	mix, err := Mixer[float64](1, true, cfg)
	require.NoError(t, err)
	mix.Add(conv)

	g, err := NewGraph[float64](mix, cfg)
	require.NoError(t, err)

	emitted := 0
	for _, v := range g.Render(32)[0] {
		if v == 1 {
			emitted++
		}
	}
	assert.Equal(t, 12, emitted)
	assert.True(t, g.Finished())
}

// sineReader is one second of a 441 Hz tone at 22.05 kHz.
func sineReader(t *testing.T) *Reader {
	t.Helper()
	const fileRate = 22050.0
	r, err := ReaderFromSamples("tone", testutil.DeterministicSine[float32](441, fileRate, 0.5, int(fileRate)), 1, fileRate)
	require.NoError(t, err)
	return r
}

func TestSimplePlayer_ConvertsFileRate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BlockSize = 64

	p, err := SimplePlayer[float32](t.Context(), sineReader(t), nil, nil, &cfg)
	require.NoError(t, err)
	assert.InDelta(t, cfg.SampleRate, p.SampleRate(0), 0)
	assert.Equal(t, cfg.BlockSize, p.BlockSize(0))

	g, err := NewGraph[float32](p, &cfg)
	require.NoError(t, err)

	// Stays inside the blocks the task renders before it starts.
	out := g.Render(1536)[0]
	assert.InDelta(t, 441.0, analysis.DominantFrequency(out, cfg.SampleRate), 10)
	assert.InDelta(t, 0.5, analysis.Peak(out), 0.01)
	assert.Zero(t, p.Underruns())
	assert.False(t, p.Done().Get())

	require.NoError(t, p.Close())
}

func TestSimplePlayerHQ_UsesLagrange(t *testing.T) {
	cfg := DefaultConfig()
	p, err := SimplePlayerHQ[float64](t.Context(), sineReader(t), nil, nil, &cfg)
	require.NoError(t, err)
	defer p.Close()

	conv, ok := p.Unit.(*resample.Converter[float64])
	require.True(t, ok)
	assert.Equal(t, InterpLagrange3, conv.Interpolation())
}

func TestSimplePlayer_ReaderLease(t *testing.T) {
	cfg := DefaultConfig()
	r := sineReader(t)

	p, err := SimplePlayer[float32](t.Context(), r, nil, nil, &cfg)
	require.NoError(t, err)

	_, err = SimplePlayer[float32](t.Context(), r, nil, nil, &cfg)
	require.ErrorIs(t, err, ErrReaderOwned)

	require.NoError(t, p.Close())
	p, err = SimplePlayer[float32](t.Context(), r, nil, nil, &cfg)
	require.NoError(t, err, "closing a player releases its reader")
	require.NoError(t, p.Close())

	_, err = SimplePlayer[float32](t.Context(), nil, nil, nil, &cfg)
	require.ErrorIs(t, err, ErrNilUnit)
}
