package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_ExtensionOffset(t *testing.T) {
	tests := []struct {
		kind      Kind
		extension int
		offset    int
		name      string
	}{
		{None, 0, 0, "none"},
		{Linear, 1, 0, "linear"},
		{Lagrange3, 3, 1, "lagrange3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.extension, tt.kind.Extension())
			assert.Equal(t, tt.offset, tt.kind.Offset())
			assert.Equal(t, tt.name, tt.kind.String())
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"none", "Linear", " lagrange3 ", "cubic"} {
		_, err := ParseKind(s)
		require.NoError(t, err, s)
	}

	k, err := ParseKind("cubic")
	require.NoError(t, err)
	assert.Equal(t, Lagrange3, k)

	_, err = ParseKind("sinc")
	assert.Error(t, err)
}

func TestLookup_None(t *testing.T) {
	v := []float64{10, 20, 30}
	assert.InDelta(t, 10.0, Lookup(None, v, 0.0), 0)
	assert.InDelta(t, 10.0, Lookup(None, v, 0.99), 0)
	assert.InDelta(t, 30.0, Lookup(None, v, 2.5), 0)
}

func TestLookup_Linear(t *testing.T) {
	v := []float32{0, 1, 3}
	assert.InDelta(t, 0.5, float64(Lookup(Linear, v, 0.5)), 1e-6)
	assert.InDelta(t, 2.0, float64(Lookup(Linear, v, 1.5)), 1e-6)
	assert.InDelta(t, 1.0, float64(Lookup(Linear, v, 1.0)), 0)
}

func TestLookup_Lagrange3(t *testing.T) {
	// A cubic is reproduced exactly by third-order Lagrange interpolation.
	cubic := func(x float64) float64 { return 0.5*x*x*x - x*x + 2*x - 1 }
	v := make([]float64, 8)
	for i := range v {
		v[i] = cubic(float64(i))
	}

	for _, pos := range []float64{1, 1.25, 2.5, 3.75, 5.1} {
		assert.InDelta(t, cubic(pos), Lookup(Lagrange3, v, pos), 1e-9, "pos=%v", pos)
	}

	// Integer positions return the sample itself.
	assert.InDelta(t, v[4], Lookup(Lagrange3, v, 4), 1e-12)
}
