package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResize_ReusesCapacity(t *testing.T) {
	b := New[float64](8)
	for i := range b.Len() {
		b.Set(i, float64(i+1))
	}
	backing := &b.Data()[0]

	b.Resize(4)
	require.Equal(t, 4, b.Len())
	assert.Equal(t, 8, b.Cap())
	assert.Same(t, backing, &b.Data()[0], "shrinking must not reallocate")
	assert.Equal(t, []float64{1, 2, 3, 4}, b.Data())

	// Growing back within capacity exposes zeroed samples, not stale data.
	b.Resize(6)
	assert.Same(t, backing, &b.Data()[0])
	assert.Equal(t, []float64{1, 2, 3, 4, 0, 0}, b.Data())
}

func TestResize_GrowsAndPreserves(t *testing.T) {
	b := FromSlice([]float32{1, 2, 3})
	b.Resize(5)

	require.Equal(t, 5, b.Len())
	assert.GreaterOrEqual(t, b.Cap(), 5)
	assert.Equal(t, []float32{1, 2, 3, 0, 0}, b.Data())
}

func TestResize_Negative(t *testing.T) {
	b := New[float64](-3)
	assert.Equal(t, 0, b.Len())

	b.Resize(-1)
	assert.Equal(t, 0, b.Len())
}

func TestFillZeroScale(t *testing.T) {
	b := New[float64](4)
	b.Fill(0.5)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, b.Data())

	b.Scale(4)
	assert.Equal(t, []float64{2, 2, 2, 2}, b.Data())

	b.ZeroFrom(2)
	assert.Equal(t, []float64{2, 2, 0, 0}, b.Data())

	b.Zero()
	assert.Equal(t, []float64{0, 0, 0, 0}, b.Data())
}

func TestCopyFrom(t *testing.T) {
	b := New[float64](2)
	b.CopyFrom([]float64{3, 4, 5})
	assert.Equal(t, []float64{3, 4, 5}, b.Data())
	assert.InDelta(t, 4.0, b.At(1), 0)
}
