package pipeline

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_Bounded(t *testing.T) {
	q := NewQueue[int](3)
	require.Equal(t, 4, q.Cap(), "capacity rounds up to a power of 2")

	for i := range 4 {
		require.True(t, q.Push(i))
	}
	assert.False(t, q.Push(99), "push on a full queue fails")
	assert.Equal(t, 4, q.Len())

	for want := range 4 {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := q.Pop()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Len())
}

func TestQueue_WrapsAround(t *testing.T) {
	q := NewQueue[int](2)
	for i := range 100 {
		require.True(t, q.Push(i))
		got, ok := q.Pop()
		require.True(t, ok)
		require.Equal(t, i, got)
	}
}

func TestQueue_ConcurrentOrder(t *testing.T) {
	const items = 10000
	q := NewQueue[int](8)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < items; {
			if q.Push(i) {
				i++
			}
		}
	}()

	for want := 0; want < items; {
		if got, ok := q.Pop(); ok {
			require.Equal(t, want, got)
			want++
		}
	}
	wg.Wait()
}

func TestFIFO_Reblocks(t *testing.T) {
	f := NewFIFO[float32](4)
	var got []float32
	next := float32(0)

	// Write blocks of 5, read blocks of 3; the storage wraps and grows.
	out := make([]float32, 3)
	for range 20 {
		block := make([]float32, 5)
		for i := range block {
			block[i] = next
			next++
		}
		f.Write(block)
		for f.Len() >= len(out) {
			n := f.Read(out)
			got = append(got, out[:n]...)
		}
	}
	rest := make([]float32, f.Len())
	got = append(got, rest[:f.Read(rest)]...)

	require.Len(t, got, 100)
	for i, v := range got {
		require.InDelta(t, float64(i), float64(v), 0, "sample %d", i)
	}
}

func TestFIFO_GrowKeepsWrappedOrder(t *testing.T) {
	f := NewFIFO[float64](minFIFOCapacity)
	seq := func(start, n int) []float64 {
		s := make([]float64, n)
		for i := range s {
			s[i] = float64(start + i)
		}
		return s
	}

	f.Write(seq(0, 12))
	f.Read(make([]float64, 10))
	f.Write(seq(12, 10)) // wraps the read position past the end
	require.Equal(t, minFIFOCapacity, f.Cap())

	f.Write(seq(22, 20)) // forces growth
	assert.Greater(t, f.Cap(), minFIFOCapacity)

	out := make([]float64, 64)
	n := f.Read(out)
	assert.Equal(t, seq(10, 32), out[:n])
}

func TestFIFO_ShortReadAndClear(t *testing.T) {
	f := NewFIFO[float64](0)
	f.Write([]float64{1, 2})

	out := []float64{9, 9, 9}
	assert.Equal(t, 2, f.Read(out))
	assert.Equal(t, []float64{1, 2, 9}, out)
	assert.Equal(t, 0, f.Read(out))

	f.Write([]float64{3})
	f.Clear()
	assert.Equal(t, 0, f.Len())
}
