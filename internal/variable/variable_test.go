package variable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVar_SetNotifiesOnChange(t *testing.T) {
	v := New(1.0)

	var got []float64
	unsubscribe := v.Subscribe(func(x float64) { got = append(got, x) })

	v.Set(2)
	v.Set(2) // unchanged, no notification
	v.Set(3)
	assert.Equal(t, []float64{2, 3}, got)
	assert.InDelta(t, 3.0, v.Get(), 0)

	unsubscribe()
	unsubscribe()
	v.Set(4)
	assert.Equal(t, []float64{2, 3}, got)
}

func TestVar_Swap(t *testing.T) {
	v := New("a")
	assert.Equal(t, "a", v.Swap("b"))
	assert.Equal(t, "b", v.Get())
}

func TestVar_ZeroValue(t *testing.T) {
	var v Var[bool]
	assert.False(t, v.Get())

	fired := 0
	v.Subscribe(func(bool) { fired++ })
	v.Set(true)
	assert.Equal(t, 1, fired)
}

func TestVar_Concurrent(t *testing.T) {
	v := New(0)
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			v.Set(n)
			_ = v.Get()
		}(i)
	}
	wg.Wait()
	assert.GreaterOrEqual(t, v.Get(), 0)
}

func TestVar_SwapConcurrentChain(t *testing.T) {
	const n = 64
	v := New(0)

	olds := make([]int, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			olds[i] = v.Swap(i + 1)
		}(i)
	}
	wg.Wait()

	// Every stored value is handed back by exactly one Swap, except the
	// last, which is still held.
	seen := make(map[int]int, n+1)
	for _, old := range olds {
		seen[old]++
	}
	seen[v.Get()]++
	assert.Len(t, seen, n+1)
	for value, count := range seen {
		assert.Equal(t, 1, count, "value %d", value)
	}
}
