// Package pipeline provides the buffers that carry audio between threads and
// between block sizes: a lock-free single-producer single-consumer queue
// and a growable sample FIFO.
package pipeline

import "sync/atomic"

// Queue is a bounded lock-free queue for exactly one producer goroutine and
// one consumer goroutine. Capacity is rounded up to a power of 2 so cursor
// wrapping is a mask instead of a modulo.
type Queue[T any] struct {
	data []T
	mask uint64

	head atomic.Uint64 // next slot to read; written by the consumer
	_    [cursorPaddingBytes]byte
	tail atomic.Uint64 // next slot to write; written by the producer
	_    [cursorPaddingBytes]byte
}

// NewQueue returns a queue holding at least capacity items.
func NewQueue[T any](capacity int) *Queue[T] {
	size := minQueueCapacity
	for size < capacity {
		size <<= 1
	}
	return &Queue[T]{
		data: make([]T, size),
		mask: uint64(size - 1),
	}
}

// Push appends v and reports whether there was room. Producer only.
func (q *Queue[T]) Push(v T) bool {
	tail := q.tail.Load()
	if tail-q.head.Load() == uint64(len(q.data)) {
		return false
	}
	q.data[tail&q.mask] = v
	q.tail.Store(tail + 1)
	return true
}

// Pop removes the oldest item. Consumer only.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	head := q.head.Load()
	if head == q.tail.Load() {
		return zero, false
	}
	slot := &q.data[head&q.mask]
	v := *slot
	*slot = zero
	q.head.Store(head + 1)
	return v, true
}

// Len returns the number of queued items. The value is a snapshot when
// called concurrently with Push or Pop.
func (q *Queue[T]) Len() int {
	return int(q.tail.Load() - q.head.Load())
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return len(q.data)
}
