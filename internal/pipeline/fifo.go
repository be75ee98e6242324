package pipeline

import "github.com/tphakala/go-audio-graph/internal/simdops"

// FIFO is a growable sample queue used to re-block audio: blocks of one
// size go in, reads of any other size come out. It uses power-of-2 storage
// so positions wrap with a mask. FIFO is not safe for concurrent use.
type FIFO[F simdops.Float] struct {
	data     []F
	mask     int
	size     int
	readPos  int
	writePos int
}

// NewFIFO returns a FIFO with room for at least capacity samples before it
// has to grow.
func NewFIFO[F simdops.Float](capacity int) *FIFO[F] {
	size := minFIFOCapacity
	for size < capacity {
		size <<= 1
	}
	return &FIFO[F]{
		data: make([]F, size),
		mask: size - 1,
	}
}

// Write appends samples, growing the storage when needed.
func (f *FIFO[F]) Write(samples []F) {
	if f.size+len(samples) > len(f.data) {
		f.grow(f.size + len(samples))
	}
	for _, s := range samples {
		f.data[f.writePos] = s
		f.writePos = (f.writePos + 1) & f.mask
	}
	f.size += len(samples)
}

// Read moves up to len(dst) samples into dst and returns the count.
func (f *FIFO[F]) Read(dst []F) int {
	n := min(len(dst), f.size)
	first := min(n, len(f.data)-f.readPos)
	copy(dst, f.data[f.readPos:f.readPos+first])
	copy(dst[first:n], f.data[:n-first])
	f.readPos = (f.readPos + n) & f.mask
	f.size -= n
	return n
}

// Len returns the number of buffered samples.
func (f *FIFO[F]) Len() int {
	return f.size
}

// Cap returns the current storage size.
func (f *FIFO[F]) Cap() int {
	return len(f.data)
}

// Clear drops all buffered samples.
func (f *FIFO[F]) Clear() {
	f.size = 0
	f.readPos = 0
	f.writePos = 0
}

// grow enlarges the storage to at least minCapacity, keeping sample order.
func (f *FIFO[F]) grow(minCapacity int) {
	size := len(f.data)
	for size < minCapacity {
		size *= fifoGrowthFactor
	}
	data := make([]F, size)
	n := f.Read(data)

	f.data = data
	f.mask = size - 1
	f.size = n
	f.readPos = 0
	f.writePos = n & f.mask
}
