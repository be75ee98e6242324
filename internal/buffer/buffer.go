// Package buffer provides the resizable sample array every graph component
// stores its audio in.
package buffer

import "github.com/tphakala/go-audio-graph/internal/simdops"

// Buffer is a contiguous run of samples with capacity reuse.
// Len never exceeds Cap; shrinking keeps the backing array.
type Buffer[F simdops.Float] struct {
	samples []F
}

// New returns a zero-filled Buffer of the given length.
func New[F simdops.Float](length int) *Buffer[F] {
	if length < 0 {
		length = 0
	}
	return &Buffer[F]{samples: make([]F, length)}
}

// FromSlice wraps an existing slice without copying.
func FromSlice[F simdops.Float](s []F) *Buffer[F] {
	return &Buffer[F]{samples: s}
}

// Data returns the underlying slice.
func (b *Buffer[F]) Data() []F {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer[F]) Len() int {
	return len(b.samples)
}

// Cap returns the current capacity of the backing slice.
func (b *Buffer[F]) Cap() int {
	return cap(b.samples)
}

// At returns the sample at i.
func (b *Buffer[F]) At(i int) F {
	return b.samples[i]
}

// Set stores v at i.
func (b *Buffer[F]) Set(i int, v F) {
	b.samples[i] = v
}

// Resize sets the length to n, reusing existing capacity when possible.
// Leading content is preserved and newly exposed elements are zeroed.
func (b *Buffer[F]) Resize(n int) {
	if n < 0 {
		n = 0
	}
	oldLen := len(b.samples)
	if n <= cap(b.samples) {
		b.samples = b.samples[:n]
	} else {
		s := make([]F, n)
		copy(s, b.samples)
		b.samples = s
	}
	if n > oldLen {
		clear(b.samples[oldLen:n])
	}
}

// Zero sets all samples to 0.
func (b *Buffer[F]) Zero() {
	clear(b.samples)
}

// ZeroFrom sets samples in [start, Len) to 0.
func (b *Buffer[F]) ZeroFrom(start int) {
	if start < 0 {
		start = 0
	}
	if start < len(b.samples) {
		clear(b.samples[start:])
	}
}

// Fill sets every sample to v.
func (b *Buffer[F]) Fill(v F) {
	simdops.Fill(b.samples, v)
}

// CopyFrom resizes b to len(src) and copies src into it.
func (b *Buffer[F]) CopyFrom(src []F) {
	b.Resize(len(src))
	copy(b.samples, src)
}

// Scale multiplies every sample by s.
func (b *Buffer[F]) Scale(s F) {
	simdops.For[F]().Scale(b.samples, b.samples, s)
}
