// Package delay implements a fractional delay line and the graph unit that
// runs one line per input channel under a duration control unit.
package delay

import (
	"errors"
	"fmt"
	"math"

	"github.com/tphakala/go-audio-graph/internal/buffer"
	"github.com/tphakala/go-audio-graph/internal/interp"
	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Errors returned by the constructors.
var (
	ErrMaxDuration = errors.New("delay: maximum duration must be positive")
	ErrSampleRate  = errors.New("delay: sample rate must be positive")
	ErrNilInput    = errors.New("delay: nil input unit")
)

// Line is a circular delay line read with linear interpolation.
//
// The ring holds capacity+1 samples so a delay equal to the capacity still
// reads the sample written capacity ticks ago. One more slot past the ring
// mirrors slot 0, so a read between the last slot and slot 0 finds its right
// neighbour without wrapping.
type Line[F simdops.Float] struct {
	samples    *buffer.Buffer[F]
	length     int
	capacity   float64
	sampleRate float64

	writePos int
	duration float64
	delay    float64
}

// NewLine returns a line able to delay by up to maxDuration seconds at
// sampleRate. The initial delay is zero.
func NewLine[F simdops.Float](maxDuration, sampleRate float64) (*Line[F], error) {
	if !(maxDuration > 0) || math.IsInf(maxDuration, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrMaxDuration, maxDuration)
	}
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrSampleRate, sampleRate)
	}

	capacity := math.Ceil(maxDuration * sampleRate)
	length := int(capacity) + 1
	return &Line[F]{
		samples:    buffer.New[F](length + 1),
		length:     length,
		capacity:   capacity,
		sampleRate: sampleRate,
	}, nil
}

// Capacity returns the longest delay in samples.
func (l *Line[F]) Capacity() float64 {
	return l.capacity
}

// SetDuration sets the delay in seconds, clamped to [0, Capacity] samples.
// Setting the current duration again is a no-op.
func (l *Line[F]) SetDuration(seconds float64) {
	if seconds == l.duration {
		return
	}
	l.duration = seconds
	d := seconds * l.sampleRate
	switch {
	case !(d > 0):
		d = 0
	case d > l.capacity:
		d = l.capacity
	}
	l.delay = d
}

// Duration returns the last duration set, in seconds, before clamping.
func (l *Line[F]) Duration() float64 {
	return l.duration
}

// DelaySamples returns the effective delay in samples.
func (l *Line[F]) DelaySamples() float64 {
	return l.delay
}

// Tick writes in and returns the sample delayed by the current delay.
func (l *Line[F]) Tick(in F) F {
	s := l.samples.Data()

	s[l.writePos] = in
	if l.writePos == 0 {
		s[l.length] = in
	}

	// A delay below the ring's float resolution can round the wrapped
	// position up to length; fold it back onto slot 0.
	readPos := float64(l.writePos) - l.delay
	if readPos < 0 {
		readPos += float64(l.length)
		if readPos >= float64(l.length) {
			readPos -= float64(l.length)
		}
	}
	out := interp.Lookup(interp.Linear, s, readPos)

	l.writePos++
	if l.writePos >= l.length {
		l.writePos = 0
	}
	return out
}

// Process runs Tick over in, writing into out. out and in may alias.
func (l *Line[F]) Process(out, in []F) {
	for i, v := range in[:min(len(in), len(out))] {
		out[i] = l.Tick(v)
	}
}

// Reset clears the stored history and rewinds the write head.
func (l *Line[F]) Reset() {
	l.samples.Zero()
	l.writePos = 0
}
