package testutil

import (
	"math"

	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Ramp returns n samples counting up from start in steps of 1.
func Ramp[F simdops.Float](start F, n int) []F {
	out := make([]F, n)
	for i := range out {
		out[i] = start + F(i)
	}
	return out
}

// Impulse returns n zeros with a single 1 at index at.
func Impulse[F simdops.Float](n, at int) []F {
	out := make([]F, n)
	if at >= 0 && at < n {
		out[at] = 1
	}
	return out
}

// DeterministicSine returns n samples of a sine at freq Hz.
func DeterministicSine[F simdops.Float](freq, sampleRate, amplitude float64, n int) []F {
	out := make([]F, n)
	for i := range out {
		out[i] = F(amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate))
	}
	return out
}

// Interleave converts planar channels into one interleaved slice.
func Interleave[F simdops.Float](channels ...[]F) []F {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	out := make([]F, 0, frames*len(channels))
	for i := range frames {
		for _, ch := range channels {
			out = append(out, ch[i])
		}
	}
	return out
}
