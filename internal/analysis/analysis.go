// Package analysis measures rendered audio: level and the frequency of the
// strongest partial. Tests use it to check graph output, and the analyze
// command prints it for files.
package analysis

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Stats summarises one channel.
type Stats struct {
	Peak float64
	RMS  float64

	// Dominant is the frequency in Hz of the strongest non-DC partial, or 0
	// when the signal is too short or silent.
	Dominant float64
}

// Analyze computes Stats for samples at sampleRate.
func Analyze[F simdops.Float](samples []F, sampleRate float64) Stats {
	return Stats{
		Peak:     Peak(samples),
		RMS:      RMS(samples),
		Dominant: DominantFrequency(samples, sampleRate),
	}
}

// Peak returns the largest absolute sample value.
func Peak[F simdops.Float](samples []F) float64 {
	if len(samples) == 0 {
		return 0
	}
	return float64(simdops.For[F]().MaxAbs(samples))
}

// RMS returns the root mean square level.
func RMS[F simdops.Float](samples []F) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}

// DominantFrequency returns the frequency of the largest spectral peak,
// refined between bins by parabolic interpolation of log magnitudes.
func DominantFrequency[F simdops.Float](samples []F, sampleRate float64) float64 {
	n := len(samples)
	if n < 4 || sampleRate <= 0 {
		return 0
	}

	window := KaiserWindow(n, DefaultKaiserBeta)
	seq := make([]float64, n)
	for i, s := range samples {
		seq[i] = float64(s) * window[i]
	}

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	peak := 0
	peakMag := 0.0
	for k := 1; k < len(coeffs); k++ {
		if m := cmplx.Abs(coeffs[k]); m > peakMag {
			peak, peakMag = k, m
		}
	}
	if peak == 0 {
		return 0
	}

	offset := 0.0
	if peak+1 < len(coeffs) {
		a := math.Log(cmplx.Abs(coeffs[peak-1]) + math.SmallestNonzeroFloat64)
		b := math.Log(peakMag)
		c := math.Log(cmplx.Abs(coeffs[peak+1]) + math.SmallestNonzeroFloat64)
		if den := a - 2*b + c; den != 0 {
			offset = 0.5 * (a - c) / den
		}
	}
	return (float64(peak) + offset) / float64(n) * sampleRate
}
