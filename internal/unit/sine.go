package unit

import (
	"math"

	"github.com/tphakala/go-audio-graph/internal/simdops"
)

const twoPi = 2 * math.Pi

// Sine is a mono sine oscillator. The phase accumulates in float64 so long
// renders do not drift.
type Sine[F simdops.Float] struct {
	Base[F]
	frequency float64
	amplitude float64
	phase     float64
}

// NewSine returns an oscillator at frequency Hz and the given amplitude.
func NewSine[F simdops.Float](frequency, amplitude float64, opts ...Option) *Sine[F] {
	cfg := ApplyOptions(opts...)
	s := &Sine[F]{frequency: frequency, amplitude: amplitude}
	s.Init(1, cfg.BlockSize, cfg.SampleRate, s.render)
	return s
}

func (s *Sine[F]) render(*Info) {
	out := s.Output(0)
	inc := twoPi * s.frequency / s.SampleRate(0)
	for i := range out {
		out[i] = F(s.amplitude * math.Sin(s.phase))
		s.phase += inc
		if s.phase >= twoPi {
			s.phase -= twoPi
		}
	}
}
