package testutil

import (
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// Sequence is a scripted unit that renders Blocks in order, one per new
// timestamp, so tests can drive consumers with varying block lengths.
// Channel ch carries the block plus ch*ChannelOffset. Once the script runs
// out, Sequence renders zero blocks of the last length. A Finite sequence
// sets Info.ShouldDelete from its last scripted block on.
type Sequence[F simdops.Float] struct {
	Blocks        [][]F
	Channels      int
	Rate          float64
	ChannelOffset F
	Initial       F
	Finite        bool

	// Renders counts upstream pulls; Stamps records each pulled timestamp.
	Renders int
	Stamps  []float64

	outputs  [][]F
	current  int
	rendered bool
	last     float64
	next     float64
}

// NewSequence returns a mono sequence at sampleRate.
func NewSequence[F simdops.Float](sampleRate float64, blocks ...[]F) *Sequence[F] {
	return &Sequence[F]{Blocks: blocks, Channels: 1, Rate: sampleRate}
}

// Process implements unit.Unit.
func (s *Sequence[F]) Process(info *unit.Info, channel int) []F {
	if !s.rendered || info.TimeStamp != s.last {
		s.render(info)
	}
	return s.outputs[channel%s.NumChannels()]
}

func (s *Sequence[F]) render(info *unit.Info) {
	if s.rendered {
		s.current++
	}
	s.rendered = true
	s.last = info.TimeStamp
	s.Renders++
	s.Stamps = append(s.Stamps, info.TimeStamp)

	var block []F
	if s.current < len(s.Blocks) {
		block = s.Blocks[s.current]
	} else if len(s.Blocks) > 0 {
		block = make([]F, len(s.Blocks[len(s.Blocks)-1]))
	}

	s.outputs = make([][]F, s.NumChannels())
	for ch := range s.outputs {
		out := make([]F, len(block))
		for i, v := range block {
			out[i] = v + F(ch)*s.ChannelOffset
		}
		s.outputs[ch] = out
	}

	if s.Finite && s.current >= len(s.Blocks)-1 {
		info.ShouldDelete = true
	}

	s.next = info.TimeStamp
	if s.Rate > 0 {
		s.next += float64(len(block)) / s.Rate
	}
}

// NumChannels implements unit.Unit.
func (s *Sequence[F]) NumChannels() int {
	return max(s.Channels, 1)
}

// BlockSize returns the length of the most recently rendered block, or of
// the first block before any render.
func (s *Sequence[F]) BlockSize(int) int {
	if len(s.Blocks) == 0 {
		return 0
	}
	return len(s.Blocks[min(s.current, len(s.Blocks)-1)])
}

// SampleRate implements unit.Unit.
func (s *Sequence[F]) SampleRate(int) float64 {
	return s.Rate
}

// NextTimeStamp implements unit.Unit.
func (s *Sequence[F]) NextTimeStamp(int) float64 {
	return s.next
}

// Value implements unit.Unit.
func (s *Sequence[F]) Value(channel int) F {
	return s.Initial + F(channel)*s.ChannelOffset
}

// Pull renders blocks consecutive blocks from u starting at timestamp 0
// and returns channel ch concatenated.
func Pull[F simdops.Float](u unit.Unit[F], ch, blocks int) []F {
	var out []F
	info := &unit.Info{}
	for range blocks {
		out = append(out, u.Process(info, ch)...)
		info.TimeStamp = u.NextTimeStamp(0)
	}
	return out
}

// PullAll renders blocks consecutive blocks from u and returns every
// channel concatenated.
func PullAll[F simdops.Float](u unit.Unit[F], blocks int) [][]F {
	out := make([][]F, u.NumChannels())
	info := &unit.Info{}
	for range blocks {
		for ch := range out {
			out[ch] = append(out[ch], u.Process(info, ch)...)
		}
		info.TimeStamp = u.NextTimeStamp(0)
	}
	return out
}
