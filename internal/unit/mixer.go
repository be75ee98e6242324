package unit

import (
	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Mixer sums its inputs channel by channel. An input that sets
// Info.ShouldDelete while being pulled contributes its final block and is
// then dropped.
type Mixer[F simdops.Float] struct {
	Base[F]
	inputs          []Unit[F]
	deleteWhenEmpty bool
}

// NewMixer returns a mixer with numChannels outputs. When deleteWhenEmpty is
// set the mixer itself requests deletion once its last input is gone.
func NewMixer[F simdops.Float](numChannels int, deleteWhenEmpty bool, opts ...Option) *Mixer[F] {
	cfg := ApplyOptions(opts...)
	m := &Mixer[F]{deleteWhenEmpty: deleteWhenEmpty}
	m.Init(numChannels, cfg.BlockSize, cfg.SampleRate, m.render)
	return m
}

// Add appends an input. Graph construction is single threaded; Add must not
// race with Process.
func (m *Mixer[F]) Add(input Unit[F]) {
	m.inputs = append(m.inputs, input)
}

// Len returns the number of live inputs.
func (m *Mixer[F]) Len() int {
	return len(m.inputs)
}

func (m *Mixer[F]) render(info *Info) {
	ops := simdops.For[F]()
	for ch := range m.NumChannels() {
		clear(m.Output(ch))
	}

	live := m.inputs[:0]
	for _, input := range m.inputs {
		sub := Info{TimeStamp: info.TimeStamp}
		for ch := range m.NumChannels() {
			out := m.Output(ch)
			in := input.Process(&sub, ch)
			n := min(len(in), len(out))
			ops.AddInPlace(out[:n], in[:n])
		}
		if !sub.ShouldDelete {
			live = append(live, input)
		}
	}
	clear(m.inputs[len(live):])
	m.inputs = live

	if m.deleteWhenEmpty && len(m.inputs) == 0 {
		info.ShouldDelete = true
	}
}
