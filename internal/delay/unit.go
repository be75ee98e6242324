package delay

import (
	"fmt"

	"github.com/tphakala/go-audio-graph/internal/buffer"
	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/unit"
)

// Unit delays every input channel by the duration control unit, in
// seconds. The duration unit may be DC, run at any block size, or carry
// fewer channels than the input; its channels wrap.
type Unit[F simdops.Float] struct {
	unit.Base[F]
	input    unit.Unit[F]
	duration unit.Unit[F]
	lines    []*Line[F]
	durBuf   *buffer.Buffer[F]
	inBuf    *buffer.Buffer[F]
}

// NewUnit returns a delay unit. The output runs at the input's block size
// and sample rate; a DC input takes both from opts.
func NewUnit[F simdops.Float](input, duration unit.Unit[F], maxDuration float64, opts ...unit.Option) (*Unit[F], error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if duration == nil {
		duration = unit.NewConstant[F](0)
	}

	cfg := unit.ApplyOptions(opts...)
	sampleRate, blockSize := cfg.SampleRate, cfg.BlockSize
	if input.SampleRate(0) > 0 {
		sampleRate, blockSize = input.SampleRate(0), input.BlockSize(0)
	}

	numChannels := max(input.NumChannels(), duration.NumChannels())
	u := &Unit[F]{
		input:    input,
		duration: duration,
		lines:    make([]*Line[F], numChannels),
		durBuf:   buffer.New[F](0),
		inBuf:    buffer.New[F](0),
	}
	u.Init(numChannels, blockSize, sampleRate, u.render)

	for ch := range u.lines {
		line, err := NewLine[F](maxDuration, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		line.SetDuration(float64(duration.Value(ch)))
		u.lines[ch] = line
		u.SetValue(ch, input.Value(ch))
	}
	return u, nil
}

// Line returns the delay line of channel ch.
func (u *Unit[F]) Line(ch int) *Line[F] {
	return u.lines[ch%len(u.lines)]
}

func (u *Unit[F]) render(info *unit.Info) {
	for ch, line := range u.lines {
		in := u.input.Process(info, ch)
		out := u.Output(ch)
		if u.input.SampleRate(ch) <= 0 {
			// A DC input holds its value for the whole block.
			in = unit.Stretch(u.inBuf, in, len(out))
		}
		n := min(len(in), len(out))

		dur := u.duration.Process(info, ch)
		switch len(dur) {
		case 0:
			line.Process(out[:n], in[:n])
		case 1:
			line.SetDuration(float64(dur[0]))
			line.Process(out[:n], in[:n])
		default:
			dur = unit.Stretch(u.durBuf, dur, n)
			for i := range n {
				line.SetDuration(float64(dur[i]))
				out[i] = line.Tick(in[i])
			}
		}
		clear(out[n:])
	}
}
