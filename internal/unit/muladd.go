package unit

import (
	"github.com/tphakala/go-audio-graph/internal/buffer"
	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// MulAdd scales and offsets its input: out = in*mul + add. The mul and add
// units may run at any block size; shorter blocks are stretched with
// nearest-below indexing and single-value blocks are broadcast.
type MulAdd[F simdops.Float] struct {
	Base[F]
	input  Unit[F]
	mul    Unit[F]
	add    Unit[F]
	mulBuf *buffer.Buffer[F]
	addBuf *buffer.Buffer[F]
}

// NewMulAdd wraps input. A nil mul means 1 and a nil add means 0.
func NewMulAdd[F simdops.Float](input, mul, add Unit[F]) *MulAdd[F] {
	if mul == nil {
		mul = NewConstant[F](1)
	}
	if add == nil {
		add = NewConstant[F](0)
	}
	m := &MulAdd[F]{
		input:  input,
		mul:    mul,
		add:    add,
		mulBuf: buffer.New[F](0),
		addBuf: buffer.New[F](0),
	}
	m.Init(input.NumChannels(), input.BlockSize(0), input.SampleRate(0), m.render)
	for ch := range input.NumChannels() {
		m.SetValue(ch, input.Value(ch)*mul.Value(ch)+add.Value(ch))
	}
	return m
}

func (m *MulAdd[F]) render(info *Info) {
	ops := simdops.For[F]()
	for ch := range m.NumChannels() {
		in := m.input.Process(info, ch)
		out := m.Output(ch)
		n := min(len(in), len(out))

		mul := Stretch(m.mulBuf, m.mul.Process(info, ch), n)
		add := Stretch(m.addBuf, m.add.Process(info, ch), n)
		ops.MulAdd(out[:n], in[:n], mul, add)
		clear(out[n:])
	}
}

// Stretch returns src resampled to n values, reusing dst for storage.
func Stretch[F simdops.Float](dst *buffer.Buffer[F], src []F, n int) []F {
	if len(src) == n {
		return src
	}
	dst.Resize(n)
	d := dst.Data()
	if len(src) == 1 {
		simdops.Fill(d, src[0])
		return d
	}
	step := float64(len(src)) / float64(n)
	pos := 0.0
	for i := range d {
		d[i] = src[int(pos)]
		pos += step
	}
	return d
}
