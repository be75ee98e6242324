package unit

import (
	"golang.org/x/exp/constraints"

	"github.com/tphakala/go-audio-graph/internal/simdops"
	"github.com/tphakala/go-audio-graph/internal/variable"
)

// Constant is a DC unit: a one-sample block per channel at sample rate 0.
type Constant[F simdops.Float] struct {
	Base[F]
}

// NewConstant returns a DC unit with one channel per value.
func NewConstant[F simdops.Float](values ...F) *Constant[F] {
	if len(values) == 0 {
		values = []F{0}
	}
	c := &Constant[F]{}
	c.Init(len(values), 1, 0, func(*Info) {})
	for ch, v := range values {
		c.SetValue(ch, v)
		c.Output(ch)[0] = v
	}
	return c
}

// IsConstant reports whether u is a single-valued DC unit holding v on every
// channel.
func IsConstant[F simdops.Float](u Unit[F], v F) bool {
	c, ok := u.(*Constant[F])
	if !ok {
		return false
	}
	for ch := range c.NumChannels() {
		if c.Value(ch) != v {
			return false
		}
	}
	return true
}

// Number is the set of variable types a control unit can read.
type Number interface {
	constraints.Integer | constraints.Float
}

// VariableSource is a DC control unit that samples a variable once per
// pulled block.
type VariableSource[F simdops.Float, T Number] struct {
	Base[F]
	v *variable.Var[T]
}

// FromVariable returns a control unit following v.
func FromVariable[F simdops.Float, T Number](v *variable.Var[T]) *VariableSource[F, T] {
	s := &VariableSource[F, T]{v: v}
	s.Init(1, 1, 0, s.render)
	s.SetValue(0, F(v.Get()))
	s.Output(0)[0] = F(v.Get())
	return s
}

func (s *VariableSource[F, T]) render(*Info) {
	s.Output(0)[0] = F(s.v.Get())
}
