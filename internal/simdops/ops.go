// Package simdops provides the bulk vector operations the graph units use,
// generic over float32 and float64 samples.
//
// float32 and float64 scaling, summing and interleaving go through
// github.com/tphakala/simd. The float64 block add, multiply-add and peak
// operations go through github.com/cwbudde/algo-vecmath, which has no float32
// variants, so the float32 table carries plain loops for those.
package simdops

import (
	vecmath "github.com/cwbudde/algo-vecmath"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// Ops provides vector operations for sample type F.
// All slice arguments must have equal length unless noted.
type Ops[F Float] struct {
	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)

	// Sum returns the sum of all elements.
	Sum func(a []F) F

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	// dst must hold len(a)+len(b) elements.
	Interleave2 func(dst, a, b []F)

	// AddInPlace accumulates src into dst: dst[i] += src[i]
	AddInPlace func(dst, src []F)

	// MulAdd computes dst[i] = a[i]*b[i] + c[i]
	MulAdd func(dst, a, b, c []F)

	// MaxAbs returns the largest absolute value.
	MaxAbs func(a []F) F
}

var (
	ops32 = Ops[float32]{
		Scale:       f32.Scale,
		Sum:         f32.Sum,
		Interleave2: f32.Interleave2,
		AddInPlace:  addInPlace[float32],
		MulAdd:      mulAdd[float32],
		MaxAbs:      maxAbs[float32],
	}
	ops64 = Ops[float64]{
		Scale:       f64.Scale,
		Sum:         f64.Sum,
		Interleave2: f64.Interleave2,
		AddInPlace:  vecmath.AddBlockInPlace,
		MulAdd:      vecmath.MulAddBlock,
		MaxAbs:      vecmath.MaxAbs,
	}
)

// For returns the Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Fill sets every element of dst to v.
func Fill[F Float](dst []F, v F) {
	if v == 0 {
		clear(dst)
		return
	}
	for i := range dst {
		dst[i] = v
	}
}

func addInPlace[F Float](dst, src []F) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] += src[i]
	}
}

func mulAdd[F Float](dst, a, b, c []F) {
	a, b, c = a[:len(dst)], b[:len(dst)], c[:len(dst)]
	for i := range dst {
		dst[i] = a[i]*b[i] + c[i]
	}
}

func maxAbs[F Float](a []F) F {
	var peak F
	for _, v := range a {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
