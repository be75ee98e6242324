// Package interp implements fractional-position reads from sample buffers.
//
// The set of interpolators is closed: a [Kind] value selects the algorithm
// and [Lookup] dispatches on it. Each kind reports how many trailing samples
// a streaming reader must carry into the next buffer ([Kind.Extension]) and
// how far past the usable length a read position may go ([Kind.Offset]).
package interp

import (
	"fmt"
	"strings"

	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Kind selects an interpolation algorithm.
type Kind int

const (
	// None truncates the position and returns the sample below it.
	None Kind = iota
	// Linear blends the two samples around the position.
	Linear
	// Lagrange3 fits a third-order polynomial through the four samples
	// v[i-1], v[i], v[i+1], v[i+2].
	Lagrange3
)

// Extension and offset per kind.
const (
	noneExtension      = 0
	linearExtension    = 1
	lagrange3Extension = 3

	lagrange3Offset = 1
)

// Lagrange weight denominators.
const (
	lagrangeSixth = 1.0 / 6.0
	lagrangeHalf  = 0.5
)

// Extension returns the number of samples carried over from the previous
// buffer so reads near the start of a new buffer have neighbours.
func (k Kind) Extension() int {
	switch k {
	case Linear:
		return linearExtension
	case Lagrange3:
		return lagrange3Extension
	default:
		return noneExtension
	}
}

// Offset returns the bias added to the usable length to get the maximum
// read position. Lagrange3 reads one sample behind the integer index, so
// its valid positions start at 1.
func (k Kind) Offset() int {
	if k == Lagrange3 {
		return lagrange3Offset
	}
	return 0
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case None:
		return "none"
	case Linear:
		return "linear"
	case Lagrange3:
		return "lagrange3"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps a name to a Kind. "cubic" is accepted for Lagrange3.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "":
		return None, nil
	case "linear":
		return Linear, nil
	case "lagrange3", "lagrange", "cubic":
		return Lagrange3, nil
	default:
		return None, fmt.Errorf("unknown interpolation %q", s)
	}
}

// Lookup reads samples at fractional position pos using kind k.
//
// The caller guarantees every neighbour the kind needs is inside samples:
// v[i] for None, v[i..i+1] for Linear, v[i-1..i+2] for Lagrange3, with
// i = floor(pos).
func Lookup[F simdops.Float](k Kind, samples []F, pos float64) F {
	i := int(pos)
	switch k {
	case Linear:
		frac := F(pos - float64(i))
		v0 := samples[i]
		return v0 + frac*(samples[i+1]-v0)
	case Lagrange3:
		x := pos - float64(i)
		ym1 := float64(samples[i-1])
		y0 := float64(samples[i])
		y1 := float64(samples[i+1])
		y2 := float64(samples[i+2])

		xp1 := x + 1
		xm1 := x - 1
		xm2 := x - 2

		cm1 := -x * xm1 * xm2 * lagrangeSixth
		c0 := xp1 * xm1 * xm2 * lagrangeHalf
		c1 := -xp1 * x * xm2 * lagrangeHalf
		c2 := xp1 * x * xm1 * lagrangeSixth

		return F(cm1*ym1 + c0*y0 + c1*y1 + c2*y2)
	default:
		return samples[i]
	}
}
