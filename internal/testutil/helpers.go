// Package testutil provides reusable test helpers for the audio graph tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/go-audio-graph/internal/simdops"
)

// Default tolerances for various test scenarios.
const (
	DefaultTolerance = 1e-10
	Float32Tolerance = 1e-6
	PCM16Tolerance   = 1.0 / 32767
)

// AssertNoNaNOrInf verifies that no elements in the slice are NaN or Inf.
func AssertNoNaNOrInf[F simdops.Float](t *testing.T, s []F) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all elements are within [min, max].
func AssertAllInRange[F simdops.Float](t *testing.T, s []F, minVal, maxVal float64) bool {
	t.Helper()
	for i, v := range s {
		if float64(v) < minVal || float64(v) > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, float64(v), minVal, maxVal)
		}
	}
	return true
}

// AssertAllEqual verifies that every element equals want within tolerance.
func AssertAllEqual[F simdops.Float](t *testing.T, s []F, want, tolerance float64) bool {
	t.Helper()
	for i, v := range s {
		if math.Abs(float64(v)-want) > tolerance {
			return assert.Fail(t, "unexpected value", "s[%d]=%v, want %v", i, float64(v), want)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair exceeds eps.
func RequireSliceNearlyEqual[F simdops.Float](t *testing.T, got, want []F, eps float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range got {
		diff := math.Abs(float64(got[i]) - float64(want[i]))
		if diff > eps {
			require.Failf(t, "slices differ",
				"index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}
