package winograd

import (
	"fmt"
	"math"
)

// ToleranceConfig defines tolerance parameters for floating-point comparison
type ToleranceConfig struct {
	// AbsTol is the absolute tolerance for values near zero
	AbsTol float32

	// RelTol is the relative tolerance as a fraction of the larger value
	RelTol float32

	// ULPTol is the maximum allowed difference in ULPs (Units in Last Place)
	ULPTol int
}

// DefaultTolerance accepts differences of 1e-5 absolute or relative.
func DefaultTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol: 1e-5,
		RelTol: 1e-5,
		ULPTol: 4,
	}
}

// RelaxedTolerance is for results whose summation order differs, such as
// ContractGemm against Contract.
func RelaxedTolerance() ToleranceConfig {
	return ToleranceConfig{
		AbsTol: 1e-4,
		RelTol: 1e-4,
		ULPTol: 16,
	}
}

// Float32NearEqual checks if two float32 values are equal within tolerance
func Float32NearEqual(a, b float32, tol ToleranceConfig) bool {
	// Handles ±0
	if a == b {
		return true
	}
	if math.IsNaN(float64(a)) || math.IsNaN(float64(b)) {
		return false
	}
	if math.IsInf(float64(a), 0) || math.IsInf(float64(b), 0) {
		return false
	}

	diff := math.Abs(float64(a) - float64(b))
	if diff <= float64(tol.AbsTol) {
		return true
	}

	larger := math.Max(math.Abs(float64(a)), math.Abs(float64(b)))
	if diff <= larger*float64(tol.RelTol) {
		return true
	}

	return tol.ULPTol > 0 && Float32ULPDiff(a, b) <= tol.ULPTol
}

// Float32ULPDiff computes the difference in ULPs between two float32 values
func Float32ULPDiff(a, b float32) int {
	aBits := math.Float32bits(a)
	bBits := math.Float32bits(b)

	// Different signs can't use simple subtraction
	if (aBits^bBits)&0x80000000 != 0 {
		return math.MaxInt32
	}

	if aBits > bBits {
		return int(aBits - bBits)
	}
	return int(bBits - aBits)
}

// VerificationResult summarizes an element-wise comparison
type VerificationResult struct {
	MaxAbsError float32
	NumErrors   int
	TotalItems  int
	FirstError  int // Index of first error, -1 if none
}

// VerifyFloat32Array compares two float32 arrays element by element
func VerifyFloat32Array(expected, actual []float32, tol ToleranceConfig) VerificationResult {
	result := VerificationResult{
		TotalItems: len(expected),
		FirstError: -1,
	}

	if len(expected) != len(actual) {
		result.NumErrors = len(expected)
		result.FirstError = 0
		return result
	}

	for i := range expected {
		absDiff := float32(math.Abs(float64(expected[i]) - float64(actual[i])))
		if absDiff > result.MaxAbsError {
			result.MaxAbsError = absDiff
		}
		if !Float32NearEqual(expected[i], actual[i], tol) {
			result.NumErrors++
			if result.FirstError == -1 {
				result.FirstError = i
			}
		}
	}

	return result
}

// OK reports whether every element matched.
func (r VerificationResult) OK() bool {
	return r.NumErrors == 0
}

// String formats the verification result for display
func (r VerificationResult) String() string {
	if r.NumErrors == 0 {
		return fmt.Sprintf("PASS: %d values match (max abs error %e)", r.TotalItems, r.MaxAbsError)
	}
	return fmt.Sprintf("FAIL: %d/%d values differ, max abs error %e, first at index %d",
		r.NumErrors, r.TotalItems, r.MaxAbsError, r.FirstError)
}
