package winograd

import (
	"math/rand"
	"testing"
)

// randomTensor fills a tensor with values in [-1,1) from a fixed seed
func randomTensor(seed int64, shape ...int) *Tensor {
	rng := rand.New(rand.NewSource(seed))
	t := NewTensor(shape...)
	for i := range t.Data {
		t.Data[i] = rng.Float32()*2 - 1
	}
	return t
}

// assertClose fails the test if actual differs from expected beyond tol
func assertClose(t testing.TB, what string, expected, actual []float32, tol ToleranceConfig) {
	t.Helper()
	r := VerifyFloat32Array(expected, actual, tol)
	if !r.OK() {
		t.Fatalf("%s: %s (expected %v, got %v)", what, r, expected[r.FirstError], actual[r.FirstError])
	}
}

// toFloat32 narrows a float64 reference result
func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// packOrFail transforms and packs W and I on the host
func packOrFail(t testing.TB, W, I *Tensor) (*FilterBlocks, *ImageBlocks) {
	t.Helper()
	U, err := FilterTransform(W)
	if err != nil {
		t.Fatalf("FilterTransform: %v", err)
	}
	V, err := ImageTransform(I)
	if err != nil {
		t.Fatalf("ImageTransform: %v", err)
	}
	fb, err := PackFilter(U)
	if err != nil {
		t.Fatalf("PackFilter: %v", err)
	}
	ib, err := PackImage(V)
	if err != nil {
		t.Fatalf("PackImage: %v", err)
	}
	return fb, ib
}

// imageTolerance allows for the larger intermediates of the integer Bᵀ
// transform; results near zero are differences of values up to ~100.
func imageTolerance() ToleranceConfig {
	return ToleranceConfig{AbsTol: 1e-4, RelTol: 1e-5, ULPTol: 4}
}
