package winograd

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/LynnColeArt/winograd/internal/reference"
)

func TestFilterTransformAllOnes(t *testing.T) {
	W := NewTensor(1, 3, 3, 1)
	for i := range W.Data {
		W.Data[i] = 1
	}

	U, err := FilterTransform(W)
	if err != nil {
		t.Fatalf("FilterTransform: %v", err)
	}
	if fmt.Sprint(U.Shape) != "[6 6 1 1]" {
		t.Fatalf("Unexpected shape %v", U.Shape)
	}

	// Row sums of G, applied on both sides
	r := []float64{0.25, -0.5, -1.0 / 6, 7.0 / 24, 0.125, 1.0}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			got := float64(U.At(i, j, 0, 0))
			if math.Abs(got-r[i]*r[j]) > 1e-6 {
				t.Errorf("U[%d,%d] = %v, want %v", i, j, got, r[i]*r[j])
			}
		}
	}
}

func TestFilterTransformMatchesReference(t *testing.T) {
	cases := []struct{ ci, co int }{
		{1, 1},
		{3, 5},
		{8, 33},
		{16, 64},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("Ci%d_Co%d", c.ci, c.co), func(t *testing.T) {
			W := randomTensor(int64(c.ci*100+c.co), c.ci, 3, 3, c.co)
			U, err := FilterTransform(W)
			if err != nil {
				t.Fatalf("FilterTransform: %v", err)
			}
			want := toFloat32(reference.Filter(W.Data, c.ci, c.co))
			assertClose(t, "U", want, U.Data, DefaultTolerance())
		})
	}
}

func TestFilterTransformIsPerChannelPair(t *testing.T) {
	const ci, co = 3, 4
	W := randomTensor(7, ci, 3, 3, co)
	U, err := FilterTransform(W)
	if err != nil {
		t.Fatalf("FilterTransform: %v", err)
	}

	// Changing W[1,:,:,2] only touches U[:,:,2,1]
	W2 := W.Clone()
	for r := 0; r < 3; r++ {
		for s := 0; s < 3; s++ {
			W2.Set(5, 1, r, s, 2)
		}
	}
	U2, err := FilterTransform(W2)
	if err != nil {
		t.Fatalf("FilterTransform: %v", err)
	}
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			for k := 0; k < co; k++ {
				for c := 0; c < ci; c++ {
					changed := U.At(i, j, k, c) != U2.At(i, j, k, c)
					if changed && (k != 2 || c != 1) {
						t.Fatalf("U[%d,%d,%d,%d] changed", i, j, k, c)
					}
				}
			}
		}
	}
}

func TestFilterTransformShapeErrors(t *testing.T) {
	cases := []struct {
		name string
		W    *Tensor
	}{
		{"rank3", NewTensor(1, 3, 3)},
		{"kernel4x4", NewTensor(2, 4, 4, 5)},
		{"kernel3x2", NewTensor(2, 3, 2, 5)},
		{"zero channels", NewTensor(0, 3, 3, 1)},
		{"short data", &Tensor{Shape: []int{1, 3, 3, 2}, Data: make([]float32, 9)}},
	}
	for _, c := range cases {
		if _, err := FilterTransform(c.W); !IsShapeError(err) {
			t.Errorf("%s: expected shape error, got %v", c.name, err)
		}
	}

	if _, err := FilterTransform(nil); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("nil: expected invalid argument, got %v", err)
	}
}
