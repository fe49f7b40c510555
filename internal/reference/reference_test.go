package reference

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestFilterTileAllOnes(t *testing.T) {
	ones := mat.NewDense(3, 3, []float64{1, 1, 1, 1, 1, 1, 1, 1, 1})
	r := []float64{0.25, -0.5, -1.0 / 6, 7.0 / 24, 0.125, 1}

	out := FilterTile(ones)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if math.Abs(out.At(i, j)-r[i]*r[j]) > 1e-12 {
				t.Errorf("U[%d][%d] = %v, want %v", i, j, out.At(i, j), r[i]*r[j])
			}
		}
	}
}

func TestImageTileImpulse(t *testing.T) {
	d := mat.NewDense(6, 6, nil)
	d.Set(2, 2, 1)
	col := []float64{-5, -4, -4, -1, -1, 0}

	out := ImageTile(d)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if out.At(i, j) != col[i]*col[j] {
				t.Errorf("V[%d][%d] = %v, want %v", i, j, out.At(i, j), col[i]*col[j])
			}
		}
	}
}
