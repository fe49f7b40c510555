// Package reference holds straightforward float64 formulations of the
// F(4×4,3×3) transforms, used to check the optimized float32 code.
package reference

import (
	"gonum.org/v1/gonum/mat"
)

// G is the filter transform matrix in float64.
var G = mat.NewDense(6, 3, []float64{
	1.0 / 4, 0, 0,
	-1.0 / 6, -1.0 / 6, -1.0 / 6,
	-1.0 / 6, 1.0 / 6, -1.0 / 6,
	1.0 / 24, 1.0 / 12, 1.0 / 6,
	1.0 / 24, -1.0 / 12, 1.0 / 6,
	0, 0, 1,
})

// BT is the image transform matrix Bᵀ in float64.
var BT = mat.NewDense(6, 6, []float64{
	4, 0, -5, 0, 1, 0,
	0, -4, -4, 1, 1, 0,
	0, 4, -4, -1, 1, 0,
	0, -2, -1, 2, 1, 0,
	0, 2, -1, -2, 1, 0,
	0, 4, 0, -5, 0, 1,
})

// FilterTile returns G·w·Gᵀ for a 3×3 tile.
func FilterTile(w *mat.Dense) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(G, w)
	out.Mul(&tmp, G.T())
	return &out
}

// ImageTile returns Bᵀ·d·B for a 6×6 tile.
func ImageTile(d *mat.Dense) *mat.Dense {
	var tmp, out mat.Dense
	tmp.Mul(BT, d)
	out.Mul(&tmp, BT.T())
	return &out
}

// Filter transforms W[ci,3,3,co] into U[6,6,co,ci].
func Filter(w []float32, ci, co int) []float64 {
	u := make([]float64, 36*co*ci)
	tile := mat.NewDense(3, 3, nil)
	for k := 0; k < co; k++ {
		for c := 0; c < ci; c++ {
			for r := 0; r < 3; r++ {
				for s := 0; s < 3; s++ {
					tile.Set(r, s, float64(w[((c*3+r)*3+s)*co+k]))
				}
			}
			out := FilterTile(tile)
			for i := 0; i < 6; i++ {
				for j := 0; j < 6; j++ {
					u[((i*6+j)*co+k)*ci+c] = out.At(i, j)
				}
			}
		}
	}
	return u
}

// Image transforms I[ci,h,w,n] into V[n,6,6,ci,h/4,w/4] with a zero border
// of one pixel.
func Image(in []float32, ci, h, w, n int) []float64 {
	th, tw := h/4, w/4
	v := make([]float64, n*36*ci*th*tw)
	tile := mat.NewDense(6, 6, nil)
	for b := 0; b < n; b++ {
		for c := 0; c < ci; c++ {
			for y := 0; y < th; y++ {
				for x := 0; x < tw; x++ {
					for i := 0; i < 6; i++ {
						for j := 0; j < 6; j++ {
							yy, xx := 4*y-1+i, 4*x-1+j
							val := 0.0
							if yy >= 0 && yy < h && xx >= 0 && xx < w {
								val = float64(in[((c*h+yy)*w+xx)*n+b])
							}
							tile.Set(i, j, val)
						}
					}
					out := ImageTile(tile)
					for i := 0; i < 6; i++ {
						for j := 0; j < 6; j++ {
							v[((((b*6+i)*6+j)*ci+c)*th+y)*tw+x] = out.At(i, j)
						}
					}
				}
			}
		}
	}
	return v
}

// Contract computes M[n,co,th,tw,6,6] from U[6,6,co,ci] and
// V[n,6,6,ci,th,tw].
func Contract(u, v []float64, n, co, ci, th, tw int) []float64 {
	m := make([]float64, n*co*th*tw*36)
	for b := 0; b < n; b++ {
		for pos := 0; pos < 36; pos++ {
			for k := 0; k < co; k++ {
				for y := 0; y < th; y++ {
					for x := 0; x < tw; x++ {
						sum := 0.0
						for c := 0; c < ci; c++ {
							sum += u[(pos*co+k)*ci+c] * v[(((b*36+pos)*ci+c)*th+y)*tw+x]
						}
						m[((((b*co+k)*th+y)*tw+x)*36)+pos] = sum
					}
				}
			}
		}
	}
	return m
}
