package winograd

// FilterTransform maps a weight tensor W[Ci,3,3,Co] to the transformed
// filter U[6,6,Co,Ci] with U[:,:,co,ci] = G·W[ci,:,:,co]·Gᵀ.
func FilterTransform(W *Tensor) (*Tensor, error) {
	return filterTransform(W, 0)
}

func filterTransform(W *Tensor, workers int) (*Tensor, error) {
	const op = "FilterTransform"
	if err := W.validate(op, "W", 4); err != nil {
		return nil, err
	}
	if W.Shape[1] != KernelSize || W.Shape[2] != KernelSize {
		return nil, NewShapeError(op, "W must be [Ci,3,3,Co], got %v", W.Shape)
	}

	ci, co := W.Shape[0], W.Shape[3]
	U := NewTensor(WindowSize, WindowSize, co, ci)

	// W[c,r,s,k] lives at ((c*3+r)*3+s)*Co+k; U[i,j,k,c] at ((i*6+j)*Co+k)*Ci+c
	err := parallelFor(workers, co, func(k int) {
		var w [KernelSize][KernelSize]float32
		for c := 0; c < ci; c++ {
			for r := 0; r < KernelSize; r++ {
				for s := 0; s < KernelSize; s++ {
					w[r][s] = W.Data[((c*KernelSize+r)*KernelSize+s)*co+k]
				}
			}
			u := transformFilterTile(&w)
			for i := 0; i < WindowSize; i++ {
				for j := 0; j < WindowSize; j++ {
					U.Data[((i*WindowSize+j)*co+k)*ci+c] = u[i][j]
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return U, nil
}

// transformFilterTile computes G·w·Gᵀ: G on the left (6×3), then Gᵀ on
// the right (6×6).
func transformFilterTile(w *[KernelSize][KernelSize]float32) [WindowSize][WindowSize]float32 {
	var tmp [WindowSize][KernelSize]float32
	for i := 0; i < WindowSize; i++ {
		for j := 0; j < KernelSize; j++ {
			var sum float32
			for k := 0; k < KernelSize; k++ {
				sum += g[i][k] * w[k][j]
			}
			tmp[i][j] = sum
		}
	}

	var u [WindowSize][WindowSize]float32
	for i := 0; i < WindowSize; i++ {
		for j := 0; j < WindowSize; j++ {
			var sum float32
			for k := 0; k < KernelSize; k++ {
				sum += tmp[i][k] * g[j][k]
			}
			u[i][j] = sum
		}
	}
	return u
}
