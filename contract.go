package winograd

// Contract combines U and V into M[N,Co,tH,tW,6,6]: for every
// transform-domain position (mh,mw),
//
//	M[n,co,th,tw,mh,mw] = Σ_ci U[mh,mw,co,ci] · V[n,mh,mw,ci,th,tw]
//
// summed over ci in ascending order. N and Co are the true batch size and
// output channel count; they must not exceed the padded capacity of V and U.
func Contract(N, Co int, U *FilterBlocks, V *ImageBlocks) (*Tensor, error) {
	return contract(N, Co, U, V, 0)
}

// ContractBlocked computes the same M as Contract, iterating over 32×32
// super-blocks of (batch, output channel) for cache locality. The sum over
// ci runs in the same order, so the results are bitwise identical.
func ContractBlocked(N, Co int, U *FilterBlocks, V *ImageBlocks) (*Tensor, error) {
	return contractBlocked(N, Co, U, V, 0)
}

func checkContract(op string, N, Co int, U *FilterBlocks, V *ImageBlocks) error {
	if U == nil || V == nil {
		return NewInvalidArgError(op, "U and V must not be nil")
	}
	if N < 1 || Co < 1 {
		return NewInvalidArgError(op, "N and Co must be positive, got N=%d Co=%d", N, Co)
	}
	if U.Channels != V.Channels {
		return NewChannelMismatchError(op, U.Channels, V.Channels)
	}
	if N > V.Capacity() {
		return NewCapacityError(op, "N=%d exceeds padded batch capacity %d", N, V.Capacity())
	}
	if Co > U.Capacity() {
		return NewCapacityError(op, "Co=%d exceeds padded output channel capacity %d", Co, U.Capacity())
	}
	if len(U.Data) < U.Blocks*U.Channels*BlockStride {
		return NewShapeError(op, "U buffer is shorter than its layout")
	}
	if len(V.Data) < V.Blocks*V.TilesY*V.TilesX*V.Channels*BlockStride {
		return NewShapeError(op, "V buffer is shorter than its layout")
	}
	return nil
}

func contract(N, Co int, U *FilterBlocks, V *ImageBlocks, workers int) (*Tensor, error) {
	const op = "Contract"
	if err := checkContract(op, N, Co, U, V); err != nil {
		return nil, err
	}

	ci, tilesH, tilesW := U.Channels, V.TilesY, V.TilesX
	M := NewTensor(N, Co, tilesH, tilesW, WindowSize, WindowSize)

	// Index order per batch element: mh, mw, co, th, tw, then ci
	err := parallelFor(workers, N, func(n int) {
		for pos := 0; pos < Positions; pos++ {
			for k := 0; k < Co; k++ {
				uBase := (k/BlockSize)*ci*BlockStride + pos*BlockSize + k%BlockSize
				for th := 0; th < tilesH; th++ {
					for tw := 0; tw < tilesW; tw++ {
						vBase := (((n/BlockSize)*tilesH+th)*tilesW+tw)*ci*BlockStride + pos*BlockSize + n%BlockSize
						var sum float32
						for c := 0; c < ci; c++ {
							sum += U.Data[uBase+c*BlockStride] * V.Data[vBase+c*BlockStride]
						}
						M.Data[(((n*Co+k)*tilesH+th)*tilesW+tw)*Positions+pos] = sum
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return M, nil
}

func contractBlocked(N, Co int, U *FilterBlocks, V *ImageBlocks, workers int) (*Tensor, error) {
	const op = "ContractBlocked"
	if err := checkContract(op, N, Co, U, V); err != nil {
		return nil, err
	}

	ci, tilesH, tilesW := U.Channels, V.TilesY, V.TilesX
	gk, gn := U.Blocks, V.Blocks
	tileStride := tilesH * tilesW * Positions

	// Padded [GN·32, GK·32, tH, tW, 6, 6]
	padded := make([]float32, gn*BlockSize*gk*BlockSize*tileStride)
	paddedCo := gk * BlockSize

	// Index order per (coBlock, nBlock): th, tw, mh, mw, nLocal, coLocal, then ci
	err := parallelFor(workers, gk*gn, func(task int) {
		kb, nb := task/gn, task%gn
		uBlock := U.Data[kb*ci*BlockStride : (kb+1)*ci*BlockStride]
		for th := 0; th < tilesH; th++ {
			for tw := 0; tw < tilesW; tw++ {
				vOff := ((nb*tilesH+th)*tilesW + tw) * ci * BlockStride
				vBlock := V.Data[vOff : vOff+ci*BlockStride]
				for pos := 0; pos < Positions; pos++ {
					for nl := 0; nl < BlockSize; nl++ {
						n := nb*BlockSize + nl
						for kl := 0; kl < BlockSize; kl++ {
							k := kb*BlockSize + kl
							var sum float32
							for c := 0; c < ci; c++ {
								sum += uBlock[c*BlockStride+pos*BlockSize+kl] * vBlock[c*BlockStride+pos*BlockSize+nl]
							}
							padded[(((n*paddedCo+k)*tilesH+th)*tilesW+tw)*Positions+pos] = sum
						}
					}
				}
			}
		}
	})
	if err != nil {
		return nil, err
	}

	// Drop the 32-alignment padding rows and columns
	M := NewTensor(N, Co, tilesH, tilesW, WindowSize, WindowSize)
	for n := 0; n < N; n++ {
		src := n * paddedCo * tileStride
		copy(M.Data[n*Co*tileStride:(n+1)*Co*tileStride], padded[src:src+Co*tileStride])
	}
	return M, nil
}
