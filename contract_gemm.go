package winograd

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// ContractGemm computes the same M as Contract with one SGEMM per
// (n, mh, mw) slice: U[mh,mw] as a [Co×Ci] matrix times V[n,mh,mw] as a
// [Ci×tH·tW] matrix. The SGEMM kernel chooses its own summation order, so
// results agree with Contract only within float32 tolerance.
func ContractGemm(N, Co int, U *FilterBlocks, V *ImageBlocks) (*Tensor, error) {
	return contractGemm(N, Co, U, V, 0)
}

func contractGemm(N, Co int, U *FilterBlocks, V *ImageBlocks, workers int) (*Tensor, error) {
	const op = "ContractGemm"
	if err := checkContract(op, N, Co, U, V); err != nil {
		return nil, err
	}

	ci, tilesH, tilesW := U.Channels, V.TilesY, V.TilesX
	tiles := tilesH * tilesW
	M := NewTensor(N, Co, tilesH, tilesW, WindowSize, WindowSize)

	err := parallelFor(workers, N*Positions, func(task int) {
		n, pos := task/Positions, task%Positions

		a := blas32.General{Rows: Co, Cols: ci, Stride: ci, Data: make([]float32, Co*ci)}
		for k := 0; k < Co; k++ {
			uBase := (k/BlockSize)*ci*BlockStride + pos*BlockSize + k%BlockSize
			for c := 0; c < ci; c++ {
				a.Data[k*ci+c] = U.Data[uBase+c*BlockStride]
			}
		}

		b := blas32.General{Rows: ci, Cols: tiles, Stride: tiles, Data: make([]float32, ci*tiles)}
		for t := 0; t < tiles; t++ {
			vBase := ((n/BlockSize)*tiles+t)*ci*BlockStride + pos*BlockSize + n%BlockSize
			for c := 0; c < ci; c++ {
				b.Data[c*tiles+t] = V.Data[vBase+c*BlockStride]
			}
		}

		out := blas32.General{Rows: Co, Cols: tiles, Stride: tiles, Data: make([]float32, Co*tiles)}
		blas32.Gemm(blas.NoTrans, blas.NoTrans, 1, a, b, 0, out)

		for k := 0; k < Co; k++ {
			for t := 0; t < tiles; t++ {
				M.Data[((n*Co+k)*tiles+t)*Positions+pos] = out.Data[k*tiles+t]
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return M, nil
}
