// Package winograd implements the forward-transform stage of the Winograd
// minimal filtering algorithm F(4×4,3×3) for 3×3, stride 1, pad 1
// convolutions.
//
// The stage has three steps:
//   - FilterTransform maps weights W[Ci,3,3,Co] to U[6,6,Co,Ci] = G·W·Gᵀ.
//   - ImageTransform cuts the input I[Ci,iH,iW,N] into overlapping 6×6
//     windows on a stride-4 grid and maps each to Bᵀ·window·B, giving
//     V[N,6,6,Ci,iH/4,iW/4].
//   - Contract multiplies U and V position by position, summing over input
//     channels, giving M[N,Co,iH/4,iW/4,6,6].
//
// The contraction consumes U and V in block-interleaved layout
// (FilterBlocks, ImageBlocks): the output channel or batch axis grouped in
// lanes of 32. The device kernels in package kernels write exactly this
// layout, so their output feeds Contract without reshaping; host results
// go through PackFilter and PackImage.
//
// The inverse transform Aᵀ·M·A back to the spatial domain is left to the
// consumer of M.
//
// Example usage:
//
//	M, err := winograd.Forward(W, I, winograd.DefaultOptions())
//	if err != nil {
//		return err
//	}
package winograd
