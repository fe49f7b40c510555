package winograd

// FilterBlocks is a transformed filter in block-interleaved layout
// [GK][Ci][6][6][32], GK = ⌈Co/32⌉: output channel co sits in block co/32,
// lane co%32. This is the layout the device filter kernel writes. Lanes
// past the true output channel count are zero.
type FilterBlocks struct {
	Blocks   int // GK
	Channels int // Ci
	Data     []float32
}

// ImageBlocks is a transformed input in block-interleaved layout
// [GN][tH][tW][Ci][6][6][32], GN = ⌈N/32⌉: batch element n sits in block
// n/32, lane n%32. This is the layout the device image kernel writes. Lanes
// past the true batch size are zero.
type ImageBlocks struct {
	Blocks   int // GN
	TilesY   int // tH
	TilesX   int // tW
	Channels int // Ci
	Data     []float32
}

// NewFilterBlocks wraps a block-interleaved filter buffer holding co output
// channels and ci input channels. data may be longer than needed; only the
// leading GK·Ci·1152 floats are kept.
func NewFilterBlocks(data []float32, co, ci int) (*FilterBlocks, error) {
	const op = "NewFilterBlocks"
	if co < 1 || ci < 1 {
		return nil, NewInvalidArgError(op, "channel counts must be positive, got Co=%d Ci=%d", co, ci)
	}
	gk := blocks(co)
	need := gk * ci * BlockStride
	if len(data) < need {
		return nil, NewShapeError(op, "buffer has %d floats, Co=%d Ci=%d needs %d", len(data), co, ci, need)
	}
	return &FilterBlocks{Blocks: gk, Channels: ci, Data: data[:need]}, nil
}

// NewImageBlocks wraps a block-interleaved image buffer. data may be longer
// than needed; only the leading GN·tH·tW·Ci·1152 floats are kept.
func NewImageBlocks(data []float32, n, ci, tilesY, tilesX int) (*ImageBlocks, error) {
	const op = "NewImageBlocks"
	if n < 1 || ci < 1 || tilesY < 1 || tilesX < 1 {
		return nil, NewInvalidArgError(op, "dimensions must be positive, got N=%d Ci=%d tiles=%dx%d", n, ci, tilesY, tilesX)
	}
	gn := blocks(n)
	need := gn * tilesY * tilesX * ci * BlockStride
	if len(data) < need {
		return nil, NewShapeError(op, "buffer has %d floats, layout needs %d", len(data), need)
	}
	return &ImageBlocks{Blocks: gn, TilesY: tilesY, TilesX: tilesX, Channels: ci, Data: data[:need]}, nil
}

// PackFilter converts U[6,6,Co,Ci] to block-interleaved layout.
func PackFilter(U *Tensor) (*FilterBlocks, error) {
	const op = "PackFilter"
	if err := U.validate(op, "U", 4); err != nil {
		return nil, err
	}
	if U.Shape[0] != WindowSize || U.Shape[1] != WindowSize {
		return nil, NewShapeError(op, "U must be [6,6,Co,Ci], got %v", U.Shape)
	}
	co, ci := U.Shape[2], U.Shape[3]
	fb := &FilterBlocks{
		Blocks:   blocks(co),
		Channels: ci,
		Data:     make([]float32, blocks(co)*ci*BlockStride),
	}
	for pos := 0; pos < Positions; pos++ {
		for k := 0; k < co; k++ {
			for c := 0; c < ci; c++ {
				fb.Data[fb.offset(pos, k, c)] = U.Data[(pos*co+k)*ci+c]
			}
		}
	}
	return fb, nil
}

// Unpack converts back to U[6,6,Co,Ci], discarding the padding lanes.
func (fb *FilterBlocks) Unpack(co int) (*Tensor, error) {
	const op = "FilterBlocks.Unpack"
	if co < 1 {
		return nil, NewInvalidArgError(op, "Co must be positive, got %d", co)
	}
	if co > fb.Blocks*BlockSize {
		return nil, NewCapacityError(op, "Co=%d exceeds capacity %d", co, fb.Blocks*BlockSize)
	}
	ci := fb.Channels
	U := NewTensor(WindowSize, WindowSize, co, ci)
	for pos := 0; pos < Positions; pos++ {
		for k := 0; k < co; k++ {
			for c := 0; c < ci; c++ {
				U.Data[(pos*co+k)*ci+c] = fb.Data[fb.offset(pos, k, c)]
			}
		}
	}
	return U, nil
}

// Capacity returns the padded output channel count.
func (fb *FilterBlocks) Capacity() int {
	return fb.Blocks * BlockSize
}

func (fb *FilterBlocks) offset(pos, k, c int) int {
	return ((k/BlockSize)*fb.Channels+c)*BlockStride + pos*BlockSize + k%BlockSize
}

// PackImage converts V[N,6,6,Ci,tH,tW] to block-interleaved layout.
func PackImage(V *Tensor) (*ImageBlocks, error) {
	const op = "PackImage"
	if err := V.validate(op, "V", 6); err != nil {
		return nil, err
	}
	if V.Shape[1] != WindowSize || V.Shape[2] != WindowSize {
		return nil, NewShapeError(op, "V must be [N,6,6,Ci,tH,tW], got %v", V.Shape)
	}
	n, ci, th, tw := V.Shape[0], V.Shape[3], V.Shape[4], V.Shape[5]
	ib := &ImageBlocks{
		Blocks:   blocks(n),
		TilesY:   th,
		TilesX:   tw,
		Channels: ci,
		Data:     make([]float32, blocks(n)*th*tw*ci*BlockStride),
	}
	ib.each(n, func(src, dst int) {
		ib.Data[dst] = V.Data[src]
	})
	return ib, nil
}

// Unpack converts back to V[N,6,6,Ci,tH,tW], discarding the padding lanes.
func (ib *ImageBlocks) Unpack(n int) (*Tensor, error) {
	const op = "ImageBlocks.Unpack"
	if n < 1 {
		return nil, NewInvalidArgError(op, "N must be positive, got %d", n)
	}
	if n > ib.Blocks*BlockSize {
		return nil, NewCapacityError(op, "N=%d exceeds capacity %d", n, ib.Blocks*BlockSize)
	}
	V := NewTensor(n, WindowSize, WindowSize, ib.Channels, ib.TilesY, ib.TilesX)
	ib.each(n, func(src, dst int) {
		V.Data[src] = ib.Data[dst]
	})
	return V, nil
}

// Capacity returns the padded batch size.
func (ib *ImageBlocks) Capacity() int {
	return ib.Blocks * BlockSize
}

func (ib *ImageBlocks) offset(b, pos, c, th, tw int) int {
	return ((((b/BlockSize)*ib.TilesY+th)*ib.TilesX+tw)*ib.Channels+c)*BlockStride + pos*BlockSize + b%BlockSize
}

// each calls fn with the flat logical offset and the block-interleaved
// offset of every element for the first n batch entries.
func (ib *ImageBlocks) each(n int, fn func(logical, blocked int)) {
	src := 0
	for b := 0; b < n; b++ {
		for pos := 0; pos < Positions; pos++ {
			for c := 0; c < ib.Channels; c++ {
				for th := 0; th < ib.TilesY; th++ {
					for tw := 0; tw < ib.TilesX; tw++ {
						fn(src, ib.offset(b, pos, c, th, tw))
						src++
					}
				}
			}
		}
	}
}
