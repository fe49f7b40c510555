package kernels

import "github.com/LynnColeArt/winograd/device"

// ImageTransArgs are the arguments of xprop_image_trans_4x4. In holds
// I[C,Y,X,N]; Out receives [⌈N/32⌉][GYS][GXS][C][6][6][32].
type ImageTransArgs struct {
	Out, In device.DevicePtr

	Y, X, N    int
	PadY, PadX int

	// Grid decodes the work-group index into tile coordinates.
	Grid TileGrid

	// Super-block shape. With tile size 4 a work-group covers one tile
	// and 32 batch lanes: ShlY = ShlX = 2, ShlN = 5, MaskN = 31.
	ShlY, ShlX  int
	MaskY, ShrY int
	MaskX, ShrX int
	ShlN, MaskN int

	YXN, XN int // input strides of a channel and a row

	BatchStride   int // GYS·GXS·C·1152, one output batch block
	TileRowStride int // GXS·C·1152
	TileStride    int // C·1152
}

// imageTrans4x4 computes Bᵀ·d·B for the 6×6 window of one tile, batch lane
// and channel per work-item.
//
// Grid is (⌈N/32⌉, GYS·GXS, C) with 32 work-items per group, group ids
// consumed in reverse. The tile index goes through the square-wave remap.
// Window elements outside [0,Y)×[0,X) and lanes with n >= N read zero.
// Arguments are not checked.
func imageTrans4x4(tid device.ThreadID, args ...interface{}) {
	a := args[0].(*ImageTransArgs)

	lane := tid.LocalID(0)
	blkN := tid.NumGroups(0) - tid.GroupID(0) - 1
	blkYX := tid.NumGroups(1) - tid.GroupID(1) - 1
	c := tid.NumGroups(2) - tid.GroupID(2) - 1

	gy, gx := a.Grid.Remap(blkYX)

	y0 := gy<<a.ShlY + ((lane&a.MaskY)>>a.ShrY)<<2 - a.PadY
	x0 := gx<<a.ShlX + ((lane&a.MaskX)>>a.ShrX)<<2 - a.PadX
	n := blkN<<a.ShlN + lane&a.MaskN

	outOffset := blkN*a.BatchStride + gy*a.TileRowStride + gx*a.TileStride + c*1152 + lane

	valid := n < a.N
	var xin, yin [6]bool
	for i := 0; i < 6; i++ {
		xin[i] = x0+i >= 0 && x0+i < a.X && valid
		yin[i] = y0+i >= 0 && y0+i < a.Y
	}

	in := a.In.Float32()
	out := a.Out.Float32()

	var I [6][6]float32
	for y := 0; y < 6; y++ {
		if !yin[y] {
			continue
		}
		row := c*a.YXN + (y0+y)*a.XN + n
		for x := 0; x < 6; x++ {
			if xin[x] {
				I[y][x] = in[row+(x0+x)*a.N]
			}
		}
	}

	var T [6][6]float32
	for i := 0; i < 6; i++ {
		t0 := fma(I[2][i], -4, I[4][i])
		t1 := fma(I[1][i], -4, I[3][i])
		t2 := I[4][i] - I[2][i]
		t3 := I[3][i] - I[1][i]
		t4 := fma(I[2][i], -5, I[4][i])
		t5 := fma(I[3][i], -5, I[5][i])
		T[0][i] = fma(I[0][i], 4, t4)
		T[1][i] = t0 + t1
		T[2][i] = t0 - t1
		T[3][i] = fma(t3, 2, t2)
		T[4][i] = fma(t3, -2, t2)
		T[5][i] = fma(I[1][i], 4, t5)
	}
	for i := 0; i < 6; i++ {
		t0 := fma(T[i][2], -4, T[i][4])
		t1 := fma(T[i][1], -4, T[i][3])
		t2 := T[i][4] - T[i][2]
		t3 := T[i][3] - T[i][1]
		t4 := fma(T[i][2], -5, T[i][4])
		t5 := fma(T[i][3], -5, T[i][5])
		o := outOffset + 32*i*6
		out[o+32*0] = fma(T[i][0], 4, t4)
		out[o+32*1] = t0 + t1
		out[o+32*2] = t0 - t1
		out[o+32*3] = fma(t3, 2, t2)
		out[o+32*4] = fma(t3, -2, t2)
		out[o+32*5] = fma(T[i][1], 4, t5)
	}
}
