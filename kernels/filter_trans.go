package kernels

import (
	"math"

	"github.com/LynnColeArt/winograd/device"
)

// FilterTransArgs are the arguments of fprop_filter_trans_4x4. In holds
// W[C,3,3,K]; Out receives [⌈K/32⌉][C][6][6][32].
type FilterTransArgs struct {
	Out, In device.DevicePtr

	RSK   int // 9·K, stride of one input channel
	SK    int // 3·K, stride of one filter row
	SK2   int // 6·K, two filter rows
	K     int // output channels
	C1152 int // C·1152, stride of one output-channel block
}

const (
	rcp4  = float32(1.0 / 4.0)
	rcp6  = float32(1.0 / 6.0)
	rcp12 = float32(1.0 / 12.0)
	rcp24 = float32(1.0 / 24.0)
)

// fma computes a·b+c as a fused multiply-add in float64, then rounds the
// result to float32.
func fma(a, b, c float32) float32 {
	return float32(math.FMA(float64(a), float64(b), float64(c)))
}

// filterTrans4x4 transforms one 3×3 filter per work-item.
//
// Grid is (⌈K/32⌉, C, 1) with 32 work-items per group. Group ids are
// consumed in reverse. Lanes with k >= K write zeros. The kernel trusts its
// arguments: Out and In must be large enough for the grid.
func filterTrans4x4(tid device.ThreadID, args ...interface{}) {
	a := args[0].(*FilterTransArgs)

	lane := tid.LocalID(0)
	blkK := tid.NumGroups(0) - tid.GroupID(0) - 1
	c := tid.NumGroups(1) - tid.GroupID(1) - 1
	k := blkK<<5 + lane

	in := a.In.Float32()
	out := a.Out.Float32()
	outOffset := blkK*a.C1152 + c*1152 + lane

	var I [3][3]float32
	if k < a.K {
		base := c*a.RSK + k
		rows := [3]int{base, base + a.SK, base + a.SK2}
		for r, off := range rows {
			I[r][0] = in[off]
			I[r][1] = in[off+a.K]
			I[r][2] = in[off+2*a.K]
		}
	}

	var T [6][3]float32
	for i := 0; i < 3; i++ {
		t0 := rcp6 * I[2][i]
		t1 := fma(I[0][i], -rcp6, -t0)
		t2 := fma(I[0][i], rcp24, t0)
		T[0][i] = rcp4 * I[0][i]
		T[1][i] = fma(I[1][i], -rcp6, t1)
		T[2][i] = fma(I[1][i], rcp6, t1)
		T[3][i] = fma(I[1][i], rcp12, t2)
		T[4][i] = fma(I[1][i], -rcp12, t2)
		T[5][i] = I[2][i]
	}
	for i := 0; i < 6; i++ {
		t0 := rcp6 * T[i][2]
		t1 := fma(T[i][0], -rcp6, -t0)
		t2 := fma(T[i][0], rcp24, t0)
		o := outOffset + 32*i*6
		out[o+32*0] = rcp4 * T[i][0]
		out[o+32*1] = fma(T[i][1], -rcp6, t1)
		out[o+32*2] = fma(T[i][1], rcp6, t1)
		out[o+32*3] = fma(T[i][1], rcp12, t2)
		out[o+32*4] = fma(T[i][1], -rcp12, t2)
		out[o+32*5] = T[i][2]
	}
}
