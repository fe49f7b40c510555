package kernels

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/LynnColeArt/winograd"
	"github.com/LynnColeArt/winograd/device"
	"github.com/LynnColeArt/winograd/internal/logutil"
)

const blockThreads = winograd.BlockSize

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}

func floats(p device.DevicePtr) int {
	return p.Size() / 4
}

// release frees bufs once all work queued on ctx has finished.
func release(ctx *device.Context, bufs []device.DevicePtr) error {
	if len(bufs) == 0 {
		return nil
	}
	err := ctx.Synchronize()
	for _, p := range bufs {
		if ferr := ctx.Free(p); ferr != nil && err == nil {
			err = ferr
		}
	}
	return err
}

// NewFilterTransArgs checks the buffers for a C×K filter transform and
// precomputes the kernel strides.
func NewFilterTransArgs(out, in device.DevicePtr, C, K int) (*FilterTransArgs, error) {
	const op = "NewFilterTransArgs"
	if C < 1 || K < 1 {
		return nil, winograd.NewInvalidArgError(op, "C and K must be positive, got C=%d K=%d", C, K)
	}
	if need := C * 9 * K; floats(in) < need {
		return nil, winograd.NewShapeError(op, "input holds %d floats, W[%d,3,3,%d] needs %d", floats(in), C, K, need)
	}
	if need := ceilDiv(K, blockThreads) * C * winograd.BlockStride; floats(out) < need {
		return nil, winograd.NewShapeError(op, "output holds %d floats, layout needs %d", floats(out), need)
	}
	return &FilterTransArgs{
		Out:   out,
		In:    in,
		RSK:   9 * K,
		SK:    3 * K,
		SK2:   6 * K,
		K:     K,
		C1152: C * winograd.BlockStride,
	}, nil
}

// NewImageTransArgs checks the buffers for a C×Y×X×N image transform and
// precomputes strides and the tile-grid magic divisor. Y and X must be
// multiples of 4.
func NewImageTransArgs(out, in device.DevicePtr, C, Y, X, N int) (*ImageTransArgs, error) {
	const op = "NewImageTransArgs"
	if C < 1 || Y < 1 || X < 1 || N < 1 {
		return nil, winograd.NewInvalidArgError(op, "dimensions must be positive, got C=%d Y=%d X=%d N=%d", C, Y, X, N)
	}
	if Y%winograd.TileSize != 0 || X%winograd.TileSize != 0 {
		return nil, winograd.NewShapeError(op, "image %dx%d is not a multiple of %d", Y, X, winograd.TileSize)
	}
	gys, gxs := Y/winograd.TileSize, X/winograd.TileSize
	grid, err := NewTileGrid(gys, gxs)
	if err != nil {
		return nil, winograd.NewInvalidArgError(op, "%v", err)
	}
	if need := C * Y * X * N; floats(in) < need {
		return nil, winograd.NewShapeError(op, "input holds %d floats, I[%d,%d,%d,%d] needs %d", floats(in), C, Y, X, N, need)
	}
	if need := ceilDiv(N, blockThreads) * gys * gxs * C * winograd.BlockStride; floats(out) < need {
		return nil, winograd.NewShapeError(op, "output holds %d floats, layout needs %d", floats(out), need)
	}
	return &ImageTransArgs{
		Out:  out,
		In:   in,
		Y:    Y,
		X:    X,
		N:    N,
		PadY: 1,
		PadX: 1,
		Grid: grid,

		ShlY:  2,
		ShlX:  2,
		ShlN:  5,
		MaskN: blockThreads - 1,

		YXN:           Y * X * N,
		XN:            X * N,
		BatchStride:   gys * gxs * C * winograd.BlockStride,
		TileRowStride: gxs * C * winograd.BlockStride,
		TileStride:    C * winograd.BlockStride,
	}, nil
}

// FilterTransform enqueues the filter transform of in (W[C,3,3,K]) into
// out on the default stream of ctx.
func (k *Kernels) FilterTransform(ctx *device.Context, out, in device.DevicePtr, C, K int) error {
	args, err := NewFilterTransArgs(out, in, C, K)
	if err != nil {
		return err
	}
	grid := device.Dim3{X: ceilDiv(K, blockThreads), Y: C, Z: 1}
	block := device.Dim3{X: blockThreads, Y: 1, Z: 1}
	return ctx.LaunchKernel(k.FilterTrans, grid, block, args)
}

// ImageTransform enqueues the image transform of in (I[C,Y,X,N]) into out
// on the default stream of ctx.
func (k *Kernels) ImageTransform(ctx *device.Context, out, in device.DevicePtr, C, Y, X, N int) error {
	args, err := NewImageTransArgs(out, in, C, Y, X, N)
	if err != nil {
		return err
	}
	grid := device.Dim3{X: ceilDiv(N, blockThreads), Y: args.Grid.Size(), Z: C}
	block := device.Dim3{X: blockThreads, Y: 1, Z: 1}
	return ctx.LaunchKernel(k.ImageTrans, grid, block, args)
}

// Transform runs both transform kernels on ctx for W[Ci,3,3,Co] and
// I[Ci,Y,X,N] and returns the block-interleaved results, ready for
// winograd.Contract.
func Transform(ctx *device.Context, W, I *winograd.Tensor) (fb *winograd.FilterBlocks, ib *winograd.ImageBlocks, err error) {
	const op = "Transform"
	if W == nil || I == nil {
		return nil, nil, winograd.NewInvalidArgError(op, "W and I must not be nil")
	}
	if W.Rank() != 4 || W.Shape[1] != winograd.KernelSize || W.Shape[2] != winograd.KernelSize {
		return nil, nil, winograd.NewShapeError(op, "W must be [Ci,3,3,Co], got %v", W.Shape)
	}
	if I.Rank() != 4 {
		return nil, nil, winograd.NewShapeError(op, "I must be [Ci,Y,X,N], got %v", I.Shape)
	}
	if W.Shape[0] != I.Shape[0] {
		return nil, nil, winograd.NewShapeError(op, "W has %d input channels, I has %d", W.Shape[0], I.Shape[0])
	}
	if len(W.Data) != W.Size() || len(I.Data) != I.Size() {
		return nil, nil, winograd.NewShapeError(op, "tensor data does not match its shape")
	}
	ci, co := W.Shape[0], W.Shape[3]
	y, x, n := I.Shape[1], I.Shape[2], I.Shape[3]
	if ci < 1 || co < 1 || y < 1 || x < 1 || n < 1 {
		return nil, nil, winograd.NewShapeError(op, "non-positive dimension in W %v or I %v", W.Shape, I.Shape)
	}
	if y%winograd.TileSize != 0 || x%winograd.TileSize != 0 {
		return nil, nil, winograd.NewShapeError(op, "image %dx%d is not a multiple of %d", y, x, winograd.TileSize)
	}

	k, err := Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	tilesY, tilesX := y/winograd.TileSize, x/winograd.TileSize
	uLen := ceilDiv(co, blockThreads) * ci * winograd.BlockStride
	vLen := ceilDiv(n, blockThreads) * tilesY * tilesX * ci * winograd.BlockStride

	var bufs []device.DevicePtr
	defer func() {
		if rerr := release(ctx, bufs); rerr != nil && err == nil {
			err = rerr
		}
	}()
	alloc := func(floats int) (device.DevicePtr, error) {
		p, err := ctx.Malloc(floats * 4)
		if err != nil {
			return device.DevicePtr{}, err
		}
		bufs = append(bufs, p)
		return p, nil
	}

	dW, err := alloc(len(W.Data))
	if err != nil {
		return nil, nil, err
	}
	dI, err := alloc(len(I.Data))
	if err != nil {
		return nil, nil, err
	}
	dU, err := alloc(uLen)
	if err != nil {
		return nil, nil, err
	}
	dV, err := alloc(vLen)
	if err != nil {
		return nil, nil, err
	}

	var g errgroup.Group
	g.Go(func() error {
		return ctx.Memcpy(dW, W.Data, len(W.Data)*4, device.MemcpyHostToDevice)
	})
	g.Go(func() error {
		return ctx.Memcpy(dI, I.Data, len(I.Data)*4, device.MemcpyHostToDevice)
	})
	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("upload: %w", err)
	}

	if err := k.FilterTransform(ctx, dU, dW, ci, co); err != nil {
		return nil, nil, err
	}
	if err := k.ImageTransform(ctx, dV, dI, ci, y, x, n); err != nil {
		return nil, nil, err
	}
	if err := ctx.Synchronize(); err != nil {
		return nil, nil, err
	}

	u := make([]float32, uLen)
	v := make([]float32, vLen)
	if err := ctx.Memcpy(u, dU, uLen*4, device.MemcpyDeviceToHost); err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}
	if err := ctx.Memcpy(v, dV, vLen*4, device.MemcpyDeviceToHost); err != nil {
		return nil, nil, fmt.Errorf("download: %w", err)
	}

	logutil.Logger().Debug("device transform complete",
		"Ci", ci, "Co", co, "N", n,
		"tiles", fmt.Sprintf("%dx%d", tilesY, tilesX))

	if fb, err = winograd.NewFilterBlocks(u, co, ci); err != nil {
		return nil, nil, err
	}
	if ib, err = winograd.NewImageBlocks(v, n, ci, tilesY, tilesX); err != nil {
		return nil, nil, err
	}
	return fb, ib, nil
}
