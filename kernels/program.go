// Package kernels holds the device side of the Winograd F(4×4,3×3) forward
// transforms: the filter and image transform kernels, the square-wave tile
// remap they rely on, and launch helpers that produce the block-interleaved
// buffers consumed by winograd.Contract.
package kernels

import (
	"fmt"

	"github.com/LynnColeArt/winograd/device"
)

// Kernel program and entry point names.
const (
	ProgramName     = "winograd_f4x4_3x3"
	FilterTransName = "fprop_filter_trans_4x4"
	ImageTransName  = "xprop_image_trans_4x4"
)

// Source is the transform program. It is built once per device context.
var Source = &device.Source{
	Name: ProgramName,
	Entries: map[string]device.KernelFunc{
		FilterTransName: filterTrans4x4,
		ImageTransName:  imageTrans4x4,
	},
}

// Kernels are the built entry points of Source for one context.
type Kernels struct {
	FilterTrans device.KernelHandle
	ImageTrans  device.KernelHandle
}

// Load builds Source on ctx, or reuses the cached build, and resolves the
// entry points.
func Load(ctx *device.Context) (*Kernels, error) {
	prog, err := ctx.Build(Source)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ProgramName, err)
	}
	filter, err := prog.Kernel(FilterTransName)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ProgramName, err)
	}
	image, err := prog.Kernel(ImageTransName)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", ProgramName, err)
	}
	return &Kernels{FilterTrans: filter, ImageTrans: image}, nil
}
