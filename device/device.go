// Package device provides a CPU-backed compute device with an OpenCL/CUDA
// shaped execution model. Kernels are plain Go functions executed once per
// work-item over a grid of work-groups, against memory allocated from a
// per-context pool.
//
// Example usage:
//
//	ctx := device.NewContext()
//	defer ctx.Destroy()
//
//	d_in, _ := ctx.Malloc(n * 4)
//	ctx.Memcpy(d_in, h_in, n*4, device.MemcpyHostToDevice)
//
//	prog, _ := ctx.Build(src)
//	k, _ := prog.Kernel("my_kernel")
//	ctx.LaunchKernel(k, device.Dim3{X: groups, Y: 1, Z: 1}, device.Dim3{X: 32, Y: 1, Z: 1}, args)
//	ctx.Synchronize()
package device

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/LynnColeArt/winograd/internal/logutil"
)

// Device describes the compute device backing a Context. It is always the
// host CPU.
type Device struct {
	ID         int         // Unique device identifier
	Name       string      // Human-readable device name
	TotalMem   uint64      // Total available memory in bytes
	NumCores   int         // Number of CPU cores
	MaxThreads int         // Maximum concurrent threads
	Features   CPUFeatures // Instruction set extensions
}

// Context owns device memory, streams and built programs. A Context must
// be destroyed when no longer needed.
type Context struct {
	device        *Device
	mu            sync.Mutex
	streams       map[int]*Stream
	streamID      int32
	memory        *MemoryPool
	defaultStream *Stream
	programs      map[string]*programEntry
}

// Stream is an ordered queue of operations. Operations within a stream
// execute in submission order.
type Stream struct {
	id    int
	tasks chan func()
	done  chan struct{}
}

// Dim3 represents 3D dimensions for grid and block configurations.
type Dim3 struct {
	X, Y, Z int
}

// ThreadID identifies a work-item's position within the launch grid.
type ThreadID struct {
	BlockIdx  Dim3 // Work-group index within the grid
	ThreadIdx Dim3 // Work-item index within the work-group
	BlockDim  Dim3 // Dimensions of the work-group
	GridDim   Dim3 // Dimensions of the grid, in work-groups
}

// KernelFunc is a kernel body. It is called concurrently, once per
// work-item, and must only write output locations owned by that work-item.
type KernelFunc func(tid ThreadID, args ...interface{})

// SetLogger replaces the logger used by the device runtime.
func SetLogger(l *slog.Logger) {
	logutil.SetLogger(l)
}

// NewContext creates a context on the host CPU device.
func NewContext() *Context {
	dev := &Device{
		ID:         0,
		Name:       "CPU",
		TotalMem:   getSystemMemory(),
		NumCores:   runtime.NumCPU(),
		MaxThreads: runtime.NumCPU() * 2,
		Features:   detectCPUFeatures(),
	}
	ctx := &Context{
		device:   dev,
		streams:  make(map[int]*Stream),
		memory:   NewMemoryPool(),
		programs: make(map[string]*programEntry),
	}
	ctx.defaultStream = ctx.CreateStream()

	logutil.Logger().Debug("device context created",
		"device", dev.Name,
		"cores", dev.NumCores,
		"features", dev.Features.String())
	return ctx
}

// Device returns the device backing the context.
func (ctx *Context) Device() *Device {
	return ctx.device
}

// Destroy drains and closes every stream owned by the context.
func (ctx *Context) Destroy() {
	ctx.mu.Lock()
	streams := ctx.streams
	ctx.streams = make(map[int]*Stream)
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
		close(s.tasks)
		<-s.done
	}
}

// CreateStream creates a new execution stream.
func (ctx *Context) CreateStream() *Stream {
	id := int(atomic.AddInt32(&ctx.streamID, 1))
	stream := &Stream{
		id:    id,
		tasks: make(chan func(), 1000),
		done:  make(chan struct{}),
	}

	go stream.worker()

	ctx.mu.Lock()
	ctx.streams[id] = stream
	ctx.mu.Unlock()
	return stream
}

// DefaultStream returns the stream used by LaunchKernel.
func (ctx *Context) DefaultStream() *Stream {
	return ctx.defaultStream
}

// LaunchKernel enqueues a kernel on the default stream.
func (ctx *Context) LaunchKernel(k KernelHandle, grid, block Dim3, args ...interface{}) error {
	return ctx.LaunchKernelStream(k, grid, block, ctx.defaultStream, args...)
}

// LaunchKernelStream enqueues a kernel on a specific stream.
func (ctx *Context) LaunchKernelStream(k KernelHandle, grid, block Dim3, stream *Stream, args ...interface{}) error {
	if k.fn == nil {
		return NewInvalidArgError("LaunchKernel", "nil kernel handle")
	}
	if stream == nil {
		return NewInvalidArgError("LaunchKernel", "nil stream")
	}
	logutil.Logger().Debug("kernel launch",
		"kernel", k.name,
		"grid", grid,
		"block", block)
	return ctx.launchInternal(k.fn, grid, block, stream, args...)
}

// Synchronize waits for all streams to complete.
func (ctx *Context) Synchronize() error {
	ctx.mu.Lock()
	streams := make([]*Stream, 0, len(ctx.streams))
	for _, s := range ctx.streams {
		streams = append(streams, s)
	}
	ctx.mu.Unlock()

	for _, s := range streams {
		s.Synchronize()
	}
	return nil
}

// worker processes tasks for a stream
func (s *Stream) worker() {
	for task := range s.tasks {
		task()
	}
	close(s.done)
}

// Synchronize waits for every task submitted before the call to complete.
// It may be called concurrently with Submit and with other Synchronize
// calls.
func (s *Stream) Synchronize() {
	fence := make(chan struct{})
	s.tasks <- func() { close(fence) }
	<-fence
}

// Submit adds a task to the stream.
func (s *Stream) Submit(task func()) {
	s.tasks <- task
}

// NumGroups mirrors get_num_groups for axis 0, 1 or 2.
func (tid ThreadID) NumGroups(axis int) int {
	return tid.GridDim.axis(axis)
}

// GroupID mirrors get_group_id for axis 0, 1 or 2.
func (tid ThreadID) GroupID(axis int) int {
	return tid.BlockIdx.axis(axis)
}

// LocalID mirrors get_local_id for axis 0, 1 or 2.
func (tid ThreadID) LocalID(axis int) int {
	return tid.ThreadIdx.axis(axis)
}

// Size returns the total number of elements.
func (d Dim3) Size() int {
	return d.X * d.Y * d.Z
}

func (d Dim3) axis(axis int) int {
	switch axis {
	case 0:
		return d.X
	case 1:
		return d.Y
	default:
		return d.Z
	}
}
