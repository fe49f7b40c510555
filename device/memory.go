package device

import (
	"fmt"
	"sync"
	"unsafe"
)

// MemcpyKind specifies the direction of memory transfer. All memory is
// host memory, so the kinds only document intent.
type MemcpyKind int

const (
	MemcpyHostToHost     MemcpyKind = iota // Host to host transfer
	MemcpyHostToDevice                     // Host to device transfer
	MemcpyDeviceToHost                     // Device to host transfer
	MemcpyDeviceToDevice                   // Device to device transfer
	MemcpyDefault                          // Default transfer (infer direction)
)

// DevicePtr refers to a region of device memory. Use the typed views
// (Float32, Int32, Byte) to access the data.
type DevicePtr struct {
	ptr    unsafe.Pointer
	size   int
	offset int
}

// MemoryPool manages device memory allocation with reuse of freed blocks.
type MemoryPool struct {
	mu         sync.Mutex
	allocated  map[uintptr]*allocation
	freeList   []*allocation
	totalAlloc int64
	peakAlloc  int64
}

type allocation struct {
	buf  []byte
	size int
	used bool
}

// NewMemoryPool creates an empty memory pool.
func NewMemoryPool() *MemoryPool {
	return &MemoryPool{
		allocated: make(map[uintptr]*allocation),
	}
}

// Malloc allocates size bytes of device memory. The memory is zeroed.
func (ctx *Context) Malloc(size int) (DevicePtr, error) {
	return ctx.memory.Allocate(size)
}

// Free releases memory allocated by Malloc. Freeing the zero DevicePtr is
// a no-op.
func (ctx *Context) Free(ptr DevicePtr) error {
	if ptr.IsNil() {
		return nil
	}
	return ctx.memory.Free(ptr)
}

// MemoryStats reports the bytes currently allocated and the peak.
func (ctx *Context) MemoryStats() (allocated, peak int64) {
	return ctx.memory.GetStats()
}

// Memcpy copies size bytes between host slices and device memory.
// dst and src may each be a DevicePtr, []float32, []int32 or []byte.
func (ctx *Context) Memcpy(dst, src interface{}, size int, kind MemcpyKind) error {
	if size < 0 {
		return NewInvalidArgError("Memcpy", fmt.Sprintf("negative size %d", size))
	}
	d, err := bytesOf("dst", dst)
	if err != nil {
		return err
	}
	s, err := bytesOf("src", src)
	if err != nil {
		return err
	}
	if size > len(d) || size > len(s) {
		return NewInvalidArgError("Memcpy",
			fmt.Sprintf("size %d exceeds dst (%d) or src (%d)", size, len(d), len(s)))
	}
	copy(d[:size], s[:size])
	return nil
}

func bytesOf(name string, v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case DevicePtr:
		return b.Byte(), nil
	case []byte:
		return b, nil
	case []float32:
		if len(b) == 0 {
			return nil, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&b[0])), len(b)*4), nil
	case []int32:
		if len(b) == 0 {
			return nil, nil
		}
		return unsafe.Slice((*byte)(unsafe.Pointer(&b[0])), len(b)*4), nil
	default:
		return nil, NewInvalidArgError("Memcpy", fmt.Sprintf("unsupported %s type: %T", name, v))
	}
}

// Allocate allocates memory from the pool
func (mp *MemoryPool) Allocate(size int) (DevicePtr, error) {
	if size <= 0 {
		return DevicePtr{}, ErrInvalidSize
	}

	mp.mu.Lock()
	defer mp.mu.Unlock()

	alignedSize := (size + MemoryAlignment - 1) &^ (MemoryAlignment - 1)

	// Try to reuse from free list
	for i, alloc := range mp.freeList {
		if alloc.size >= alignedSize {
			mp.freeList = append(mp.freeList[:i], mp.freeList[i+1:]...)
			alloc.used = true
			clear(alloc.buf)

			mp.totalAlloc += int64(alloc.size)
			if mp.totalAlloc > mp.peakAlloc {
				mp.peakAlloc = mp.totalAlloc
			}

			return DevicePtr{
				ptr:  unsafe.Pointer(&alloc.buf[0]),
				size: size,
			}, nil
		}
	}

	buf := make([]byte, alignedSize)
	alloc := &allocation{
		buf:  buf,
		size: alignedSize,
		used: true,
	}
	ptr := unsafe.Pointer(&buf[0])
	mp.allocated[uintptr(ptr)] = alloc

	mp.totalAlloc += int64(alignedSize)
	if mp.totalAlloc > mp.peakAlloc {
		mp.peakAlloc = mp.totalAlloc
	}

	return DevicePtr{
		ptr:  ptr,
		size: size,
	}, nil
}

// Free returns memory to the pool
func (mp *MemoryPool) Free(ptr DevicePtr) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if ptr.offset != 0 {
		return NewInvalidArgError("Free", "pointer is an offset into an allocation")
	}
	alloc, ok := mp.allocated[uintptr(ptr.ptr)]
	if !ok {
		return NewMemoryError("Free", "pointer not found in allocation pool", nil)
	}
	if !alloc.used {
		return ErrDoubleFree
	}

	alloc.used = false
	mp.totalAlloc -= int64(alloc.size)
	if len(mp.freeList) < FreeListThreshold {
		mp.freeList = append(mp.freeList, alloc)
	} else {
		delete(mp.allocated, uintptr(ptr.ptr))
	}
	return nil
}

// GetStats returns memory pool statistics
func (mp *MemoryPool) GetStats() (allocated, peak int64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.totalAlloc, mp.peakAlloc
}

// Float32 returns a float32 view of the device memory.
func (d DevicePtr) Float32() []float32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*float32)(d.ptr), d.size/4)
}

// Int32 returns an int32 view of the device memory.
func (d DevicePtr) Int32() []int32 {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*int32)(d.ptr), d.size/4)
}

// Byte returns a byte view of the device memory.
func (d DevicePtr) Byte() []byte {
	if d.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(d.ptr), d.size)
}

// Offset returns a DevicePtr advanced by the given number of bytes. The
// result shares memory with d.
func (d DevicePtr) Offset(bytes int) DevicePtr {
	return DevicePtr{
		ptr:    unsafe.Add(d.ptr, bytes),
		size:   d.size - bytes,
		offset: d.offset + bytes,
	}
}

// Size returns the size in bytes of the memory region
func (d DevicePtr) Size() int {
	return d.size
}

// IsNil reports whether d refers to no memory.
func (d DevicePtr) IsNil() bool {
	return d.ptr == nil
}

// getSystemMemory returns total system memory in bytes
func getSystemMemory() uint64 {
	// TODO: read /proc/meminfo or sysctl hw.memsize instead of the fixed default
	return 16 * 1024 * 1024 * 1024
}
