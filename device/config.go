package device

// Thread and block dimensions
const (
	// MaxThreadsPerBlock bounds the work-group size accepted by LaunchKernel.
	MaxThreadsPerBlock = 1024
)

// Memory pool parameters
const (
	// MemoryAlignment is the allocation granularity in bytes (one cache line).
	MemoryAlignment = 64

	// FreeListThreshold caps how many freed blocks the pool keeps for reuse.
	FreeListThreshold = 100
)
