package winograd

import "runtime"

// F(4×4,3×3) geometry
const (
	// KernelSize is the filter height and width.
	KernelSize = 3

	// TileSize is the output tile height and width.
	TileSize = 4

	// WindowSize is the input window and transform-domain tile size
	// (TileSize + KernelSize - 1).
	WindowSize = 6

	// Positions is the number of transform-domain positions per tile.
	Positions = WindowSize * WindowSize
)

// Block-interleaved layout
const (
	// BlockSize is the channel or batch interleave width.
	BlockSize = 32

	// BlockStride is the number of floats one channel occupies in a block:
	// 36 positions of 32 lanes.
	BlockStride = Positions * BlockSize
)

// ContractMethod selects the contraction used by Forward.
type ContractMethod int

const (
	// MethodNaive runs Contract.
	MethodNaive ContractMethod = iota
	// MethodBlocked runs ContractBlocked.
	MethodBlocked
	// MethodGemm runs ContractGemm.
	MethodGemm
)

// String returns the method name.
func (m ContractMethod) String() string {
	switch m {
	case MethodNaive:
		return "naive"
	case MethodBlocked:
		return "blocked"
	case MethodGemm:
		return "gemm"
	default:
		return "unknown"
	}
}

// Options configures Forward.
type Options struct {
	// Workers bounds the number of concurrent host tasks. Zero or less
	// means runtime.GOMAXPROCS(0).
	Workers int

	// Method selects the contraction.
	Method ContractMethod
}

// DefaultOptions returns the blocked contraction on all available cores.
func DefaultOptions() Options {
	return Options{
		Workers: runtime.GOMAXPROCS(0),
		Method:  MethodBlocked,
	}
}

func (o Options) workers() int {
	if o.Workers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return o.Workers
}
