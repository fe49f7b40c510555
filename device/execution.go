package device

import (
	"fmt"
	"runtime"
	"sync"
)

// launchInternal implements the core kernel execution logic
func (ctx *Context) launchInternal(
	kernelFunc KernelFunc,
	grid, block Dim3,
	stream *Stream,
	args ...interface{},
) error {
	if grid.X < 0 || grid.Y < 0 || grid.Z < 0 {
		return NewInvalidArgError("LaunchKernel", fmt.Sprintf("negative grid dimension %v", grid))
	}
	if block.X < 1 || block.Y < 1 || block.Z < 1 {
		return NewInvalidArgError("LaunchKernel", fmt.Sprintf("invalid block dimension %v", block))
	}
	if block.Size() > MaxThreadsPerBlock {
		return NewInvalidArgError("LaunchKernel",
			fmt.Sprintf("block size %d exceeds %d", block.Size(), MaxThreadsPerBlock))
	}

	gridSize := grid.Size()
	blockSize := block.Size()

	// Keep stream ordering even for empty grids
	if gridSize == 0 {
		stream.Submit(func() {})
		return nil
	}

	numWorkers := runtime.NumCPU()
	if gridSize < numWorkers {
		numWorkers = gridSize
	}

	// Each worker takes a contiguous range of work-groups
	blocksPerWorker := (gridSize + numWorkers - 1) / numWorkers

	stream.Submit(func() {
		var wg sync.WaitGroup

		for startBlock := 0; startBlock < gridSize; startBlock += blocksPerWorker {
			endBlock := startBlock + blocksPerWorker
			if endBlock > gridSize {
				endBlock = gridSize
			}

			wg.Add(1)
			go func(startBlock, endBlock int) {
				defer wg.Done()

				for blockID := startBlock; blockID < endBlock; blockID++ {
					blockIdx := linearTo3D(blockID, grid)

					// Work-items of one group run sequentially on this worker
					for threadID := 0; threadID < blockSize; threadID++ {
						tid := ThreadID{
							BlockIdx:  blockIdx,
							ThreadIdx: linearTo3D(threadID, block),
							BlockDim:  block,
							GridDim:   grid,
						}
						kernelFunc(tid, args...)
					}
				}
			}(startBlock, endBlock)
		}

		wg.Wait()
	})

	return nil
}

// linearTo3D converts a linear index to 3D coordinates
func linearTo3D(linear int, dim Dim3) Dim3 {
	z := linear / (dim.X * dim.Y)
	y := (linear % (dim.X * dim.Y)) / dim.X
	x := linear % dim.X
	return Dim3{X: x, Y: y, Z: z}
}
