package winograd

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// parallelFor runs body(i) for i in [0,n) on at most workers goroutines and
// returns once every call has finished. Bodies must write disjoint memory.
func parallelFor(workers, n int, body func(i int)) error {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers == 1 || n == 1 {
		for i := 0; i < n; i++ {
			body(i)
		}
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			body(i)
			return nil
		})
	}
	return g.Wait()
}
