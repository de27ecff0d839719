// Package parallel provides CPU-bounded fan-out helpers used by the
// cross-validation tuner and the pipeline.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"github.com/YuminosukeSato/regselect/pkg/errors"
)

// Parallelize divides items into contiguous ranges, one per worker, and
// executes fn(start, end) for each range concurrently. The number of workers
// is bounded by runtime.NumCPU() and by items.
func Parallelize(items int, fn func(start, end int)) {
	ParallelizeN(items, runtime.NumCPU(), fn)
}

// ParallelizeN is Parallelize with an explicit worker cap. workers <= 0 means NumCPU.
func ParallelizeN(items, workers int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	workers = min(workers, items)
	if workers == 1 {
		fn(0, items)
		return
	}

	// ceiling division
	chunkSize := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunkSize {
		end := min(start+chunkSize, items)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold performs parallelization only when the number of items exceeds the threshold.
// If below threshold, normal sequential processing is performed.
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}

// ForEach calls fn(i) for every i in [0, items) on bounded workers. Panics in
// fn are recovered into PanicError. All errors are collected and combined; the
// result does not depend on completion order. If ctx is done before the work
// starts, its error is returned.
func ForEach(ctx context.Context, items int, fn func(i int) error) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}
	errs := make([]error, items)
	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			idx := i
			errs[idx] = errors.SafeExecute("parallel.ForEach", func() error {
				return fn(idx)
			})
		}
	})

	var combined error
	for _, err := range errs {
		combined = errors.Combine(combined, err)
	}
	return combined
}
