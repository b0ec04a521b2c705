// Package pipe provides the bounded-parallel fan-out primitive the
// post-processor and per-adapter inner fan-outs use (spec's "per-adapter
// bounded-parallel inner fan-outs, default width 4").
package pipe

import (
	"context"
	"sync"
)

const defaultConcurrency = 4

// ParallelMap runs fn over items with at most concurrency in flight at
// once, honouring ctx cancellation, and returns results in input order.
func ParallelMap[T, R any](ctx context.Context, items []T, concurrency int, fn func(context.Context, T) (R, error)) ([]R, error) {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}

	results := make([]R, len(items))
	errs := make([]error, len(items))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, item := range items {
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i], errs[i] = fn(ctx, item)
		}(i, item)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}
