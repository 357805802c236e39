// Package batch runs a function over a slice with bounded concurrency while
// keeping results aligned with their inputs.
package batch

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Process applies fn to every item using at most concurrency workers and
// returns results such that results[i] corresponds to items[i], whatever the
// completion order.
//
// Workers claim the next index from a shared atomic cursor and write straight
// into a pre-sized slice, so no result is ever moved after it is produced.
// A concurrency below 1 is treated as 1. Empty input returns an empty slice.
//
// The first error cancels the context handed to fn, stops workers from
// claiming further indices, and is returned with a nil slice. Callers that
// want per-item partial success should handle errors inside fn.
func Process[T, R any](ctx context.Context, items []T, fn func(ctx context.Context, item T) (R, error), concurrency int) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}
	workers := min(max(concurrency, 1), len(items))

	results := make([]R, len(items))
	var cursor atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(cursor.Add(1) - 1)
				if i >= len(items) {
					return nil
				}
				r, err := fn(gctx, items[i])
				if err != nil {
					return err
				}
				results[i] = r
			}
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
