package batch

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Chunks splits items into consecutive slices of at most size elements. The
// returned slices share storage with items.
func Chunks[T any](items []T, size int) [][]T {
	if size <= 0 || len(items) == 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end:end])
	}
	return out
}

// Settle runs fn for every item with at most limit calls in flight and waits
// for all of them. errs[i] holds the outcome of items[i]; one failure never
// cancels the others.
func Settle[T any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, item T) error) []error {
	errs := make([]error, len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			errs[i] = fn(ctx, item)
			return nil
		})
	}
	_ = g.Wait()
	return errs
}
