// Package submission drives bulk writes in sequential chunks and collects
// per-item failures into a report that can be retried.
package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/freitasmatheusrn/supplier-sync/pkg/batch"
)

var (
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
	ErrResultMismatch   = errors.New("chunk returned a wrong number of results")
)

// ChunkFunc submits one chunk. itemErrs is either nil, meaning every item
// succeeded, or has one entry per item. A non nil err aborts the submission.
// When err comes with a full itemErrs the items were settled individually
// and are counted before aborting; with nil itemErrs the chunk is treated as
// undelivered.
type ChunkFunc[T any] func(ctx context.Context, chunk []T) (itemErrs []error, err error)

type Failure[T any] struct {
	Chunk int
	Index int
	Item  T
	Err   error
}

type Report[T any] struct {
	Total        int
	SuccessCount int
	FailedCount  int
	Failed       []Failure[T]
	Chunks       int
	ChunksDone   int
	Aborted      bool
}

// FailedItems returns the payloads of the failed items, ready to resubmit.
func (r Report[T]) FailedItems() []T {
	out := make([]T, len(r.Failed))
	for i, f := range r.Failed {
		out[i] = f.Item
	}
	return out
}

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial"
	OutcomeAborted Outcome = "aborted"
)

func (r Report[T]) Outcome() Outcome {
	switch {
	case r.Aborted:
		return OutcomeAborted
	case r.FailedCount > 0:
		return OutcomePartial
	default:
		return OutcomeSuccess
	}
}

// Progress is reported after every chunk.
type Progress struct {
	Chunk     int
	Chunks    int
	Processed int
	Total     int
	Succeeded int
	Failed    int
}

type options struct {
	onProgress func(Progress)
}

type Option func(*options)

func WithProgress(fn func(Progress)) Option {
	return func(o *options) {
		o.onProgress = fn
	}
}

// Submit sends items in chunks of chunkSize, one chunk at a time. When a
// chunk cannot be delivered or ctx is done, Submit stops and returns the
// report gathered so far together with the error.
func Submit[T any](ctx context.Context, items []T, chunkSize int, fn ChunkFunc[T], opts ...Option) (Report[T], error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	report := Report[T]{Total: len(items)}
	if chunkSize <= 0 {
		return report, ErrInvalidChunkSize
	}

	chunks := batch.Chunks(items, chunkSize)
	report.Chunks = len(chunks)

	processed := 0
	for ci, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			return report, err
		}

		itemErrs, err := fn(ctx, chunk)
		if err != nil && itemErrs == nil {
			report.Aborted = true
			return report, fmt.Errorf("chunk %d of %d: %w", ci+1, len(chunks), err)
		}
		if itemErrs != nil && len(itemErrs) != len(chunk) {
			report.Aborted = true
			return report, fmt.Errorf("chunk %d of %d: %w: got %d, want %d",
				ci+1, len(chunks), ErrResultMismatch, len(itemErrs), len(chunk))
		}

		for i, item := range chunk {
			if itemErrs != nil && itemErrs[i] != nil {
				report.FailedCount++
				report.Failed = append(report.Failed, Failure[T]{
					Chunk: ci,
					Index: processed + i,
					Item:  item,
					Err:   itemErrs[i],
				})
				continue
			}
			report.SuccessCount++
		}
		processed += len(chunk)
		report.ChunksDone++

		if o.onProgress != nil {
			o.onProgress(Progress{
				Chunk:     ci + 1,
				Chunks:    len(chunks),
				Processed: processed,
				Total:     len(items),
				Succeeded: report.SuccessCount,
				Failed:    report.FailedCount,
			})
		}

		if err != nil {
			report.Aborted = true
			return report, fmt.Errorf("chunk %d of %d: %w", ci+1, len(chunks), err)
		}
	}
	return report, nil
}

// Settled adapts a per-item function into a ChunkFunc that runs the items of
// a chunk concurrently, at most limit at a time.
func Settled[T any](limit int, fn func(ctx context.Context, item T) error) ChunkFunc[T] {
	return func(ctx context.Context, chunk []T) ([]error, error) {
		return batch.Settle(ctx, chunk, limit, fn), nil
	}
}
