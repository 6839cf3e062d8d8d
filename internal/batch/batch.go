// Package batch runs a worker over a slice of items in sequential chunks,
// staggering request starts within each chunk so bursts against one host
// do not land at the same instant.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Options controls chunk sizing and pacing.
type Options struct {
	// Concurrency is the chunk size; at most this many workers run at once.
	Concurrency int
	// StaggerDelay spaces worker starts inside one chunk.
	StaggerDelay time.Duration
	// InterBatchDelay is the pause between chunks. It is not applied after
	// the final chunk.
	InterBatchDelay time.Duration
}

// DefaultOptions matches the pacing used for region-level search fan-out.
func DefaultOptions() Options {
	return Options{
		Concurrency:     3,
		StaggerDelay:    500 * time.Millisecond,
		InterBatchDelay: 2 * time.Second,
	}
}

// Run applies worker to every item and returns one result slot per item,
// in input order. A worker error leaves its slot nil; errors never abort
// the remaining items. Chunks execute strictly one after another, so peak
// parallelism is bounded by Options.Concurrency.
func Run[T any, R any](ctx context.Context, items []T, opts Options, worker func(ctx context.Context, item T) (*R, error)) []*R {
	results := make([]*R, len(items))
	if len(items) == 0 {
		return results
	}

	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	for start := 0; start < len(items); start += concurrency {
		if ctx.Err() != nil {
			return results
		}

		end := start + concurrency
		if end > len(items) {
			end = len(items)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			offset := i - start
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				if offset > 0 && opts.StaggerDelay > 0 {
					if !sleep(ctx, time.Duration(offset)*opts.StaggerDelay) {
						return
					}
				}
				res, err := worker(ctx, items[idx])
				if err != nil {
					log.Warn().Err(err).Int("index", idx).Msg("Batch worker failed")
					return
				}
				results[idx] = res
			}(i)
		}
		wg.Wait()

		if end < len(items) && opts.InterBatchDelay > 0 {
			if !sleep(ctx, opts.InterBatchDelay) {
				return results
			}
		}
	}
	return results
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
