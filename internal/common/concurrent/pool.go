// internal/common/concurrent/pool.go
package concurrent

import (
	"context"
	"sync"
	"time"
)

// Options tunes Execute. Zero values fall back to the defaults the batch
// commands use.
type Options struct {
	Workers    int
	MaxRetries int
	Backoff    time.Duration
}

const (
	defaultWorkers    = 8
	defaultMaxRetries = 3
	defaultBackoff    = 250 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetries
	}
	if o.Backoff <= 0 {
		o.Backoff = defaultBackoff
	}
	return o
}

// Execute runs fn for indexes 0..n-1 across a bounded pool of workers,
// retrying each item with exponential backoff. The returned slice has one
// entry per item: nil on success, the last error after retries are
// exhausted, or the context error when cancelled before the item ran.
func Execute(ctx context.Context, n int, opts Options, fn func(ctx context.Context, i int) error) []error {
	opts = opts.withDefaults()
	errs := make([]error, n)
	if n == 0 {
		return errs
	}

	workers := opts.Workers
	if workers > n {
		workers = n
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range indexes {
				errs[i] = runWithRetry(ctx, opts, i, fn)
			}
		}()
	}

feed:
	for i := 0; i < n; i++ {
		select {
		case indexes <- i:
		case <-ctx.Done():
			for j := i; j < n; j++ {
				errs[j] = ctx.Err()
			}
			break feed
		}
	}
	close(indexes)
	wg.Wait()
	return errs
}

func runWithRetry(ctx context.Context, opts Options, i int, fn func(ctx context.Context, i int) error) error {
	backoff := opts.Backoff
	var lastErr error
	for attempt := 0; attempt < opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn(ctx, i)
		if lastErr == nil {
			return nil
		}
		if attempt == opts.MaxRetries-1 {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff = time.Duration(float64(backoff) * 1.5)
	}
	return lastErr
}
