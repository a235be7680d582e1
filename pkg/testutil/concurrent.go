package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	dErrors "jamsession/pkg/domain-errors"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes   int32
	Errors      int32
	RateLimited int32
	AuthFailed  int32
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors + r.RateLimited + r.AuthFailed
}

// RunConcurrent executes fn in parallel goroutines and buckets the results by
// domain error code. Anything that is not RATE_LIMITED or AUTH_FAILED counts
// as a generic error.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	var wg sync.WaitGroup
	var successes, errs, limited, failed atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			err := fn(idx)
			switch {
			case err == nil:
				successes.Add(1)
			case dErrors.HasCode(err, dErrors.CodeRateLimited):
				limited.Add(1)
			case dErrors.HasCode(err, dErrors.CodeAuthFailed):
				failed.Add(1)
			default:
				errs.Add(1)
			}
		}(i)
	}

	wg.Wait()

	return &ConcurrentResult{
		Successes:   successes.Load(),
		Errors:      errs.Load(),
		RateLimited: limited.Load(),
		AuthFailed:  failed.Load(),
	}
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}

// Barrier releases every waiter at once. Tests use it to line goroutines up
// behind a blocked handler before letting the handler answer.
type Barrier struct {
	once sync.Once
	ch   chan struct{}
}

func NewBarrier() *Barrier {
	return &Barrier{ch: make(chan struct{})}
}

func (b *Barrier) Wait() { <-b.ch }

func (b *Barrier) Release() {
	b.once.Do(func() { close(b.ch) })
}
