package parallel

import (
	"context"
	"errors"
	"fmt"

	"github.com/dd0wney/virusnet/pkg/logging"
)

// ErrTaskPanicked marks a Map slot whose job panicked.
var ErrTaskPanicked = errors.New("task panicked")

// Map runs fn for every index in [0, n) on a pool of workers and returns the
// results in index order. Jobs not yet started when ctx is cancelled are
// skipped and report ctx.Err(). The returned error joins every job error.
func Map[T any](ctx context.Context, workers, n int, logger logging.Logger, fn func(ctx context.Context, i int) (T, error)) ([]T, []error, error) {
	pool, err := NewWorkerPool(workers, logger)
	if err != nil {
		return nil, nil, err
	}

	results := make([]T, n)
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		errs[i] = fmt.Errorf("job %d: %w", i, ErrTaskPanicked)
		pool.Submit(func() {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = fn(ctx, i)
		})
	}
	pool.Wait()

	return results, errs, errors.Join(errs...)
}
