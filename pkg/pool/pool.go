package pool

import (
	"context"
	"sync"
)

// WorkerFunc processes one item and reports a failure for that item only.
type WorkerFunc[T any] func(ctx context.Context, item T) error

// Run processes items with at most numWorkers goroutines and returns the
// errors the workers reported, in no particular order. Cancelling ctx stops
// the feed; an item already handed to a worker still finishes.
func Run[T any](ctx context.Context, items []T, numWorkers int, workerFunc WorkerFunc[T]) []error {
	if len(items) == 0 {
		return nil
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > len(items) {
		numWorkers = len(items)
	}

	taskChan := make(chan T)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range taskChan {
				if ctx.Err() != nil {
					return
				}
				if err := workerFunc(ctx, item); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			}
		}()
	}

OUT:
	for _, item := range items {
		select {
		case taskChan <- item:
		case <-ctx.Done():
			// Stop feeding once the context is cancelled
			break OUT
		}
	}
	close(taskChan)
	wg.Wait()

	return errs
}
