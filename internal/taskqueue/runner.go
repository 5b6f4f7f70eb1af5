package taskqueue

import (
	"context"
	"sync"
	"sync/atomic"
)

// Task is one unit of asynchronous work within a batch
type Task func(ctx context.Context) error

// ProgressFunc receives batch progress. done counts completions, successful
// or not, so progress always reaches total once the batch settles.
type ProgressFunc func(done, total int)

// Run executes tasks with at most concurrency of them in flight at once.
// Workers pull from a shared cursor, so no fixed partitioning of the batch.
// The returned slice preserves input order: a nil entry is a task that
// completed, a non-nil entry carries that task's error. Run itself never
// fails; individual task failures are captured per slot.
func Run(ctx context.Context, tasks []Task, concurrency int, onProgress ProgressFunc) []error {
	total := len(tasks)
	results := make([]error, total)
	if total == 0 {
		return results
	}

	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > total {
		concurrency = total
	}

	var cursor int64 = -1
	var done int64

	var wg sync.WaitGroup
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				idx := int(atomic.AddInt64(&cursor, 1))
				if idx >= total {
					return
				}
				results[idx] = tasks[idx](ctx)
				completed := int(atomic.AddInt64(&done, 1))
				if onProgress != nil {
					onProgress(completed, total)
				}
			}
		}()
	}
	wg.Wait()

	return results
}
