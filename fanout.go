package main

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/semaphore"
)

const defaultWorkers = 10

// extractOp is one fan-out operation: fetch a single item over the shared
// session and return its extracted values.
type extractOp func(ctx context.Context, client *http.Client, item string) ([]string, error)

// ItemFailure records one input whose operation failed.
type ItemFailure struct {
	Item string
	Err  error
}

// fanOut runs op once per item with at most limit operations in flight, never
// more than len(items). Per-item results are appended to one flattened list
// as operations complete, so the merge order follows completion order and the
// output carries no ordering guarantee. The client is shared by every worker
// of the call.
//
// A failed item never aborts its siblings: successes are merged, failures
// come back as a side list. Losing a whole batch to one dead link is not
// acceptable for a crawler. Canceling ctx stops admission of not-yet-started
// items; those are reported as failures too.
func fanOut(ctx context.Context, client *http.Client, items []string, limit int, op extractOp) ([]string, []ItemFailure) {
	if len(items) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultWorkers
	}
	if len(items) < limit {
		limit = len(items)
	}

	sem := semaphore.NewWeighted(int64(limit))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		merged   []string
		failures []ItemFailure
	)

	for _, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			mu.Lock()
			failures = append(failures, ItemFailure{Item: item, Err: err})
			mu.Unlock()
			continue
		}

		wg.Add(1)
		go func(item string) {
			defer wg.Done()
			defer sem.Release(1)

			results, err := op(ctx, client, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, ItemFailure{Item: item, Err: err})
				return
			}
			merged = append(merged, results...)
		}(item)
	}

	wg.Wait()
	return merged, failures
}
