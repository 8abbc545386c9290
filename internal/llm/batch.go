package llm

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// RunBatches splits items into batches of batchSize and feeds them to run
// through a pool of up to concurrency workers. Results come back flattened
// in batch order. The first failing batch cancels the remaining work.
func RunBatches[I, R any](
	ctx context.Context,
	items []I,
	batchSize int,
	concurrency int,
	run func(ctx context.Context, batch []I) ([]R, error),
) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	if concurrency <= 0 {
		concurrency = 3
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	var batches [][]I
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}

	if len(batches) == 1 {
		return run(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		Index   int
		Results []R
		Error   error
	}

	workChan := make(chan int)
	resultChan := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case batchIdx, ok := <-workChan:
					if !ok {
						return
					}
					if ctx.Err() != nil {
						return
					}

					results, err := run(ctx, batches[batchIdx])
					if err != nil {
						cancel()
					}
					resultChan <- batchResult{
						Index:   batchIdx,
						Results: results,
						Error:   err,
					}
				}
			}
		}()
	}

	go func() {
		defer close(workChan)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case workChan <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	completed := make([]batchResult, 0, len(batches))
	var firstErr error
	for result := range resultChan {
		if result.Error != nil && firstErr == nil {
			firstErr = fmt.Errorf(
				"batch %d failed: %w",
				result.Index,
				result.Error,
			)
			cancel()
		}
		if result.Error == nil {
			completed = append(completed, result)
		}
	}

	if firstErr != nil {
		return nil, firstErr
	}

	sort.Slice(completed, func(i, j int) bool {
		return completed[i].Index < completed[j].Index
	})

	var allResults []R
	for _, r := range completed {
		allResults = append(allResults, r.Results...)
	}

	return allResults, nil
}
