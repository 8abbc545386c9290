package llm

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestRunBatchesEmptyInput(t *testing.T) {
	results, err := RunBatches(
		context.Background(),
		nil,
		10,
		3,
		func(ctx context.Context, batch []int) ([]int, error) {
			t.Fatal("run should not be called for empty input")
			return nil, nil
		},
	)
	if err != nil {
		t.Fatalf("RunBatches error: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results, want 0", len(results))
	}
}

func TestRunBatchesPreservesBatchOrder(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	results, err := RunBatches(
		context.Background(),
		items,
		4,
		3,
		func(ctx context.Context, batch []int) ([]int, error) {
			out := make([]int, len(batch))
			for i, v := range batch {
				out[i] = v * 10
			}
			return out, nil
		},
	)
	if err != nil {
		t.Fatalf("RunBatches error: %v", err)
	}
	if len(results) != 25 {
		t.Fatalf("got %d results, want 25", len(results))
	}
	for i, v := range results {
		if v != i*10 {
			t.Fatalf("results[%d] = %d, want %d", i, v, i*10)
		}
	}
}

func TestRunBatchesSingleBatchRunsInline(t *testing.T) {
	var calls int
	results, err := RunBatches(
		context.Background(),
		[]int{1, 2, 3},
		10,
		3,
		func(ctx context.Context, batch []int) ([]int, error) {
			calls++
			return batch, nil
		},
	)
	if err != nil {
		t.Fatalf("RunBatches error: %v", err)
	}
	if calls != 1 {
		t.Errorf("run called %d times, want 1", calls)
	}
	if len(results) != 3 {
		t.Errorf("got %d results, want 3", len(results))
	}
}

func TestRunBatchesPropagatesError(t *testing.T) {
	items := make([]int, 30)
	var mu sync.Mutex
	var calls int

	_, err := RunBatches(
		context.Background(),
		items,
		5,
		2,
		func(ctx context.Context, batch []int) ([]int, error) {
			mu.Lock()
			calls++
			n := calls
			mu.Unlock()
			if n == 2 {
				return nil, fmt.Errorf("boom")
			}
			return batch, nil
		},
	)
	if err == nil {
		t.Fatal("expected error from failing batch")
	}
}
