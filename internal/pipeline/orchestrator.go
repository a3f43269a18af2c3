// Package pipeline runs the transform chain for every discovered item using
// a bounded pool of workers and aggregates per-item outcomes into a run
// summary.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/batchpix/image-pipeline/internal/model"
)

// Transformer runs the full transform chain for one item.
type Transformer interface {
	Apply(srcPath, dstPath string) error
}

// Orchestrator dispatches items to a fixed-size worker pool and drains
// results as they complete. Submission order determines queueing order, not
// completion order.
type Orchestrator struct {
	workers  int
	observer Observer
}

// New creates an Orchestrator. A workers value below 1 means "derive from
// available cores"; a nil observer disables notifications.
func New(workers int, obs Observer) *Orchestrator {
	if obs == nil {
		obs = NopObserver{}
	}

	return &Orchestrator{workers: workers, observer: obs}
}

// DefaultWorkers returns the pool size derived from available hardware
// parallelism, leaving one core free.
func DefaultWorkers() int {
	if n := runtime.NumCPU() - 1; n > 1 {
		return n
	}

	return 1
}

// Run processes every item through the chain and returns the aggregate
// summary. Every item is consumed exactly once and reaches a terminal state;
// one item failing never aborts its siblings. The caller must have created
// the destination directory before calling Run.
func (o *Orchestrator) Run(ctx context.Context, runID uuid.UUID, items []model.Item, chain Transformer) model.Summary {
	start := time.Now()
	summary := model.Summary{
		RunID:     runID,
		Attempted: len(items),
		StartedAt: start,
	}

	if len(items) == 0 {
		o.observer.RunStarted(ctx, runID, 0, 0)
		summary.TotalElapsed = time.Since(start)
		o.observer.RunCompleted(ctx, summary)
		return summary
	}

	workers := o.workers
	if workers < 1 {
		workers = DefaultWorkers()
	}
	// Never spin up idle workers.
	if workers > len(items) {
		workers = len(items)
	}

	o.observer.RunStarted(ctx, runID, len(items), workers)

	jobs := make(chan model.Item, len(items))
	results := make(chan model.ItemResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- processItem(ctx, item, chain)
			}
		}()
	}

	// Submit every item before draining a single result.
	for _, item := range items {
		jobs <- item
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var succeededTime time.Duration
	for res := range results {
		if res.Status == model.StatusSucceeded {
			summary.Succeeded++
			succeededTime += res.Elapsed
		} else {
			summary.Failed++
		}
		o.observer.ItemFinished(ctx, res)
	}

	// The average is defined over succeeded items only; zero successes
	// reports a zero average.
	if summary.Succeeded > 0 {
		summary.AvgElapsed = succeededTime / time.Duration(summary.Succeeded)
	}
	summary.TotalElapsed = time.Since(start)

	o.observer.RunCompleted(ctx, summary)

	return summary
}

// processItem runs the chain for one item. A panic inside the transform code
// is recovered and converted into a failed result so the pool keeps going.
func processItem(ctx context.Context, item model.Item, chain Transformer) (res model.ItemResult) {
	item.Status = model.StatusDispatched
	res = model.ItemResult{Item: item, Status: model.StatusFailed}

	defer func() {
		if r := recover(); r != nil {
			res.Status = model.StatusFailed
			res.Elapsed = 0
			res.Err = fmt.Errorf("worker panic: %v", r)
		}
	}()

	// Items queued behind a cancellation are failed, not silently dropped,
	// so the summary still accounts for every discovered item.
	if err := ctx.Err(); err != nil {
		res.Err = fmt.Errorf("run cancelled: %w", err)
		return res
	}

	start := time.Now()
	if err := chain.Apply(item.SourcePath, item.DestPath); err != nil {
		res.Err = err
		return res
	}

	res.Status = model.StatusSucceeded
	res.Elapsed = time.Since(start)

	return res
}
