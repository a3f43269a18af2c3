package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/batchpix/image-pipeline/internal/model"
)

// fakeChain fails for any source path containing "bad" and panics for any
// containing "boom".
type fakeChain struct {
	delay time.Duration
}

func (c fakeChain) Apply(srcPath, _ string) error {
	if c.delay > 0 {
		time.Sleep(c.delay)
	}
	if strings.Contains(srcPath, "boom") {
		panic("corrupt internal state")
	}
	if strings.Contains(srcPath, "bad") {
		return errors.New("decode failed")
	}
	return nil
}

// recorder collects observer notifications. All callbacks run on the
// draining goroutine, so no locking is needed.
type recorder struct {
	started   int
	completed int
	results   []model.ItemResult
}

func (r *recorder) RunStarted(context.Context, uuid.UUID, int, int) { r.started++ }
func (r *recorder) ItemFinished(_ context.Context, res model.ItemResult) {
	r.results = append(r.results, res)
}
func (r *recorder) RunCompleted(context.Context, model.Summary) { r.completed++ }

func makeItems(names ...string) []model.Item {
	items := make([]model.Item, 0, len(names))
	for _, n := range names {
		items = append(items, model.Item{
			ID:         uuid.New(),
			SourcePath: "/in/" + n,
			DestPath:   "/out/processed_" + n,
			Status:     model.StatusDiscovered,
		})
	}
	return items
}

func TestRunCounts(t *testing.T) {
	tests := []struct {
		name          string
		items         []string
		workers       int
		wantSucceeded int
		wantFailed    int
	}{
		{"all succeed", []string{"a.jpg", "b.jpg", "c.jpg"}, 2, 3, 0},
		{"one corrupt among valid", []string{"a.jpg", "bad.jpg", "c.jpg", "d.jpg"}, 3, 3, 1},
		{"all fail", []string{"bad1.jpg", "bad2.jpg"}, 2, 0, 2},
		{"panic isolated to one item", []string{"a.jpg", "boom.jpg", "c.jpg"}, 3, 2, 1},
		{"single worker", []string{"a.jpg", "bad.jpg", "c.jpg"}, 1, 2, 1},
		{"more workers than items", []string{"a.jpg"}, 16, 1, 0},
		{"no items", nil, 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			orch := New(tt.workers, rec)
			items := makeItems(tt.items...)

			summary := orch.Run(context.Background(), uuid.New(), items, fakeChain{})

			if summary.Attempted != len(tt.items) {
				t.Errorf("attempted %d, want %d", summary.Attempted, len(tt.items))
			}
			if summary.Succeeded != tt.wantSucceeded {
				t.Errorf("succeeded %d, want %d", summary.Succeeded, tt.wantSucceeded)
			}
			if summary.Failed != tt.wantFailed {
				t.Errorf("failed %d, want %d", summary.Failed, tt.wantFailed)
			}
			if rec.started != 1 || rec.completed != 1 {
				t.Errorf("observer started=%d completed=%d, want 1/1", rec.started, rec.completed)
			}
			if len(rec.results) != len(tt.items) {
				t.Errorf("observer saw %d results, want %d", len(rec.results), len(tt.items))
			}
		})
	}
}

func TestRunZeroSuccessAverage(t *testing.T) {
	orch := New(2, nil)
	summary := orch.Run(context.Background(), uuid.New(), makeItems("bad.jpg", "bad2.jpg"), fakeChain{})

	if summary.AvgElapsed != 0 {
		t.Errorf("avg elapsed %v, want 0 for zero successes", summary.AvgElapsed)
	}
}

func TestRunEveryItemReachesTerminalState(t *testing.T) {
	rec := &recorder{}
	orch := New(3, rec)
	items := makeItems("a.jpg", "bad.jpg", "boom.jpg", "d.jpg", "e.jpg")

	orch.Run(context.Background(), uuid.New(), items, fakeChain{delay: time.Millisecond})

	seen := make(map[uuid.UUID]model.ItemStatus, len(items))
	for _, res := range rec.results {
		if _, dup := seen[res.Item.ID]; dup {
			t.Errorf("item %s reported twice", res.Item.ID)
		}
		seen[res.Item.ID] = res.Status
	}
	for _, item := range items {
		status, ok := seen[item.ID]
		if !ok {
			t.Errorf("item %s never reached a terminal state", item.ID)
			continue
		}
		if status != model.StatusSucceeded && status != model.StatusFailed {
			t.Errorf("item %s ended in non-terminal status %s", item.ID, status)
		}
	}
}

func TestRunParallelismDoesNotChangeClassification(t *testing.T) {
	items := makeItems("a.jpg", "bad.jpg", "c.jpg", "d.jpg", "boom.jpg", "f.jpg")

	classify := func(workers int) map[string]model.ItemStatus {
		rec := &recorder{}
		New(workers, rec).Run(context.Background(), uuid.New(), items, fakeChain{})
		out := make(map[string]model.ItemStatus, len(rec.results))
		for _, res := range rec.results {
			out[res.Item.SourcePath] = res.Status
		}
		return out
	}

	serial := classify(1)
	parallel := classify(DefaultWorkers())

	if len(serial) != len(parallel) {
		t.Fatalf("result counts differ: %d vs %d", len(serial), len(parallel))
	}
	for path, status := range serial {
		if parallel[path] != status {
			t.Errorf("item %s: serial=%s parallel=%s", path, status, parallel[path])
		}
	}
}

func TestRunCancelledContextFailsRemainingItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	summary := New(2, rec).Run(ctx, uuid.New(), makeItems("a.jpg", "b.jpg"), fakeChain{})

	if summary.Failed != 2 {
		t.Errorf("failed %d, want 2 after cancellation", summary.Failed)
	}
	for _, res := range rec.results {
		if res.Err == nil {
			t.Errorf("item %s: expected cancellation error", res.Item.SourcePath)
		}
	}
}

func TestDefaultWorkers(t *testing.T) {
	if w := DefaultWorkers(); w < 1 {
		t.Errorf("DefaultWorkers returned %d, want at least 1", w)
	}
}
