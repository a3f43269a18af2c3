package pipeline

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/batchpix/image-pipeline/internal/model"
)

// Observer receives run lifecycle notifications. It is attached when the
// orchestrator is constructed and detached when the run completes; there is
// no process-global observer state. ItemFinished is invoked from the single
// draining goroutine, one result at a time, in completion order.
type Observer interface {
	RunStarted(ctx context.Context, runID uuid.UUID, items, workers int)
	ItemFinished(ctx context.Context, res model.ItemResult)
	RunCompleted(ctx context.Context, s model.Summary)
}

// NopObserver ignores all notifications.
type NopObserver struct{}

func (NopObserver) RunStarted(context.Context, uuid.UUID, int, int) {}
func (NopObserver) ItemFinished(context.Context, model.ItemResult)  {}
func (NopObserver) RunCompleted(context.Context, model.Summary)     {}

// LogObserver writes run progress to the structured log.
type LogObserver struct{}

func (LogObserver) RunStarted(_ context.Context, runID uuid.UUID, items, workers int) {
	zlog.Logger.Info().
		Str("run_id", runID.String()).
		Int("items", items).
		Int("workers", workers).
		Msg("starting batch run")
}

func (LogObserver) ItemFinished(_ context.Context, res model.ItemResult) {
	base := filepath.Base(res.Item.SourcePath)

	if res.Status == model.StatusSucceeded {
		zlog.Logger.Info().
			Str("file", base).
			Dur("elapsed", res.Elapsed).
			Msg("item processed")
		return
	}

	zlog.Logger.Error().
		Str("file", base).
		Err(res.Err).
		Msg("item failed")
}

func (LogObserver) RunCompleted(_ context.Context, s model.Summary) {
	zlog.Logger.Info().
		Str("run_id", s.RunID.String()).
		Int("attempted", s.Attempted).
		Int("succeeded", s.Succeeded).
		Int("failed", s.Failed).
		Dur("total_elapsed", s.TotalElapsed).
		Dur("avg_elapsed", s.AvgElapsed).
		Msg("batch run completed")
}

// MultiObserver fans every notification out to each attached observer in
// order.
type MultiObserver []Observer

func (m MultiObserver) RunStarted(ctx context.Context, runID uuid.UUID, items, workers int) {
	for _, o := range m {
		o.RunStarted(ctx, runID, items, workers)
	}
}

func (m MultiObserver) ItemFinished(ctx context.Context, res model.ItemResult) {
	for _, o := range m {
		o.ItemFinished(ctx, res)
	}
}

func (m MultiObserver) RunCompleted(ctx context.Context, s model.Summary) {
	for _, o := range m {
		o.RunCompleted(ctx, s)
	}
}
