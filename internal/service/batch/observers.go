package batch

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/batchpix/image-pipeline/internal/model"
)

// eventObserver publishes terminal item events and the run summary. Publish
// failures are logged and swallowed; reporting must never fail a run.
type eventObserver struct {
	publisher EventPublisher
	runID     uuid.UUID
}

func (o *eventObserver) RunStarted(context.Context, uuid.UUID, int, int) {}

func (o *eventObserver) ItemFinished(ctx context.Context, res model.ItemResult) {
	ev := model.ItemEvent{
		RunID:     o.runID,
		ItemID:    res.Item.ID,
		Filename:  filepath.Base(res.Item.SourcePath),
		Status:    res.Status,
		ElapsedMs: res.Elapsed.Milliseconds(),
	}
	if res.Err != nil {
		ev.Error = res.Err.Error()
	}

	if err := o.publisher.PublishItemEvent(ctx, ev); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to publish item event")
	}
}

func (o *eventObserver) RunCompleted(ctx context.Context, s model.Summary) {
	if err := o.publisher.PublishSummary(ctx, s); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to publish run summary")
	}
}

// mirrorObserver uploads every successfully processed file to remote
// storage. Upload failures are logged and do not change the item's outcome.
type mirrorObserver struct {
	mirror Mirror
}

func (o *mirrorObserver) RunStarted(context.Context, uuid.UUID, int, int) {}

func (o *mirrorObserver) ItemFinished(ctx context.Context, res model.ItemResult) {
	if res.Status != model.StatusSucceeded {
		return
	}

	if _, err := o.mirror.Upload(ctx, res.Item.DestPath); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("file", filepath.Base(res.Item.DestPath)).
			Msg("failed to mirror processed file")
	}
}

func (o *mirrorObserver) RunCompleted(context.Context, model.Summary) {}
