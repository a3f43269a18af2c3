package batch

import (
	"context"
	"fmt"
	"os"

	"github.com/wb-go/wbf/zlog"

	"github.com/batchpix/image-pipeline/internal/discovery"
	"github.com/batchpix/image-pipeline/internal/model"
	"github.com/batchpix/image-pipeline/internal/pipeline"
	"github.com/batchpix/image-pipeline/internal/transform"
)

// EventPublisher defines the interface for publishing batch result events
// (e.g., Kafka).
type EventPublisher interface {
	PublishItemEvent(ctx context.Context, ev model.ItemEvent) error
	PublishSummary(ctx context.Context, s model.Summary) error
}

// RunRepository defines the interface for persisting run history.
type RunRepository interface {
	SaveRun(ctx context.Context, s model.Summary) error
}

// Mirror defines the interface for mirroring processed files to remote
// storage (e.g., MinIO).
type Mirror interface {
	Upload(ctx context.Context, path string) (string, error)
}

// Service runs batches: it discovers items, executes the transform chain
// through the worker pool, and records outcomes. The publisher, repository,
// and mirror are optional; a nil value disables that concern.
type Service struct {
	workers   int
	publisher EventPublisher
	repo      RunRepository
	mirror    Mirror
}

// NewService creates a new Service. workers below 1 derives the pool size
// from available cores.
func NewService(workers int, pub EventPublisher, repo RunRepository, m Mirror) *Service {
	return &Service{
		workers:   workers,
		publisher: pub,
		repo:      repo,
		mirror:    m,
	}
}

// Run executes one batch run and returns its summary. Only a discovery
// failure or an invalid profile aborts the run; everything downstream
// degrades to per-item failures counted in the summary. An input directory
// with no matching files is a successful no-op.
func (s *Service) Run(ctx context.Context, req model.BatchRequest) (model.Summary, error) {
	profile, err := transform.ProfileByName(req.Profile)
	if err != nil {
		return model.Summary{}, fmt.Errorf("run: %w", err)
	}
	if req.WatermarkText != "" {
		profile.WatermarkText = req.WatermarkText
		profile.WatermarkFontPath = req.WatermarkFont
	}

	items, err := discovery.Discover(req.InputDir, req.OutputDir)
	if err != nil {
		return model.Summary{}, fmt.Errorf("run: %w", err)
	}

	// Create the destination directory once, before workers start, so no
	// two workers race to create it.
	if err := os.MkdirAll(req.OutputDir, 0o755); err != nil {
		return model.Summary{}, fmt.Errorf("run: failed to create output directory: %w", err)
	}

	observers := pipeline.MultiObserver{pipeline.LogObserver{}}
	if s.publisher != nil {
		observers = append(observers, &eventObserver{publisher: s.publisher, runID: req.ID})
	}
	if s.mirror != nil {
		observers = append(observers, &mirrorObserver{mirror: s.mirror})
	}

	orch := pipeline.New(s.workers, observers)
	summary := orch.Run(ctx, req.ID, items, transform.NewChain(profile))

	if s.repo != nil {
		if err := s.repo.SaveRun(ctx, summary); err != nil {
			zlog.Logger.Error().Err(err).Msg("failed to save run history")
		}
	}

	return summary, nil
}
