package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/wb-go/wbf/zlog"

	"github.com/batchpix/image-pipeline/internal/model"
)

// service defines the interface for running a requested batch.
type service interface {
	Run(ctx context.Context, req model.BatchRequest) (model.Summary, error)
}

// RequestedHandler handles Kafka messages requesting a batch run. It relies
// on a service that implements the batch orchestration logic.
type RequestedHandler struct {
	service service
}

// NewRequestedHandler creates a new handler with the given service.
func NewRequestedHandler(s service) *RequestedHandler {
	return &RequestedHandler{service: s}
}

// Handle processes one Kafka message containing a batch request. It
// unmarshals the message, calls the service to run the batch, and logs the
// resulting summary.
func (h *RequestedHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var req model.BatchRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("unmarshal batch request: %w", err)
	}

	if req.InputDir == "" || req.OutputDir == "" {
		return fmt.Errorf("batch request: input_dir and output_dir are required")
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	summary, err := h.service.Run(ctx, req)
	if err != nil {
		return fmt.Errorf("run batch: %w", err)
	}

	zlog.Logger.Info().
		Str("run_id", summary.RunID.String()).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("batch request completed")

	return nil
}
