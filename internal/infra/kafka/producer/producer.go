package producer

import (
	"context"
	"encoding/json"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/retry"

	"github.com/batchpix/image-pipeline/internal/config"
	"github.com/batchpix/image-pipeline/internal/model"
)

// Producer publishes batch result events to the event topic.
type Producer struct {
	Client   *wbfkafka.Producer
	strategy retry.Strategy
	cfg      *config.Kafka
}

// New creates a new Producer.
// - cfg: Kafka configuration struct
// - s: retry strategy for sends
func New(cfg *config.Kafka, s retry.Strategy) *Producer {
	producer := wbfkafka.NewProducer(cfg.Brokers, cfg.EventTopic)

	return &Producer{
		Client:   producer,
		cfg:      cfg,
		strategy: s,
	}
}

// PublishItemEvent serializes the per-item terminal event to JSON and sends
// it to Kafka. The run ID is used as the message key so all events of one
// run land on the same partition, in order.
func (p *Producer) PublishItemEvent(ctx context.Context, ev model.ItemEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal item event: %v", err)
	}

	key := []byte(ev.RunID.String())

	if err = p.Client.SendWithRetry(ctx, p.strategy, key, data); err != nil {
		return fmt.Errorf("failed to send item event: %v", err)
	}

	return nil
}

// PublishSummary serializes the run summary to JSON and sends it to Kafka,
// keyed by run ID.
func (p *Producer) PublishSummary(ctx context.Context, s model.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %v", err)
	}

	key := []byte(s.RunID.String())

	if err = p.Client.SendWithRetry(ctx, p.strategy, key, data); err != nil {
		return fmt.Errorf("failed to send run summary: %v", err)
	}

	return nil
}
