package model

import (
	"time"

	"github.com/google/uuid"
)

// BatchRequest describes one batch run: which directory to process, where
// the derived files go, and which transform profile to apply. In consume
// mode requests arrive as Kafka messages; in batch mode the CLI builds one
// from configuration.
type BatchRequest struct {
	ID        uuid.UUID `json:"id"`
	InputDir  string    `json:"input_dir"`
	OutputDir string    `json:"output_dir"`
	Profile   string    `json:"profile"`

	// WatermarkText, when non-empty, enables the trailing watermark step on
	// top of the selected profile.
	WatermarkText string `json:"watermark_text,omitempty"`
	WatermarkFont string `json:"watermark_font,omitempty"`
}

// Summary aggregates the counters of one finished batch run. It is immutable
// once all workers finish.
type Summary struct {
	RunID        uuid.UUID     `json:"run_id"`
	Attempted    int           `json:"attempted"`
	Succeeded    int           `json:"succeeded"`
	Failed       int           `json:"failed"`
	TotalElapsed time.Duration `json:"total_elapsed"`
	AvgElapsed   time.Duration `json:"avg_elapsed"`
	StartedAt    time.Time     `json:"started_at"`
}

// ItemEvent is published for every item that reaches a terminal state.
type ItemEvent struct {
	RunID     uuid.UUID  `json:"run_id"`
	ItemID    uuid.UUID  `json:"item_id"`
	Filename  string     `json:"filename"`
	Status    ItemStatus `json:"status"`
	ElapsedMs int64      `json:"elapsed_ms"`
	Error     string     `json:"error,omitempty"`
}
