package model

import (
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the processing state of a single item.
type ItemStatus string

const (
	StatusDiscovered ItemStatus = "discovered"
	StatusDispatched ItemStatus = "dispatched"
	StatusSucceeded  ItemStatus = "succeeded"
	StatusFailed     ItemStatus = "failed"
)

// Item is one source image file and its derived destination counterpart.
// Items are discovered at batch start and consumed by exactly one worker.
type Item struct {
	ID         uuid.UUID  `json:"id"`
	SourcePath string     `json:"source_path"`
	DestPath   string     `json:"dest_path"`
	Status     ItemStatus `json:"status"`
}

// ItemResult is the terminal outcome of one item. Elapsed is only set for
// succeeded items; Err is only set for failed ones.
type ItemResult struct {
	Item    Item
	Status  ItemStatus
	Elapsed time.Duration
	Err     error
}
