package run

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/batchpix/image-pipeline/internal/model"
)

var ErrRunNotFound = errors.New("run not found")

// Repository persists batch run summaries in the database.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new Repository with the given DB connection.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// SaveRun inserts the summary of a finished batch run.
func (r *Repository) SaveRun(ctx context.Context, s model.Summary) error {
	query := `
		INSERT INTO runs (id, attempted, succeeded, failed, total_elapsed_ms, avg_elapsed_ms, started_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(
		ctx, query,
		s.RunID, s.Attempted, s.Succeeded, s.Failed,
		s.TotalElapsed.Milliseconds(), s.AvgElapsed.Milliseconds(), s.StartedAt,
	)
	if err != nil {
		return fmt.Errorf("save: failed to save run: %w", err)
	}

	return nil
}

// GetRun retrieves a run summary by ID.
func (r *Repository) GetRun(ctx context.Context, id uuid.UUID) (model.Summary, error) {
	query := `
		SELECT attempted, succeeded, failed, total_elapsed_ms, avg_elapsed_ms, started_at
		FROM runs
		WHERE id = $1
	`

	var s model.Summary
	var totalMs, avgMs int64

	err := r.db.QueryRowContext(
		ctx, query, id,
	).Scan(&s.Attempted, &s.Succeeded, &s.Failed, &totalMs, &avgMs, &s.StartedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Summary{}, ErrRunNotFound
		}

		return model.Summary{}, fmt.Errorf("get: failed to get run: %w", err)
	}

	s.RunID = id
	s.TotalElapsed = time.Duration(totalMs) * time.Millisecond
	s.AvgElapsed = time.Duration(avgMs) * time.Millisecond

	return s, nil
}
