package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RunRepository handles database operations for batch runs
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun stores a finished run
func (r *RunRepository) CreateRun(ctx context.Context, run Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, output_dir, started_at, finished_at, sources, failures, posts, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.OutputDir, toMillis(run.StartedAt), toMillis(run.FinishedAt),
		run.Sources, run.Failures, run.Posts, run.Error)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetLatestRun returns the most recently started run, or nil when the ledger is empty
func (r *RunRepository) GetLatestRun(ctx context.Context) (*Run, error) {
	var run Run
	var startedAt, finishedAt int64

	err := r.db.QueryRowContext(ctx, `
		SELECT id, output_dir, started_at, finished_at, sources, failures, posts, error
		FROM runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1
	`).Scan(&run.ID, &run.OutputDir, &startedAt, &finishedAt,
		&run.Sources, &run.Failures, &run.Posts, &run.Error)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	run.StartedAt = fromMillis(startedAt)
	run.FinishedAt = fromMillis(finishedAt)

	return &run, nil
}

// GetRunCount returns the number of recorded runs
func (r *RunRepository) GetRunCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get run count: %w", err)
	}

	return count, nil
}
