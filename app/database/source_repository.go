package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SourceRepository handles database operations for per-source outcomes
type SourceRepository struct {
	db *DB
}

// NewSourceRepository creates a new source repository
func NewSourceRepository(db *DB) *SourceRepository {
	return &SourceRepository{db: db}
}

const sourceRunColumns = `id, run_id, source, kind, outcome, posts, filtered, retries, duration_ms, error, finished_at`

// InsertSourceRun stores the outcome of one source
func (r *SourceRepository) InsertSourceRun(ctx context.Context, sourceRun SourceRun) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO source_runs (run_id, source, kind, outcome, posts, filtered, retries, duration_ms, error, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, sourceRun.RunID, sourceRun.Source, sourceRun.Kind, sourceRun.Outcome,
		sourceRun.Posts, sourceRun.Filtered, sourceRun.Retries,
		sourceRun.Duration.Milliseconds(), sourceRun.Error, toMillis(sourceRun.FinishedAt))
	if err != nil {
		return fmt.Errorf("failed to insert source run: %w", err)
	}

	return nil
}

// GetLatestSourceRuns returns the most recent outcome of every source, ordered by source
func (r *SourceRepository) GetLatestSourceRuns(ctx context.Context) ([]SourceRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sourceRunColumns+`
		FROM source_runs s
		WHERE id = (SELECT MAX(id) FROM source_runs WHERE source = s.source)
		ORDER BY source
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest source runs: %w", err)
	}
	defer rows.Close()

	return scanSourceRuns(rows)
}

// GetSourceHistory returns the latest outcomes of one source, newest first
func (r *SourceRepository) GetSourceHistory(ctx context.Context, source string, limit int) ([]SourceRun, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sourceRunColumns+`
		FROM source_runs
		WHERE source = ?
		ORDER BY id DESC
		LIMIT ?
	`, source, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query source history: %w", err)
	}
	defer rows.Close()

	return scanSourceRuns(rows)
}

func scanSourceRuns(rows *sql.Rows) ([]SourceRun, error) {
	var sourceRuns []SourceRun
	for rows.Next() {
		var sourceRun SourceRun
		var durationMs, finishedAt int64

		err := rows.Scan(&sourceRun.ID, &sourceRun.RunID, &sourceRun.Source, &sourceRun.Kind,
			&sourceRun.Outcome, &sourceRun.Posts, &sourceRun.Filtered, &sourceRun.Retries,
			&durationMs, &sourceRun.Error, &finishedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source run: %w", err)
		}

		sourceRun.Duration = time.Duration(durationMs) * time.Millisecond
		sourceRun.FinishedAt = fromMillis(finishedAt)
		sourceRuns = append(sourceRuns, sourceRun)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate source runs: %w", err)
	}

	return sourceRuns, nil
}
