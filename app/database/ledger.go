package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/disc/app/tasks"
)

var _ tasks.Recorder = (*Ledger)(nil)

// Ledger records finished batch reports. The output directory stays the
// authoritative store; the ledger only mirrors what was written.
type Ledger struct {
	runs    RunStore
	sources SourceStore
	posts   PostStore
}

func NewLedger(runs RunStore, sources SourceStore, posts PostStore) *Ledger {
	return &Ledger{runs: runs, sources: sources, posts: posts}
}

// RecordRun stores the run, every source outcome and every written post.
// All rows are attempted; the returned error joins the failures.
func (l *Ledger) RecordRun(ctx context.Context, report *tasks.Report) error {
	if report == nil {
		return nil
	}

	run := Run{
		ID:         report.ID,
		OutputDir:  report.OutputDir,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Sources:    len(report.Results),
		Failures:   report.Failures(),
		Posts:      report.PostsWritten(),
	}
	if report.Err != nil {
		run.Error = report.Err.Error()
	}

	if err := l.runs.CreateRun(ctx, run); err != nil {
		return fmt.Errorf("failed to record run %s: %w", report.ID, err)
	}

	var errs []error
	for _, result := range report.Results {
		sourceRun := SourceRun{
			RunID:      report.ID,
			Source:     result.Source,
			Kind:       string(result.Kind),
			Outcome:    string(result.Outcome),
			Posts:      len(result.Posts),
			Filtered:   result.Filtered,
			Retries:    result.Retries,
			Duration:   result.Duration,
			FinishedAt: report.FinishedAt,
		}
		if result.Err != nil {
			sourceRun.Error = result.Err.Error()
		}

		if err := l.sources.InsertSourceRun(ctx, sourceRun); err != nil {
			errs = append(errs, err)
			continue
		}

		for _, written := range result.Posts {
			err := l.posts.UpsertPost(ctx, Post{
				FileName:     written.FileName,
				Source:       result.Source,
				Title:        written.Post.Title,
				Date:         written.Post.Date,
				OriginalLink: written.Post.OriginalLink,
				UpdatedAt:    report.FinishedAt,
			})
			if err != nil {
				errs = append(errs, err)
			}
		}
	}

	slog.Debug("Run recorded", "run_id", report.ID, "sources", run.Sources, "posts", run.Posts, "failures", run.Failures)

	return errors.Join(errs...)
}
