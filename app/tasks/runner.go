package tasks

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/disc/app/source"
)

// Recorder persists a finished report. Failures are logged, never fatal.
type Recorder interface {
	RecordRun(ctx context.Context, report *Report) error
}

type Runner struct {
	dispatcher  Dispatcher
	recorder    Recorder
	workerCount int
	maxRetries  int
	timeout     time.Duration
}

type RunnerOption func(*Runner)

func WithWorkers(count int) RunnerOption {
	return func(r *Runner) {
		r.workerCount = count
	}
}

func WithRetries(maxRetries int) RunnerOption {
	return func(r *Runner) {
		r.maxRetries = maxRetries
	}
}

// WithTimeout bounds each source attempt. Zero means no limit.
func WithTimeout(timeout time.Duration) RunnerOption {
	return func(r *Runner) {
		r.timeout = timeout
	}
}

func WithRecorder(recorder Recorder) RunnerOption {
	return func(r *Runner) {
		r.recorder = recorder
	}
}

func NewRunner(dispatcher Dispatcher, opts ...RunnerOption) *Runner {
	r := &Runner{
		dispatcher:  dispatcher,
		workerCount: 1,
		maxRetries:  DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workerCount < 1 {
		r.workerCount = 1
	}
	return r
}

// Run ingests every source into outputDir. A failing source is reported and
// the batch moves on; with one worker sources run in the given order.
func (r *Runner) Run(ctx context.Context, outputDir string, sources []string) *Report {
	report := &Report{
		ID:        uuid.NewString(),
		OutputDir: outputDir,
		StartedAt: time.Now().UTC(),
		Results:   make([]SourceResult, len(sources)),
	}

	if err := os.MkdirAll(source.CacheDir(outputDir), 0o755); err != nil {
		report.Err = fmt.Errorf("failed to create output directory: %w", err)
		report.FinishedAt = time.Now().UTC()
		slog.Error("Run aborted", "output_dir", outputDir, "error", report.Err)
		return report
	}

	queue := make(chan int, len(sources))
	for i := range sources {
		queue <- i
	}
	close(queue)

	workers := min(r.workerCount, len(sources))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range queue {
				report.Results[i] = r.ingest(ctx, workerID, outputDir, sources[i])
			}
		}(w)
	}
	wg.Wait()

	report.FinishedAt = time.Now().UTC()

	slog.Info("Run completed",
		"id", report.ID,
		"sources", len(sources),
		"failed", report.Failures(),
		"posts", report.PostsWritten(),
		"duration", report.Duration())

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, report); err != nil {
			slog.Warn("Failed to record run", "id", report.ID, "error", err)
		}
	}

	return report
}

func (r *Runner) ingest(ctx context.Context, workerID int, outputDir, id string) SourceResult {
	task := NewIngestSourceTask(id, outputDir, r.dispatcher)
	task.MaxRetries = r.maxRetries
	task.Start()

	var err error
	for {
		err = r.executeTask(ctx, task)
		if err == nil {
			break
		}

		slog.Error("Source failed", "worker_id", workerID, "source", id, "retry_count", task.GetRetryCount(), "error", err)

		if !task.CanRetry() || errors.Is(err, source.ErrUnsupportedSourceKind) || ctx.Err() != nil {
			break
		}

		task.IncrementRetryCount()
		delay := retryDelay(task.GetRetryCount())

		slog.Warn("Task retry scheduled", "type", string(task.GetType()), "source", id, "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			err = ctx.Err()
		}
		if ctx.Err() != nil {
			break
		}
	}

	result := SourceResult{
		Source:   id,
		Retries:  task.GetRetryCount(),
		Duration: task.GetDuration(),
		Err:      err,
	}
	if task.Result != nil {
		result.Kind = task.Result.Kind
		result.Outcome = task.Result.Outcome
		result.Posts = task.Result.Written
		result.Filtered = task.Result.Filtered
	}
	return result
}

func (r *Runner) executeTask(ctx context.Context, task TaskInterface) error {
	if r.timeout <= 0 {
		return task.Execute(ctx)
	}

	taskCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	return task.Execute(taskCtx)
}
