package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/disc/app/config"
)

// RunnerFactory builds a runner for the given project so filters and
// content extraction follow the current configuration.
type RunnerFactory func(project *config.Project) *Runner

type RunBatchTask struct {
	Task
	OutputDir   string
	Report      *Report
	configCache *config.Cache
	newRunner   RunnerFactory
}

func NewRunBatchTask(outputDir string, configCache *config.Cache, newRunner RunnerFactory) *RunBatchTask {
	return &RunBatchTask{
		Task:        NewTask(TaskTypeRunBatch, outputDir),
		OutputDir:   outputDir,
		configCache: configCache,
		newRunner:   newRunner,
	}
}

func (t *RunBatchTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.configCache.Run(); err != nil {
		slog.Warn("Failed to reload configuration, using previous", "error", err)
	}

	project := t.configCache.GetProject()
	if project == nil {
		return fmt.Errorf("no project configuration loaded")
	}

	t.Report = t.newRunner(project).Run(ctx, t.OutputDir, project.Blogs)
	if t.Report.Err != nil {
		return t.Report.Err
	}

	slog.Info("Task completed",
		"type", t.Type,
		"sources", len(project.Blogs),
		"failed", t.Report.Failures(),
		"duration", t.GetDuration())

	return nil
}
