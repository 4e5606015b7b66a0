package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/disc/app/source"
)

type Dispatcher interface {
	Process(ctx context.Context, outputDir, id string) (*source.Result, error)
}

type IngestSourceTask struct {
	Task
	OutputDir  string
	Result     *source.Result
	dispatcher Dispatcher
}

func NewIngestSourceTask(id, outputDir string, dispatcher Dispatcher) *IngestSourceTask {
	return &IngestSourceTask{
		Task:       NewTask(TaskTypeIngestSource, id),
		OutputDir:  outputDir,
		dispatcher: dispatcher,
	}
}

func (t *IngestSourceTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	result, err := t.dispatcher.Process(ctx, t.OutputDir, t.Source)
	t.Result = result
	if err != nil {
		return err
	}

	slog.Info("Task completed",
		"type", t.Type,
		"source", t.Source,
		"kind", result.Kind,
		"outcome", result.Outcome,
		"written", len(result.Written),
		"filtered", result.Filtered,
		"duration", t.GetDuration())

	return nil
}
