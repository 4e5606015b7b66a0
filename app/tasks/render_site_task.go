package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/disc/app/config"
)

type Renderer interface {
	Run(projectRoot string) (string, error)
}

// RendererFactory builds a renderer whose channel follows the given project.
type RendererFactory func(project *config.Project) Renderer

type RenderSiteTask struct {
	Task
	ProjectRoot string
	configCache *config.Cache
	newRenderer RendererFactory
}

func NewRenderSiteTask(projectRoot string, configCache *config.Cache, newRenderer RendererFactory) *RenderSiteTask {
	return &RenderSiteTask{
		Task:        NewTask(TaskTypeRenderSite, projectRoot),
		ProjectRoot: projectRoot,
		configCache: configCache,
		newRenderer: newRenderer,
	}
}

func (t *RenderSiteTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	project := t.configCache.GetProject()
	if project == nil {
		return fmt.Errorf("no project configuration loaded")
	}

	publicDir, err := t.newRenderer(project).Run(t.ProjectRoot)
	if err != nil {
		return fmt.Errorf("failed to render site: %w", err)
	}

	slog.Info("Task completed",
		"type", t.Type,
		"public_dir", publicDir,
		"duration", t.GetDuration())

	return nil
}
