package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/disc/app/config"
)

type MockRenderer struct {
	calls  atomic.Int32
	mu     sync.Mutex
	titles []string
}

func (m *MockRenderer) Run(projectRoot string) (string, error) {
	m.calls.Add(1)
	return filepath.Join(projectRoot, "public"), nil
}

// Factory returns a RendererFactory that records the title of each project
// it is asked to render.
func (m *MockRenderer) Factory() RendererFactory {
	return func(project *config.Project) Renderer {
		m.mu.Lock()
		m.titles = append(m.titles, project.Title)
		m.mu.Unlock()
		return m
	}
}

func (m *MockRenderer) Titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.titles...)
}

func newTestCache(t *testing.T, content string) *config.Cache {
	t.Helper()
	path := filepath.Join(t.TempDir(), "disc.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return config.NewCache(config.NewLoader(path))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Condition not met in time")
}

func TestScheduler_RunsBatchOnStart(t *testing.T) {
	dispatcher := &MockDispatcher{}
	renderer := &MockRenderer{}
	cache := newTestCache(t, "blogs: [a.xml, b.xml]\n")

	scheduler := NewScheduler(SchedulerOptions{
		ProjectRoot: t.TempDir(),
		OutputDir:   t.TempDir(),
		Interval:    time.Hour,
	}, cache, func(project *config.Project) *Runner {
		return NewRunner(dispatcher)
	}, renderer.Factory())

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, func() bool { return scheduler.LastReport() != nil })
	waitFor(t, func() bool { return renderer.calls.Load() == 1 })

	report := scheduler.LastReport()
	if len(report.Results) != 2 {
		t.Errorf("Expected 2 results, got %d", len(report.Results))
	}
}

func TestScheduler_Trigger(t *testing.T) {
	dispatcher := &MockDispatcher{}
	cache := newTestCache(t, "blogs: [a.xml]\n")

	scheduler := NewScheduler(SchedulerOptions{OutputDir: t.TempDir(), Interval: time.Hour}, cache,
		func(project *config.Project) *Runner { return NewRunner(dispatcher) }, nil)

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, func() bool { return len(dispatcher.Processed()) == 1 })

	if err := scheduler.Trigger(); err != nil {
		t.Fatalf("Expected trigger to be queued, got %v", err)
	}

	waitFor(t, func() bool { return len(dispatcher.Processed()) == 2 })
}

func TestScheduler_EnqueueTask_QueueFull(t *testing.T) {
	cache := newTestCache(t, "blogs: []\n")
	scheduler := NewScheduler(SchedulerOptions{OutputDir: t.TempDir(), QueueSize: 1}, cache,
		func(project *config.Project) *Runner { return NewRunner(&MockDispatcher{}) }, nil)

	if err := scheduler.Trigger(); err != nil {
		t.Fatalf("Expected first task to be queued, got %v", err)
	}
	if err := scheduler.Trigger(); err == nil {
		t.Errorf("Expected queue full error")
	}
}

func TestRunBatchTask_MissingConfig(t *testing.T) {
	cache := config.NewCache(config.NewLoader(filepath.Join(t.TempDir(), "disc.yaml")))
	task := NewRunBatchTask(t.TempDir(), cache, func(project *config.Project) *Runner {
		return NewRunner(&MockDispatcher{})
	})

	if err := task.Execute(context.Background()); err == nil {
		t.Errorf("Expected error without configuration")
	}
}

func TestScheduler_RenderFollowsReloadedProject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "disc.yaml")
	if err := os.WriteFile(path, []byte("title: First\nblogs: [a.xml]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cache := config.NewCache(config.NewLoader(path))
	renderer := &MockRenderer{}

	scheduler := NewScheduler(SchedulerOptions{ProjectRoot: t.TempDir(), OutputDir: t.TempDir(), Interval: time.Hour}, cache,
		func(project *config.Project) *Runner { return NewRunner(&MockDispatcher{}) }, renderer.Factory())

	scheduler.Start()
	defer scheduler.Stop()

	waitFor(t, func() bool { return renderer.calls.Load() == 1 })

	if err := os.WriteFile(path, []byte("title: Second\nblogs: [a.xml]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := scheduler.Trigger(); err != nil {
		t.Fatalf("Expected trigger to be queued, got %v", err)
	}

	waitFor(t, func() bool { return renderer.calls.Load() == 2 })

	titles := renderer.Titles()
	if len(titles) != 2 || titles[0] != "First" || titles[1] != "Second" {
		t.Errorf("Expected titles [First Second], got %v", titles)
	}
}

func TestScheduler_EnqueueAfterStop(t *testing.T) {
	cache := newTestCache(t, "blogs: []\n")
	scheduler := NewScheduler(SchedulerOptions{OutputDir: t.TempDir()}, cache,
		func(project *config.Project) *Runner { return NewRunner(&MockDispatcher{}) }, nil)

	scheduler.Start()
	scheduler.Stop()
	scheduler.Stop()

	for i := 0; i < 3; i++ {
		if err := scheduler.Trigger(); !errors.Is(err, context.Canceled) {
			t.Fatalf("Expected context.Canceled after stop, got %v", err)
		}
	}
	if err := scheduler.EnqueueTask(NewRenderSiteTask(t.TempDir(), cache, (&MockRenderer{}).Factory())); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled after stop, got %v", err)
	}
}
