package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/disc/app/config"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type SchedulerOptions struct {
	ProjectRoot string
	OutputDir   string
	Interval    time.Duration
	QueueSize   int
}

type Scheduler struct {
	configCache *config.Cache
	newRunner   RunnerFactory
	newRenderer RendererFactory
	projectRoot string
	outputDir   string
	interval    time.Duration
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
	mu          sync.RWMutex
	lastReport  *Report
}

// NewScheduler returns a scheduler for one project. newRenderer may be nil, in
// which case no site is rendered after a batch.
func NewScheduler(opts SchedulerOptions, configCache *config.Cache, newRunner RunnerFactory, newRenderer RendererFactory) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = 10
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	return &Scheduler{
		configCache: configCache,
		newRunner:   newRunner,
		newRenderer: newRenderer,
		projectRoot: opts.ProjectRoot,
		outputDir:   opts.OutputDir,
		interval:    interval,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

func (s *Scheduler) Start() {
	// One worker: batches never overlap, the runner has its own pool.
	s.wg.Add(1)
	go s.worker(0)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.enqueueBatch()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.enqueueBatch()
			}
		}
	}()
}

// Stop cancels the scheduler and waits for its goroutines. The queue stays
// open; later enqueues are rejected with the context error.
func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) Trigger() error {
	return s.EnqueueTask(NewRunBatchTask(s.outputDir, s.configCache, s.newRunner))
}

func (s *Scheduler) LastReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}

func (s *Scheduler) enqueueBatch() {
	if err := s.Trigger(); err != nil {
		slog.Warn("Failed to enqueue RunBatchTask", "error", err)
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	err := task.Execute(s.ctx)

	if batch, ok := task.(*RunBatchTask); ok && batch.Report != nil {
		s.mu.Lock()
		s.lastReport = batch.Report
		s.mu.Unlock()

		if err == nil && s.newRenderer != nil {
			if renderErr := s.EnqueueTask(NewRenderSiteTask(s.projectRoot, s.configCache, s.newRenderer)); renderErr != nil {
				slog.Warn("Failed to enqueue RenderSiteTask", "error", renderErr)
			}
		}
	}

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "error", err)
	}
}
