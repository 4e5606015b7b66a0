package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/disc/app/feed"
	"github.com/lysyi3m/disc/app/gitsync"
	"github.com/lysyi3m/disc/app/post"
	"github.com/lysyi3m/disc/app/source"
)

// MockDispatcher records processed sources and fails the ones listed in errs.
type MockDispatcher struct {
	mu        sync.Mutex
	processed []string
	errs      map[string]error
	failures  map[string]int
	delay     time.Duration
}

var _ Dispatcher = (*MockDispatcher)(nil)

func (m *MockDispatcher) Process(ctx context.Context, outputDir, id string) (*source.Result, error) {
	m.mu.Lock()
	m.processed = append(m.processed, id)
	remaining := m.failures[id]
	if remaining > 0 {
		m.failures[id] = remaining - 1
	}
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if err, ok := m.errs[id]; ok {
		return nil, &source.Error{Source: id, Err: err}
	}
	if remaining > 0 {
		return nil, &source.Error{Source: id, Err: errors.New("transient")}
	}

	return &source.Result{
		Source: id,
		Kind:   source.KindFeed,
		Written: []source.WrittenPost{
			{FileName: id + ".md", Post: post.Post{Title: id}},
		},
	}, nil
}

func (m *MockDispatcher) Processed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.processed...)
}

type MockRecorder struct {
	reports []*Report
	err     error
}

func (m *MockRecorder) RecordRun(ctx context.Context, report *Report) error {
	m.reports = append(m.reports, report)
	return m.err
}

func TestRunner_Run_IsolatesFailures(t *testing.T) {
	dispatcher := &MockDispatcher{
		errs: map[string]error{"b.xml": errors.New("unreachable")},
	}
	runner := NewRunner(dispatcher)

	report := runner.Run(context.Background(), t.TempDir(), []string{"a.xml", "b.xml", "c.xml"})

	if report.Err != nil {
		t.Fatalf("Expected no batch error, got %v", report.Err)
	}
	if report.Failures() != 1 {
		t.Errorf("Expected 1 failure, got %d", report.Failures())
	}
	if report.PostsWritten() != 2 {
		t.Errorf("Expected 2 posts written, got %d", report.PostsWritten())
	}

	processed := dispatcher.Processed()
	expected := []string{"a.xml", "b.xml", "c.xml"}
	if len(processed) != len(expected) {
		t.Fatalf("Expected %d sources processed, got %v", len(expected), processed)
	}
	for i := range expected {
		if processed[i] != expected[i] {
			t.Errorf("Expected sequential order %v, got %v", expected, processed)
			break
		}
	}

	if report.Results[1].Err == nil {
		t.Errorf("Expected failure on second source")
	}
	var sourceErr *source.Error
	if !errors.As(report.Results[1].Err, &sourceErr) || sourceErr.Source != "b.xml" {
		t.Errorf("Expected source-scoped error, got %v", report.Results[1].Err)
	}
}

func TestRunner_Run_CreatesCacheDir(t *testing.T) {
	output := filepath.Join(t.TempDir(), "content", "post")

	report := NewRunner(&MockDispatcher{}).Run(context.Background(), output, nil)

	if report.Err != nil {
		t.Fatalf("Expected no error, got %v", report.Err)
	}
	if _, err := os.Stat(filepath.Join(output, source.CacheDirName)); err != nil {
		t.Errorf("Expected cache directory to exist: %v", err)
	}
	if len(report.Results) != 0 {
		t.Errorf("Expected empty report, got %d results", len(report.Results))
	}
}

func TestRunner_Run_OutputDirFailure(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	dispatcher := &MockDispatcher{}
	report := NewRunner(dispatcher).Run(context.Background(), filepath.Join(blocker, "out"), []string{"a.xml"})

	if report.Err == nil {
		t.Errorf("Expected batch error when output directory cannot be created")
	}
	if len(dispatcher.Processed()) != 0 {
		t.Errorf("Expected no sources processed")
	}
}

func TestRunner_Run_Workers(t *testing.T) {
	dispatcher := &MockDispatcher{delay: 50 * time.Millisecond}
	sources := []string{"a.xml", "b.xml", "c.xml", "d.xml"}

	start := time.Now()
	report := NewRunner(dispatcher, WithWorkers(4)).Run(context.Background(), t.TempDir(), sources)
	elapsed := time.Since(start)

	if report.Failures() != 0 {
		t.Errorf("Expected no failures, got %d", report.Failures())
	}
	if elapsed >= 200*time.Millisecond {
		t.Errorf("Expected sources to run concurrently, took %v", elapsed)
	}
	for i, result := range report.Results {
		if result.Source != sources[i] {
			t.Errorf("Expected results in configuration order, got %s at %d", result.Source, i)
		}
	}
}

func TestRunner_Run_Retry(t *testing.T) {
	dispatcher := &MockDispatcher{failures: map[string]int{"a.xml": 1}}

	report := NewRunner(dispatcher, WithRetries(1)).Run(context.Background(), t.TempDir(), []string{"a.xml"})

	if report.Failures() != 0 {
		t.Errorf("Expected retry to succeed, got %v", report.Results[0].Err)
	}
	if report.Results[0].Retries != 1 {
		t.Errorf("Expected 1 retry, got %d", report.Results[0].Retries)
	}
	if len(dispatcher.Processed()) != 2 {
		t.Errorf("Expected 2 attempts, got %d", len(dispatcher.Processed()))
	}
}

func TestRunner_Run_NoRetryByDefault(t *testing.T) {
	dispatcher := &MockDispatcher{failures: map[string]int{"a.xml": 1}}

	report := NewRunner(dispatcher).Run(context.Background(), t.TempDir(), []string{"a.xml"})

	if report.Failures() != 1 {
		t.Errorf("Expected failure without retry")
	}
	if len(dispatcher.Processed()) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(dispatcher.Processed()))
	}
}

func TestRunner_Run_UnsupportedKindNotRetried(t *testing.T) {
	dispatcher := &MockDispatcher{errs: map[string]error{"file.txt": source.ErrUnsupportedSourceKind}}

	report := NewRunner(dispatcher, WithRetries(3)).Run(context.Background(), t.TempDir(), []string{"file.txt"})

	if !errors.Is(report.Results[0].Err, source.ErrUnsupportedSourceKind) {
		t.Errorf("Expected ErrUnsupportedSourceKind, got %v", report.Results[0].Err)
	}
	if len(dispatcher.Processed()) != 1 {
		t.Errorf("Expected a single attempt, got %d", len(dispatcher.Processed()))
	}
}

func TestRunner_Run_Timeout(t *testing.T) {
	dispatcher := &MockDispatcher{delay: time.Second}

	report := NewRunner(dispatcher, WithTimeout(20*time.Millisecond)).Run(context.Background(), t.TempDir(), []string{"slow.xml"})

	if !errors.Is(report.Results[0].Err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", report.Results[0].Err)
	}
}

func TestRunner_Run_Recorder(t *testing.T) {
	recorder := &MockRecorder{err: errors.New("ledger down")}

	report := NewRunner(&MockDispatcher{}, WithRecorder(recorder)).Run(context.Background(), t.TempDir(), []string{"a.xml"})

	if len(recorder.reports) != 1 || recorder.reports[0] != report {
		t.Errorf("Expected report to be recorded once")
	}
	if report.Failures() != 0 {
		t.Errorf("Recorder failure must not fail the batch")
	}
}

func TestRetryDelay(t *testing.T) {
	tests := map[int]time.Duration{
		0:  0,
		1:  time.Second,
		2:  2 * time.Second,
		5:  16 * time.Second,
		10: 30 * time.Second,
	}

	for count, expected := range tests {
		if got := retryDelay(count); got != expected {
			t.Errorf("retryDelay(%d): expected %v, got %v", count, expected, got)
		}
	}
}

func TestRunner_Run_MixedBatch(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	unreachable := server.URL + "/feed.xml"
	server.Close()

	rss, err := filepath.Abs(filepath.Join("..", "feed", "testdata", "example.rss.xml"))
	if err != nil {
		t.Fatal(err)
	}
	atom, err := filepath.Abs(filepath.Join("..", "feed", "testdata", "example.atom.xml"))
	if err != nil {
		t.Fatal(err)
	}

	dispatcher := source.NewDispatcher(
		gitsync.NewEngine(),
		feed.NewAdapter(feed.NewFetcher(nil, ""), feed.NewParser()),
		post.NewWriter(),
	)
	output := t.TempDir()

	report := NewRunner(dispatcher).Run(context.Background(), output, []string{rss, unreachable, atom})

	if report.Failures() != 1 {
		t.Fatalf("Expected 1 failure, got %d", report.Failures())
	}
	if report.Results[0].Err != nil || report.Results[2].Err != nil {
		t.Errorf("Expected feed sources to succeed, got %v and %v", report.Results[0].Err, report.Results[2].Err)
	}
	if !errors.Is(report.Results[1].Err, feed.ErrFetchFailed) {
		t.Errorf("Expected fetch failure for %s, got %v", unreachable, report.Results[1].Err)
	}
	if len(report.Results[0].Posts) != 2 || len(report.Results[2].Posts) != 2 {
		t.Errorf("Expected 2 posts from each feed, got %d and %d", len(report.Results[0].Posts), len(report.Results[2].Posts))
	}

	for _, name := range []string{"2021-08-10-Cogito ergo sum.md", "2021-09-01-Cogito ergo sum.md"} {
		if _, err := os.Stat(filepath.Join(output, name)); err != nil {
			t.Errorf("Expected %s to be written: %v", name, err)
		}
	}
}
