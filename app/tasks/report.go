package tasks

import (
	"time"

	"github.com/lysyi3m/disc/app/gitsync"
	"github.com/lysyi3m/disc/app/source"
)

// Report is the outcome of one batch. Results follow the order of the
// configured sources.
type Report struct {
	ID         string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []SourceResult
	Err        error
}

type SourceResult struct {
	Source   string
	Kind     source.Kind
	Outcome  gitsync.Outcome
	Posts    []source.WrittenPost
	Filtered int
	Retries  int
	Duration time.Duration
	Err      error
}

func (r *Report) Failures() int {
	count := 0
	for _, result := range r.Results {
		if result.Err != nil {
			count++
		}
	}
	return count
}

func (r *Report) PostsWritten() int {
	count := 0
	for _, result := range r.Results {
		count += len(result.Posts)
	}
	return count
}

func (r *Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
