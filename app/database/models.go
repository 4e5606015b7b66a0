package database

import (
	"time"
)

// Run represents one batch run in the ledger
type Run struct {
	ID         string
	OutputDir  string
	StartedAt  time.Time
	FinishedAt time.Time
	Sources    int
	Failures   int
	Posts      int
	Error      string
}

// SourceRun represents the outcome of one source within a run
type SourceRun struct {
	ID         int64
	RunID      string
	Source     string
	Kind       string
	Outcome    string // git sync outcome, empty for feeds
	Posts      int
	Filtered   int
	Retries    int
	Duration   time.Duration
	Error      string
	FinishedAt time.Time
}

// Post represents a normalized post file known to the ledger
type Post struct {
	FileName     string
	Source       string
	Title        string
	Date         string
	OriginalLink string
	UpdatedAt    time.Time
}
