package api

import (
	"github.com/lysyi3m/disc/app/config"
	"github.com/lysyi3m/disc/app/database"
	"github.com/lysyi3m/disc/app/tasks"
)

const (
	DefaultPostLimit = 50
	MaxPostLimit     = 500
)

// Handler serves the status API of `disc serve`. The repositories are nil
// when the ledger is disabled.
type Handler struct {
	configCache *config.Cache
	runRepo     database.RunStore
	sourceRepo  database.SourceStore
	postRepo    database.PostStore
	scheduler   tasks.TaskSchedulerInterface
}

type sourceResultView struct {
	Source   string `json:"source"`
	Kind     string `json:"kind"`
	Outcome  string `json:"outcome,omitempty"`
	Posts    int    `json:"posts"`
	Filtered int    `json:"filtered"`
	Retries  int    `json:"retries"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

type reportView struct {
	ID         string             `json:"id"`
	OutputDir  string             `json:"output_dir"`
	StartedAt  string             `json:"started_at"`
	FinishedAt string             `json:"finished_at"`
	Duration   string             `json:"duration"`
	Sources    int                `json:"sources"`
	Failures   int                `json:"failures"`
	Posts      int                `json:"posts"`
	Error      string             `json:"error,omitempty"`
	Results    []sourceResultView `json:"results"`
}
