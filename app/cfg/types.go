package cfg

import (
	"time"
)

const (
	CommandRun    = "run"
	CommandServe  = "serve"
	CommandRender = "render"
)

type Cfg struct {
	Command string

	// Project configuration
	ProjectRoot string
	ConfigFile  string

	// Batch configuration
	WorkerCount int
	Retries     int
	Timeout     time.Duration
	CacheKey    string
	UserAgent   string
	HTML        bool

	// Ledger configuration
	LedgerPath string
	NoLedger   bool

	// Serve configuration
	Port              string
	SchedulerInterval time.Duration
	APIAccessKey      string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
