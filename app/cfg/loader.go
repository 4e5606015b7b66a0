package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type projectArgs struct {
	Project string `positional-arg-name:"PROJECT" description:"Project root folder (overrides --project)"`
}

type runCommand struct {
	Args projectArgs `positional-args:"yes"`
}

type serveCommand struct {
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	SchedulerInterval int    `long:"interval" env:"SCHEDULER_INTERVAL" default:"3600" description:"Seconds between batch runs"`
	APIAccessKey      string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	Args projectArgs `positional-args:"yes"`
}

type renderCommand struct {
	Args projectArgs `positional-args:"yes"`
}

type rawCfg struct {
	// Project configuration
	Project    string `long:"project" short:"p" env:"DISC_PROJECT" default:"./disc" description:"Project root folder"`
	ConfigFile string `long:"config-file" env:"DISC_CONFIG_FILE" default:"disc.yaml" description:"Project configuration file, relative to the project root"`

	// Batch configuration
	WorkerCount int    `long:"workers" env:"WORKER_COUNT" default:"1" description:"Number of sources processed concurrently"`
	Retries     int    `long:"retries" env:"DISC_RETRIES" default:"0" description:"Retries per failed source"`
	Timeout     int    `long:"timeout" env:"DISC_TIMEOUT" default:"0" description:"Per-source timeout in seconds (0 disables)"`
	CacheKey    string `long:"cache-key" env:"DISC_CACHE_KEY" default:"replace" choice:"replace" choice:"hash" description:"How source identifiers map to cache folder names"`
	UserAgent   string `long:"user-agent" env:"USER_AGENT" description:"User agent string for feed requests"`
	HTML        bool   `long:"html" description:"Render the HTML site after the run"`

	// Ledger configuration
	Ledger   string `long:"ledger" env:"DISC_LEDGER" description:"Run ledger database path (default <project>/.disc/ledger.db)"`
	NoLedger bool   `long:"no-ledger" env:"DISC_NO_LEDGER" description:"Do not record runs"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" description:"Timezone for log timestamps (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`

	Run    runCommand    `command:"run" description:"Normalize every configured blog into content/post (default)"`
	Serve  serveCommand  `command:"serve" description:"Run batches periodically and serve the status API"`
	Render renderCommand `command:"render" description:"Render content/post into public/"`
}

// Load parses the process arguments. It returns nil without error when help
// was requested.
func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)
	parser.SubcommandsOptional = true

	rest, err := parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	command := CommandRun
	var project string
	serve := raw.Serve
	if parser.Active != nil {
		command = parser.Active.Name
	}

	switch command {
	case CommandRun:
		project = raw.Run.Args.Project
		if project == "" && len(rest) > 0 {
			project = rest[len(rest)-1]
		}
	case CommandServe:
		project = serve.Args.Project
	case CommandRender:
		project = raw.Render.Args.Project
	}

	cfg := &Cfg{
		Command:      command,
		ProjectRoot:  cmp.Or(project, raw.Project),
		WorkerCount:  raw.WorkerCount,
		Retries:      raw.Retries,
		Timeout:      time.Duration(raw.Timeout) * time.Second,
		CacheKey:     raw.CacheKey,
		UserAgent:    raw.UserAgent,
		HTML:         raw.HTML,
		NoLedger:     raw.NoLedger,
		Port:         serve.Port,
		APIAccessKey: serve.APIAccessKey,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	cfg.ConfigFile = raw.ConfigFile
	if !filepath.IsAbs(cfg.ConfigFile) {
		cfg.ConfigFile = filepath.Join(cfg.ProjectRoot, cfg.ConfigFile)
	}

	cfg.LedgerPath = cmp.Or(raw.Ledger, filepath.Join(cfg.ProjectRoot, ".disc", "ledger.db"))

	if err := validate(cfg, raw, serve); err != nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func validate(cfg *Cfg, raw rawCfg, serve serveCommand) error {
	if cfg.WorkerCount < 1 {
		return fmt.Errorf("invalid --workers %d: must be at least 1", cfg.WorkerCount)
	}
	if cfg.Retries < 0 {
		return fmt.Errorf("invalid --retries %d: must not be negative", cfg.Retries)
	}
	if raw.Timeout < 0 {
		return fmt.Errorf("invalid --timeout %d: must not be negative", raw.Timeout)
	}
	if cfg.Command == CommandServe {
		if serve.SchedulerInterval < 1 {
			return fmt.Errorf("invalid --interval %d: must be at least 1", serve.SchedulerInterval)
		}
		cfg.SchedulerInterval = time.Duration(serve.SchedulerInterval) * time.Second
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
