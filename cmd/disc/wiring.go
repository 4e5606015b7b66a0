package main

import (
	"log/slog"
	"strings"

	"github.com/lysyi3m/disc/app/cfg"
	"github.com/lysyi3m/disc/app/config"
	"github.com/lysyi3m/disc/app/database"
	"github.com/lysyi3m/disc/app/feed"
	"github.com/lysyi3m/disc/app/gitsync"
	"github.com/lysyi3m/disc/app/post"
	"github.com/lysyi3m/disc/app/render"
	"github.com/lysyi3m/disc/app/source"
	"github.com/lysyi3m/disc/app/tasks"
)

// openLedger returns a nil ledger when it is disabled or cannot be opened.
func openLedger(appCfg *cfg.Cfg) (*database.DB, *database.Ledger) {
	if appCfg.NoLedger {
		return nil, nil
	}

	db, err := database.NewConnection(appCfg.LedgerPath)
	if err != nil {
		slog.Warn("Ledger disabled", "path", appCfg.LedgerPath, "error", err)
		return nil, nil
	}

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Warn("Ledger disabled", "path", appCfg.LedgerPath, "error", err)
		_ = db.Close()
		return nil, nil
	}
	slog.Debug("Ledger ready", "path", appCfg.LedgerPath, "version", version, "dirty", dirty)

	ledger := database.NewLedger(database.NewRunRepository(db), database.NewSourceRepository(db), database.NewPostRepository(db))
	return db, ledger
}

// newRunnerFactory builds runners that follow the current project
// configuration. The git engine and feed fetcher are shared across runs.
func newRunnerFactory(appCfg *cfg.Cfg, ledger *database.Ledger) (tasks.RunnerFactory, error) {
	cacheKey, err := source.ParseCacheKey(appCfg.CacheKey)
	if err != nil {
		return nil, err
	}

	engine := gitsync.NewEngine()
	fetcher := feed.NewFetcher(nil, appCfg.UserAgent)
	writer := post.NewWriter()

	runnerOpts := []tasks.RunnerOption{
		tasks.WithWorkers(appCfg.WorkerCount),
		tasks.WithRetries(appCfg.Retries),
		tasks.WithTimeout(appCfg.Timeout),
	}
	if ledger != nil {
		runnerOpts = append(runnerOpts, tasks.WithRecorder(ledger))
	}

	return func(project *config.Project) *tasks.Runner {
		var adapterOpts []feed.AdapterOption
		if project.ExtractContent {
			adapterOpts = append(adapterOpts, feed.WithContentExtraction(feed.NewContentExtractor()))
		}

		dispatcher := source.NewDispatcher(engine, feed.NewAdapter(fetcher, feed.NewParser(), adapterOpts...), writer,
			source.WithFilterer(post.NewFilterer(project.Filters)),
			source.WithCacheKey(cacheKey))

		return tasks.NewRunner(dispatcher, runnerOpts...)
	}, nil
}

func newRenderer(appCfg *cfg.Cfg, project *config.Project) *render.Renderer {
	channel := feed.Channel{
		Title:   project.Title,
		Link:    project.BaseURL,
		Version: appCfg.Version,
	}
	if project.BaseURL != "" {
		channel.SelfLink = strings.TrimSuffix(project.BaseURL, "/") + "/" + render.IndexFeed
	}

	return render.NewRenderer(channel)
}

// newRendererFactory builds a renderer from the project loaded at render time.
func newRendererFactory(appCfg *cfg.Cfg) tasks.RendererFactory {
	return func(project *config.Project) tasks.Renderer {
		return newRenderer(appCfg, project)
	}
}
