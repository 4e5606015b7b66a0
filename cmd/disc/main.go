package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lysyi3m/disc/app/cfg"
	"github.com/lysyi3m/disc/app/config"
	"github.com/lysyi3m/disc/app/source"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := execute(ctx, appCfg)
	stop()

	os.Exit(code)
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func execute(ctx context.Context, appCfg *cfg.Cfg) int {
	switch appCfg.Command {
	case cfg.CommandServe:
		return serve(ctx, appCfg)
	case cfg.CommandRender:
		return renderSite(appCfg)
	default:
		return runOnce(ctx, appCfg)
	}
}

// runOnce processes every configured blog once. Per-source failures are
// logged and do not change the exit status.
func runOnce(ctx context.Context, appCfg *cfg.Cfg) int {
	project, err := config.NewLoader(appCfg.ConfigFile).Load()
	if err != nil {
		slog.Error("Failed to load configuration", "path", appCfg.ConfigFile, "error", err)
		return exitFailed
	}

	db, ledger := openLedger(appCfg)
	if db != nil {
		defer db.Close()
	}

	newRunner, err := newRunnerFactory(appCfg, ledger)
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		return exitUsage
	}

	outputDir := filepath.Join(appCfg.ProjectRoot, source.PostsDir)
	slog.Info("Starting run", "project", appCfg.ProjectRoot, "blogs", len(project.Blogs), "workers", appCfg.WorkerCount)

	report := newRunner(project).Run(ctx, outputDir, project.Blogs)
	if report.Err != nil {
		slog.Error("Run failed", "output_dir", outputDir, "error", report.Err)
		return exitFailed
	}

	if appCfg.HTML {
		if _, err := newRenderer(appCfg, project).Run(appCfg.ProjectRoot); err != nil {
			slog.Error("Failed to render site", "error", err)
			return exitFailed
		}
	}

	return exitOK
}

func renderSite(appCfg *cfg.Cfg) int {
	project, err := config.NewLoader(appCfg.ConfigFile).Load()
	if err != nil {
		slog.Warn("Rendering without project configuration", "path", appCfg.ConfigFile, "error", err)
		project = &config.Project{}
	}

	if _, err := newRenderer(appCfg, project).Run(appCfg.ProjectRoot); err != nil {
		slog.Error("Failed to render site", "error", err)
		return exitFailed
	}

	return exitOK
}
