package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/lysyi3m/disc/app/api"
	"github.com/lysyi3m/disc/app/cfg"
	"github.com/lysyi3m/disc/app/config"
	"github.com/lysyi3m/disc/app/database"
	"github.com/lysyi3m/disc/app/render"
	"github.com/lysyi3m/disc/app/source"
	"github.com/lysyi3m/disc/app/tasks"
)

func serve(ctx context.Context, appCfg *cfg.Cfg) int {
	slog.Info("Starting disc server", "project", appCfg.ProjectRoot, "version", appCfg.Version)

	configCache := config.NewCache(config.NewLoader(appCfg.ConfigFile))
	if err := configCache.Run(); err != nil {
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

	scheduler := tasks.NewScheduler(tasks.SchedulerOptions{
		ProjectRoot: appCfg.ProjectRoot,
		OutputDir:   filepath.Join(appCfg.ProjectRoot, source.PostsDir),
		Interval:    appCfg.SchedulerInterval,
	}, configCache, newRunner, newRendererFactory(appCfg))

	slog.Info("Starting background scheduler", "interval", appCfg.SchedulerInterval, "workers", appCfg.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	var (
		runRepo    database.RunStore
		sourceRepo database.SourceStore
		postRepo   database.PostStore
	)
	if db != nil {
		runRepo = database.NewRunRepository(db)
		sourceRepo = database.NewSourceRepository(db)
		postRepo = database.NewPostRepository(db)
	}

	handler := api.NewHandler(configCache, runRepo, sourceRepo, postRepo, scheduler)
	router := api.NewServer(handler, api.ServerOptions{
		APIAccessKey: appCfg.APIAccessKey,
		PublicDir:    filepath.Join(appCfg.ProjectRoot, render.PublicDir),
		Version:      appCfg.Version,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	code := exitOK
	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
		code = exitFailed
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return code
}
