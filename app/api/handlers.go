package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/disc/app/config"
	"github.com/lysyi3m/disc/app/database"
	"github.com/lysyi3m/disc/app/source"
	"github.com/lysyi3m/disc/app/tasks"
)

func NewHandler(configCache *config.Cache, runRepo database.RunStore,
	sourceRepo database.SourceStore, postRepo database.PostStore,
	scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		configCache: configCache,
		runRepo:     runRepo,
		sourceRepo:  sourceRepo,
		postRepo:    postRepo,
		scheduler:   scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"ledger":    h.runRepo != nil,
	}

	if project := h.configCache.GetProject(); project != nil {
		health["blogs"] = len(project.Blogs)
	}

	if h.runRepo != nil {
		if runCount, err := h.runRepo.GetRunCount(c.Request.Context()); err == nil {
			health["runs"] = runCount
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	report := h.scheduler.LastReport()
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No run completed yet"})
		return
	}

	c.JSON(http.StatusOK, newReportView(report))
}

func (h *Handler) APIListSources(c *gin.Context) {
	project := h.configCache.GetProject()
	if project == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Project configuration not loaded"})
		return
	}

	latest := make(map[string]database.SourceRun)
	if h.sourceRepo != nil {
		sourceRuns, err := h.sourceRepo.GetLatestSourceRuns(c.Request.Context())
		if err != nil {
			slog.Error("Database error", "operation", "get_latest_source_runs", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		for _, sourceRun := range sourceRuns {
			latest[sourceRun.Source] = sourceRun
		}
	}

	sources := make([]map[string]interface{}, 0, len(project.Blogs))
	for _, id := range project.Blogs {
		sourceInfo := map[string]interface{}{
			"source": id,
		}

		if kind, err := source.Classify(id); err == nil {
			sourceInfo["kind"] = kind
		} else {
			sourceInfo["kind"] = "unsupported"
		}

		if sourceRun, ok := latest[id]; ok {
			sourceInfo["last_run"] = sourceRunView(sourceRun)
		}

		sources = append(sources, sourceInfo)
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": sources,
		"total":   len(sources),
	})
}

func (h *Handler) APIGetSourceHistory(c *gin.Context) {
	if h.sourceRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger disabled"})
		return
	}

	id := c.Query("source")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing source parameter"})
		return
	}

	sourceRuns, err := h.sourceRepo.GetSourceHistory(c.Request.Context(), id, parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_source_history", "source", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	history := make([]map[string]interface{}, 0, len(sourceRuns))
	for _, sourceRun := range sourceRuns {
		history = append(history, sourceRunView(sourceRun))
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"source":  id,
		"history": history,
	})
}

func (h *Handler) APIListPosts(c *gin.Context) {
	if h.postRepo == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Ledger disabled"})
		return
	}

	posts, err := h.postRepo.GetPosts(c.Request.Context(), c.Query("source"), parseLimit(c))
	if err != nil {
		slog.Error("Database error", "operation", "get_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	items := make([]map[string]interface{}, 0, len(posts))
	for _, p := range posts {
		items = append(items, map[string]interface{}{
			"file_name":     p.FileName,
			"source":        p.Source,
			"title":         p.Title,
			"date":          p.Date,
			"original_link": p.OriginalLink,
			"updated_at":    p.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"posts": items,
		"total": len(items),
	})
}

func (h *Handler) APITriggerRun(c *gin.Context) {
	if err := h.scheduler.Trigger(); err != nil {
		slog.Error("Failed to enqueue batch", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	slog.Info("Batch triggered via API")

	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPostLimit)))
	if err != nil || limit <= 0 {
		return DefaultPostLimit
	}
	return min(limit, MaxPostLimit)
}

func sourceRunView(sourceRun database.SourceRun) map[string]interface{} {
	view := map[string]interface{}{
		"run_id":      sourceRun.RunID,
		"kind":        sourceRun.Kind,
		"posts":       sourceRun.Posts,
		"filtered":    sourceRun.Filtered,
		"retries":     sourceRun.Retries,
		"duration":    sourceRun.Duration.String(),
		"finished_at": sourceRun.FinishedAt,
	}
	if sourceRun.Outcome != "" {
		view["outcome"] = sourceRun.Outcome
	}
	if sourceRun.Error != "" {
		view["error"] = sourceRun.Error
	}
	return view
}

func newReportView(report *tasks.Report) reportView {
	view := reportView{
		ID:         report.ID,
		OutputDir:  report.OutputDir,
		StartedAt:  report.StartedAt.Format(time.RFC3339),
		FinishedAt: report.FinishedAt.Format(time.RFC3339),
		Duration:   report.Duration().String(),
		Sources:    len(report.Results),
		Failures:   report.Failures(),
		Posts:      report.PostsWritten(),
		Results:    make([]sourceResultView, 0, len(report.Results)),
	}
	if report.Err != nil {
		view.Error = report.Err.Error()
	}

	for _, result := range report.Results {
		resultView := sourceResultView{
			Source:   result.Source,
			Kind:     string(result.Kind),
			Outcome:  string(result.Outcome),
			Posts:    len(result.Posts),
			Filtered: result.Filtered,
			Retries:  result.Retries,
			Duration: result.Duration.String(),
		}
		if result.Err != nil {
			resultView.Error = result.Err.Error()
			var sourceErr *source.Error
			if errors.As(result.Err, &sourceErr) {
				resultView.Error = sourceErr.Err.Error()
			}
		}
		view.Results = append(view.Results, resultView)
	}

	return view
}
