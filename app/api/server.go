package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// ServerOptions configures the optional surfaces of the status server.
type ServerOptions struct {
	APIAccessKey string
	PublicDir    string // served under /site when set
	Version      string
}

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler, opts ServerOptions) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
		SkipPaths: []string{"/health"},
	}))

	r.Use(gin.Recovery())

	setupRoutes(r, handler, opts)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, opts ServerOptions) {
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	api := r.Group("/api")
	if opts.APIAccessKey != "" {
		api.Use(authMiddleware(opts.APIAccessKey))
		slog.Info("API authentication enabled")
	}
	{
		api.GET("/sources", handler.APIListSources)
		api.GET("/sources/history", handler.APIGetSourceHistory)
		api.GET("/posts", handler.APIListPosts)
		api.POST("/runs", handler.APITriggerRun)
	}

	if opts.PublicDir != "" {
		r.Static("/site", opts.PublicDir)
	}

	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"health":  "/health",
			"stats":   "/stats",
			"sources": "/api/sources",
			"history": "/api/sources/history?source=<id>",
			"posts":   "/api/posts",
			"runs":    "/api/runs (POST)",
		}
		if opts.PublicDir != "" {
			endpoints["site"] = "/site/"
		}

		c.JSON(http.StatusOK, gin.H{
			"service":     "disc",
			"version":     opts.Version,
			"description": "Blog aggregator normalizing git and feed sources into Markdown posts",
			"endpoints":   endpoints,
			"api_status": map[string]interface{}{
				"auth_required": opts.APIAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
}

// authMiddleware creates authentication middleware for API endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
