package config

import (
	"log/slog"
	"sync"
)

// Cache keeps the last valid project configuration so a long-running
// process can pick up edits without restarting.
type Cache struct {
	loader  *Loader
	project *Project
	mu      sync.RWMutex
}

func NewCache(loader *Loader) *Cache {
	return &Cache{loader: loader}
}

// Run loads the configuration. On failure the previously loaded project is
// kept and the error is returned.
func (c *Cache) Run() error {
	project, err := c.loader.Load()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.project = project
	c.mu.Unlock()

	slog.Debug("Configuration loaded", "path", c.loader.Path(), "blogs", len(project.Blogs), "filters", len(project.Filters))

	return nil
}

// GetProject returns the cached project, or nil if nothing loaded yet.
func (c *Cache) GetProject() *Project {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.project
}
