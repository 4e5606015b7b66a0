package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/disc/app/post"
)

var ErrInvalidConfig = errors.New("invalid config")

// Loader reads and validates a project configuration file.
type Loader struct {
	path string
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

func (l *Loader) Path() string {
	return l.path
}

func (l *Loader) Load() (*Project, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	project, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}

	return project, nil
}

func Parse(data []byte) (*Project, error) {
	var project Project
	if err := yaml.Unmarshal(data, &project); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidConfig, err)
	}

	if err := validate(&project); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &project, nil
}

func validate(project *Project) error {
	if project.Blogs == nil {
		return fmt.Errorf("blogs is required")
	}

	for i, blog := range project.Blogs {
		if strings.TrimSpace(blog) == "" {
			return fmt.Errorf("blog at index %d is empty", i)
		}
	}

	for i, filter := range project.Filters {
		if !slices.Contains(post.FilterFields, filter.Field) {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
