package config

import (
	"github.com/lysyi3m/disc/app/post"
)

// Project is the disc.yaml file at the root of a project.
type Project struct {
	Blogs          []string      `yaml:"blogs"`
	Title          string        `yaml:"title"`
	BaseURL        string        `yaml:"base_url"`
	ExtractContent bool          `yaml:"extract_content"`
	Filters        []post.Filter `yaml:"filters"`
}
