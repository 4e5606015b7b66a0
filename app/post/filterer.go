package post

import (
	"fmt"
	"strings"
)

// Filter drops posts by case-insensitive substring match on one field.
// Valid fields: title, content, author, link, tags.
type Filter struct {
	Field    string   `yaml:"field"`
	Includes []string `yaml:"includes"`
	Excludes []string `yaml:"excludes"`
}

var FilterFields = []string{"title", "content", "author", "link", "tags"}

type Filterer struct {
	filters []Filter
}

func NewFilterer(filters []Filter) *Filterer {
	return &Filterer{filters: filters}
}

// Run reports whether p is filtered out and why.
func (f *Filterer) Run(p Post) (bool, string) {
	if f == nil || len(f.filters) == 0 {
		return false, ""
	}
	return f.applyFilters(p)
}

func (f *Filterer) applyFilters(p Post) (bool, string) {
	for _, filter := range f.filters {
		value := f.getFieldValue(p, filter.Field)

		for _, exclude := range filter.Excludes {
			if f.matchesFilter(value, exclude) {
				return true, fmt.Sprintf("Excluded by %s filter: contains '%s'", filter.Field, exclude)
			}
		}

		if len(filter.Includes) > 0 {
			matched := false
			for _, include := range filter.Includes {
				if f.matchesFilter(value, include) {
					matched = true
					break
				}
			}
			if !matched {
				return true, fmt.Sprintf("Excluded by %s filter: does not contain any of %v", filter.Field, filter.Includes)
			}
		}
	}

	return false, ""
}

func (f *Filterer) matchesFilter(value, pattern string) bool {
	return strings.Contains(strings.ToLower(value), strings.ToLower(pattern))
}

func (f *Filterer) getFieldValue(p Post, field string) string {
	switch field {
	case "title":
		return p.Title
	case "content":
		return p.Content
	case "author":
		return p.Author
	case "link":
		return p.OriginalLink
	case "tags":
		return strings.Join(p.Tags, " ")
	default:
		return ""
	}
}
