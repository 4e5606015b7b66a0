package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

const ExcerptDelimiter = "<!--more-->"

var (
	ErrInvalidFrontMatter = errors.New("invalid front matter")
	ErrMissingField       = errors.New("missing field")
)

// RequiredFields must be present in every decoded document.
var RequiredFields = []string{"title", "date"}

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing field: %s", e.Field)
}

func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

type Document struct {
	Metadata   map[string]any
	Body       string
	Excerpt    string
	HasExcerpt bool
}

// Decode splits raw into its YAML metadata block and the body that follows
// the closing fence. The body is returned untouched.
func Decode(raw []byte) (*Document, error) {
	metadata := map[string]any{}

	body, err := frontmatter.MustParse(bytes.NewReader(raw), &metadata, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFrontMatter, err)
	}

	for _, field := range RequiredFields {
		if value, ok := metadata[field]; !ok || value == nil {
			return nil, &FieldError{Field: field}
		}
	}

	doc := &Document{
		Metadata: metadata,
		Body:     string(body),
	}

	if idx := strings.Index(doc.Body, ExcerptDelimiter); idx >= 0 {
		doc.Excerpt = strings.TrimSpace(doc.Body[:idx])
		doc.HasExcerpt = true
	}

	return doc, nil
}

// String returns the scalar stored under key, or "" when absent or null.
func (d *Document) String(key string) string {
	value, ok := d.Metadata[key]
	if !ok || value == nil {
		return ""
	}
	return scalar(value)
}

// Strings returns the list stored under key. A single scalar becomes a
// one-element list.
func (d *Document) Strings(key string) []string {
	value, ok := d.Metadata[key]
	if !ok || value == nil {
		return nil
	}

	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			out = append(out, scalar(item))
		}
		return out
	case []string:
		return append([]string(nil), v...)
	default:
		return []string{scalar(v)}
	}
}

// DateLayout is how a bare YAML date is rendered back to text.
const DateLayout = "2006-01-02"

// scalar renders a decoded YAML value as text. yaml.v3 resolves bare
// timestamps such as 2021-11-27 to time.Time; a midnight UTC value is a
// plain date and keeps its date form.
func scalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		if v.Location() == time.UTC && v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format(DateLayout)
		}
		return v.Format(time.RFC3339)
	default:
		return fmt.Sprint(value)
	}
}
