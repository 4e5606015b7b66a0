package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lysyi3m/disc/app/feed"
	"github.com/lysyi3m/disc/app/frontmatter"
	"github.com/lysyi3m/disc/app/gitsync"
	"github.com/lysyi3m/disc/app/post"
)

const (
	PostsDir     = "content/post"
	FeedSnapshot = "feed.xml"
)

type Syncer interface {
	Sync(ctx context.Context, remote, localPath string) (gitsync.Outcome, error)
}

type FeedFetcher interface {
	Fetch(ctx context.Context, id string) (*feed.Document, error)
}

type PostWriter interface {
	Write(outputDir string, p post.Post) (string, error)
}

// Result describes what one source contributed to the output directory.
type Result struct {
	Source    string
	Kind      Kind
	CachePath string
	Outcome   gitsync.Outcome
	Written   []WrittenPost
	Filtered  int
}

type WrittenPost struct {
	FileName string
	Post     post.Post
}

type Dispatcher struct {
	syncer   Syncer
	feeds    FeedFetcher
	writer   PostWriter
	filterer *post.Filterer
	cacheKey CacheKey
}

type Option func(*Dispatcher)

func WithFilterer(filterer *post.Filterer) Option {
	return func(d *Dispatcher) {
		d.filterer = filterer
	}
}

func WithCacheKey(key CacheKey) Option {
	return func(d *Dispatcher) {
		d.cacheKey = key
	}
}

func NewDispatcher(syncer Syncer, feeds FeedFetcher, writer PostWriter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		syncer:   syncer,
		feeds:    feeds,
		writer:   writer,
		cacheKey: CacheKeyReplace,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Process ingests id into outputDir. The first failing item stops the
// source; posts written before it stay on disk and are listed in the result.
func (d *Dispatcher) Process(ctx context.Context, outputDir, id string) (*Result, error) {
	kind, err := Classify(id)
	if err != nil {
		return nil, &Error{Source: id, Err: err}
	}

	result := &Result{
		Source:    id,
		Kind:      kind,
		CachePath: CachePath(outputDir, id, d.cacheKey),
	}

	if err := os.MkdirAll(result.CachePath, 0o755); err != nil {
		return result, &Error{Source: id, Err: fmt.Errorf("failed to create cache directory: %w", err)}
	}

	// On a read error the posts decoded before it are still written.
	var posts []post.Post
	var readErr error
	switch kind {
	case KindGit:
		posts, readErr = d.gitPosts(ctx, id, result)
	case KindFeed:
		posts, readErr = d.feedPosts(ctx, id, result)
	}

	for _, p := range posts {
		if filtered, reason := d.filterer.Run(p); filtered {
			result.Filtered++
			slog.Debug("Post filtered", "source", id, "title", p.Title, "reason", reason)
			continue
		}

		name, err := d.writer.Write(outputDir, p)
		if err != nil {
			return result, &Error{Source: id, Err: err}
		}
		result.Written = append(result.Written, WrittenPost{FileName: name, Post: p})
	}

	if readErr != nil {
		return result, &Error{Source: id, Err: readErr}
	}

	return result, nil
}

func (d *Dispatcher) gitPosts(ctx context.Context, id string, result *Result) ([]post.Post, error) {
	outcome, err := d.syncer.Sync(ctx, id, result.CachePath)
	if err != nil {
		return nil, err
	}
	result.Outcome = outcome

	dir := filepath.Join(result.CachePath, PostsDir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadFailed, err)
	}

	posts := make([]post.Post, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return posts, fmt.Errorf("%w: %s: %w", ErrReadFailed, entry.Name(), err)
		}

		doc, err := frontmatter.Decode(raw)
		if err != nil {
			return posts, fmt.Errorf("%s: %w", entry.Name(), err)
		}

		p, err := postFromDocument(doc, id)
		if err != nil {
			return posts, fmt.Errorf("%s: %w", entry.Name(), err)
		}
		posts = append(posts, p)
	}

	return posts, nil
}

func (d *Dispatcher) feedPosts(ctx context.Context, id string, result *Result) ([]post.Post, error) {
	doc, err := d.feeds.Fetch(ctx, id)
	if doc == nil {
		return nil, err
	}

	if writeErr := os.WriteFile(filepath.Join(result.CachePath, FeedSnapshot), doc.Raw, 0o644); writeErr != nil {
		slog.Warn("Failed to store feed snapshot", "source", id, "error", writeErr)
	}

	return doc.Posts, err
}

// postFromDocument maps a mirrored post onto the canonical form. Dates that
// are already YYYY-MM-DD pass through; timestamps are normalized.
func postFromDocument(doc *frontmatter.Document, id string) (post.Post, error) {
	date := doc.String("date")
	if _, err := time.Parse(feed.DateLayout, date); err != nil {
		normalized, err := feed.NormalizeDate(date)
		if err != nil {
			return post.Post{}, err
		}
		date = normalized
	}

	author := doc.String("author")
	if author == "" {
		author = id
	}

	return post.Post{
		Title:        doc.String("title"),
		Date:         date,
		Author:       author,
		Tags:         doc.Strings("tags"),
		OriginalLink: id,
		Content:      doc.Body,
	}, nil
}
