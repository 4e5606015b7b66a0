package render

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/lysyi3m/disc/app/feed"
	"github.com/lysyi3m/disc/app/frontmatter"
	"github.com/lysyi3m/disc/app/post"
)

const (
	PublicDir = "public"
	IndexHTML = "index.html"
	IndexFeed = "index.xml"
)

var ErrRenderFailed = errors.New("render failed")

type page struct {
	name string
	post post.Post
	html []byte
}

// Renderer turns the normalized post directory into a static HTML site.
type Renderer struct {
	markdown  goldmark.Markdown
	generator *feed.Generator
	channel   feed.Channel
}

func NewRenderer(channel feed.Channel) *Renderer {
	return &Renderer{
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Linkify),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		generator: feed.NewGenerator(),
		channel:   channel,
	}
}

// Run renders <projectRoot>/content/post/*.md into <projectRoot>/public and
// returns the public directory. Files that fail to decode are skipped.
func (r *Renderer) Run(projectRoot string) (string, error) {
	postsDir := filepath.Join(projectRoot, "content", "post")
	publicDir := filepath.Join(projectRoot, PublicDir)

	entries, err := os.ReadDir(postsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	if err := os.MkdirAll(publicDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	var pages []page
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}

		p, err := r.load(filepath.Join(postsDir, entry.Name()))
		if err != nil {
			slog.Warn("Skipping post", "file", entry.Name(), "error", err)
			continue
		}
		p.name = strings.TrimSuffix(entry.Name(), ".md")
		pages = append(pages, p)
	}

	slices.SortFunc(pages, func(a, b page) int {
		return cmp.Or(cmp.Compare(b.post.Date, a.post.Date), cmp.Compare(a.name, b.name))
	})

	for _, p := range pages {
		if err := r.writePage(publicDir, p); err != nil {
			return "", err
		}
	}

	if err := r.writeIndex(publicDir, pages); err != nil {
		return "", err
	}

	slog.Info("Site rendered", "public_dir", publicDir, "posts", len(pages))

	return publicDir, nil
}

func (r *Renderer) load(path string) (page, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return page{}, err
	}

	doc, err := frontmatter.Decode(raw)
	if err != nil {
		return page{}, err
	}

	var body bytes.Buffer
	if err := r.markdown.Convert([]byte(doc.Body), &body); err != nil {
		return page{}, fmt.Errorf("markdown convert: %w", err)
	}

	return page{
		post: post.Post{
			Title:        doc.String("title"),
			Date:         doc.String("date"),
			Author:       doc.String("author"),
			Tags:         doc.Strings("tags"),
			OriginalLink: doc.String("original_link"),
			Content:      body.String(),
		},
		html: body.Bytes(),
	}, nil
}

func (r *Renderer) writePage(publicDir string, p page) error {
	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:  p.post.Title,
		Date:   p.post.Date,
		Author: p.post.Author,
		Tags:   p.post.Tags,
		Body:   template.HTML(p.html),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRenderFailed, p.name, err)
	}

	return r.writeFile(filepath.Join(publicDir, p.name+".html"), buf.Bytes())
}

func (r *Renderer) writeIndex(publicDir string, pages []page) error {
	data := indexData{Title: cmp.Or(r.channel.Title, "disc")}
	posts := make([]post.Post, 0, len(pages))
	for _, p := range pages {
		data.Entries = append(data.Entries, indexEntry{Title: p.post.Title, Date: p.post.Date, Href: p.name + ".html"})
		posts = append(posts, p.post)
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("%w: index: %w", ErrRenderFailed, err)
	}
	if err := r.writeFile(filepath.Join(publicDir, IndexHTML), buf.Bytes()); err != nil {
		return err
	}

	rss, err := r.generator.Run(r.channel, posts)
	if err != nil {
		return fmt.Errorf("%w: feed: %w", ErrRenderFailed, err)
	}

	return r.writeFile(filepath.Join(publicDir, IndexFeed), []byte(rss))
}

func (r *Renderer) writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}
	return nil
}
