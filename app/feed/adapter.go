package feed

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/lysyi3m/disc/app/post"
)

// Document is a fetched feed: the raw bytes and its items resolved to posts.
type Document struct {
	Raw   []byte
	Posts []post.Post
}

type Adapter struct {
	fetcher   *Fetcher
	parser    *Parser
	extractor *ContentExtractor
}

type AdapterOption func(*Adapter)

// WithContentExtraction replaces each post body with the readable article
// found at its link.
func WithContentExtraction(extractor *ContentExtractor) AdapterOption {
	return func(a *Adapter) {
		a.extractor = extractor
	}
}

func NewAdapter(fetcher *Fetcher, parser *Parser, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		fetcher: fetcher,
		parser:  parser,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Fetch retrieves and parses id. Items are resolved in document order; the
// first item that cannot be resolved stops resolution and the document is
// returned with the posts resolved before it.
func (a *Adapter) Fetch(ctx context.Context, id string) (*Document, error) {
	data, err := a.fetcher.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := a.parser.Run(data)
	if err != nil {
		return nil, err
	}

	posts := make([]post.Post, 0, len(items))
	for _, item := range items {
		p, err := item.Resolve(id)
		if err != nil {
			return &Document{Raw: data, Posts: posts}, err
		}

		if a.extractor != nil {
			a.extractContent(ctx, &p)
		}

		posts = append(posts, p)
	}

	slog.Debug("Feed parsed", "source", id, "items", len(posts))

	return &Document{Raw: data, Posts: posts}, nil
}

func (a *Adapter) extractContent(ctx context.Context, p *post.Post) {
	if !IsRemote(p.OriginalLink) {
		return
	}

	data, err := a.fetcher.Fetch(ctx, p.OriginalLink)
	if err != nil {
		slog.Warn("Content extraction skipped", "link", p.OriginalLink, "error", err)
		return
	}

	pageURL, _ := url.Parse(p.OriginalLink)

	content, err := a.extractor.Run(data, pageURL)
	if err != nil {
		slog.Warn("Content extraction failed", "link", p.OriginalLink, "error", err)
		return
	}

	p.Content = content
}
