package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

type Parser struct {
	atomParser *atom.Parser
	rssParser  *rss.Parser
}

func NewParser() *Parser {
	return &Parser{
		atomParser: &atom.Parser{},
		rssParser:  &rss.Parser{},
	}
}

// Run detects the dialect of data and returns its items in document order.
func (p *Parser) Run(data []byte) ([]Item, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		return p.parseAtom(data)
	case gofeed.FeedTypeRSS:
		return p.parseRSS(data)
	default:
		return nil, ErrUnsupportedFeedFormat
	}
}

func (p *Parser) parseAtom(data []byte) ([]Item, error) {
	feed, err := p.atomParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse atom feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		if entry == nil {
			continue
		}
		items = append(items, Item{Dialect: DialectAtom, Atom: p.normalizeEntry(entry)})
	}

	return items, nil
}

func (p *Parser) normalizeEntry(entry *atom.Entry) *AtomFields {
	fields := &AtomFields{
		Title:     strings.TrimSpace(entry.Title),
		Summary:   entry.Summary,
		Published: entry.Published,
		Updated:   entry.Updated,
	}

	if entry.Content != nil {
		fields.Content = entry.Content.Value
	}

	for _, author := range entry.Authors {
		if author != nil {
			fields.Authors = append(fields.Authors, strings.TrimSpace(author.Name))
		}
	}

	for _, link := range entry.Links {
		if link != nil && link.Href != "" {
			fields.Links = append(fields.Links, link.Href)
		}
	}

	for _, category := range entry.Categories {
		if category != nil && category.Term != "" {
			fields.Categories = append(fields.Categories, category.Term)
		}
	}

	return fields
}

func (p *Parser) parseRSS(data []byte) ([]Item, error) {
	feed, err := p.rssParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rss feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		items = append(items, Item{Dialect: DialectRSS, RSS: p.normalizeItem(item)})
	}

	return items, nil
}

func (p *Parser) normalizeItem(item *rss.Item) *RSSFields {
	fields := &RSSFields{
		Title:       strings.TrimSpace(item.Title),
		Description: item.Description,
		Author:      strings.TrimSpace(item.Author),
		PubDate:     item.PubDate,
		Link:        strings.TrimSpace(item.Link),
	}

	for _, category := range item.Categories {
		if category != nil && category.Value != "" {
			fields.Categories = append(fields.Categories, category.Value)
		}
	}

	return fields
}
