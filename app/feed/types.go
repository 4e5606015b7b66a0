package feed

import (
	"errors"
)

var (
	ErrFetchFailed           = errors.New("fetch failed")
	ErrReadFailed            = errors.New("read failed")
	ErrUnsupportedFeedFormat = errors.New("unsupported feed format")
	ErrMissingSummary        = errors.New("missing summary")
	ErrMissingDate           = errors.New("missing date")
	ErrMissingLink           = errors.New("missing link")
	ErrUnparsableDate        = errors.New("unparsable date")
)

type Dialect string

const (
	DialectAtom Dialect = "atom"
	DialectRSS  Dialect = "rss"
)

// Item is one entry of a parsed feed. Exactly one of Atom and RSS is set,
// matching Dialect. Empty strings mean the element was absent.
type Item struct {
	Dialect Dialect
	Atom    *AtomFields
	RSS     *RSSFields
}

type AtomFields struct {
	Title      string
	Summary    string
	Content    string
	Authors    []string
	Published  string
	Updated    string
	Links      []string
	Categories []string
}

type RSSFields struct {
	Title       string
	Description string
	Author      string
	PubDate     string
	Link        string
	Categories  []string
}
