package feed

import (
	"fmt"

	"github.com/lysyi3m/disc/app/post"
)

// Resolve applies the per-dialect fallback rules and returns the canonical
// post. source is used as the author when the item names none.
func (i Item) Resolve(source string) (post.Post, error) {
	switch i.Dialect {
	case DialectAtom:
		if i.Atom != nil {
			return i.Atom.resolve(source)
		}
	case DialectRSS:
		if i.RSS != nil {
			return i.RSS.resolve(source)
		}
	}
	return post.Post{}, fmt.Errorf("%w: item has no %q fields", ErrUnsupportedFeedFormat, i.Dialect)
}

func (f *AtomFields) resolve(source string) (post.Post, error) {
	var body string
	switch {
	case f.Summary != "":
		body = f.Summary
	case f.Content != "":
		body = f.Content
	default:
		return post.Post{}, fmt.Errorf("%w: entry %q", ErrMissingSummary, f.Title)
	}

	raw := f.Published
	if raw == "" {
		raw = f.Updated
	}
	if raw == "" {
		return post.Post{}, fmt.Errorf("%w: entry %q", ErrMissingDate, f.Title)
	}
	date, err := NormalizeDate(raw)
	if err != nil {
		return post.Post{}, err
	}

	if len(f.Links) == 0 {
		return post.Post{}, fmt.Errorf("%w: entry %q", ErrMissingLink, f.Title)
	}

	return post.Post{
		Title:        f.Title,
		Date:         date,
		Author:       lastOr(f.Authors, source),
		Tags:         lastTag(f.Categories),
		OriginalLink: f.Links[len(f.Links)-1],
		Content:      body,
	}, nil
}

func (f *RSSFields) resolve(source string) (post.Post, error) {
	if f.Description == "" {
		return post.Post{}, fmt.Errorf("%w: item %q", ErrMissingSummary, f.Title)
	}

	if f.PubDate == "" {
		return post.Post{}, fmt.Errorf("%w: item %q", ErrMissingDate, f.Title)
	}
	date, err := NormalizeDate(f.PubDate)
	if err != nil {
		return post.Post{}, err
	}

	if f.Link == "" {
		return post.Post{}, fmt.Errorf("%w: item %q", ErrMissingLink, f.Title)
	}

	author := f.Author
	if author == "" {
		author = source
	}

	return post.Post{
		Title:        f.Title,
		Date:         date,
		Author:       author,
		Tags:         lastTag(f.Categories),
		OriginalLink: f.Link,
		Content:      f.Description,
	}, nil
}

func lastOr(values []string, fallback string) string {
	if len(values) == 0 || values[len(values)-1] == "" {
		return fallback
	}
	return values[len(values)-1]
}

// lastTag keeps only the final category, as a single tag.
func lastTag(categories []string) []string {
	if len(categories) == 0 {
		return nil
	}
	return []string{categories[len(categories)-1]}
}
