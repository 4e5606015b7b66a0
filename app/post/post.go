package post

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/disc/app/frontmatter"
)

var (
	ErrInvalidPost = errors.New("invalid post")
	ErrWriteFailed = errors.New("write failed")
)

// Post is the normalized form written to the output directory. Date is
// always YYYY-MM-DD.
type Post struct {
	Title        string
	Date         string
	Author       string
	Tags         []string
	OriginalLink string
	Content      string
}

func (p Post) Validate() error {
	switch {
	case p.Title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidPost)
	case p.Date == "":
		return fmt.Errorf("%w: date is required", ErrInvalidPost)
	case p.OriginalLink == "":
		return fmt.Errorf("%w: original link is required", ErrInvalidPost)
	}
	return nil
}

func (p Post) FileName() string {
	return FileName(p.Date, p.Title)
}

func (p Post) Header() frontmatter.Header {
	return frontmatter.Header{
		Title:        p.Title,
		Date:         p.Date,
		Author:       p.Author,
		Tags:         p.Tags,
		OriginalLink: p.OriginalLink,
	}
}

func (p Post) Encode() []byte {
	return frontmatter.Encode(p.Header(), p.Content)
}

// FileName derives "<date>-<title>.md". The result is NFC-normalized and
// every path separator is replaced with "-" so a title can never escape the
// output directory.
func FileName(date, title string) string {
	name := norm.NFC.String(fmt.Sprintf("%s-%s.md", date, title))
	return strings.ReplaceAll(name, "/", "-")
}
