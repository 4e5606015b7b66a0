package feed

import (
	"bytes"
	"cmp"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/disc/app/post"
)

// Channel describes the aggregate feed written for a project.
type Channel struct {
	Title       string
	Link        string
	SelfLink    string
	Description string
	Version     string
}

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Run renders posts as an RSS 2.0 document. Posts are written in the given
// order.
func (g *Generator) Run(channel Channel, posts []post.Post) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", cmp.Or(channel.Title, "disc"), 4)
	g.writeElement(&buf, "link", channel.Link, 4)
	g.writeElement(&buf, "description", cmp.Or(channel.Description, "Posts aggregated by disc"), 4)

	if channel.SelfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(channel.SelfLink)))
	}

	lastBuildDate := time.Now().UTC()
	if len(posts) > 0 {
		if t, ok := g.parseDate(posts[0].Date); ok {
			lastBuildDate = t
		}
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("disc/%s", cmp.Or(channel.Version, "dev")), 4)

	for _, p := range posts {
		g.writeItem(&buf, p)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, p post.Post) {
	buf.WriteString("    <item>\n")

	if p.OriginalLink != "" {
		buf.WriteString(fmt.Sprintf("      <guid isPermaLink=\"%t\">", IsRemote(p.OriginalLink)))
		xml.EscapeText(buf, []byte(p.OriginalLink))
		buf.WriteString("</guid>\n")
	}

	g.writeElement(buf, "title", p.Title, 6)

	if IsRemote(p.OriginalLink) {
		g.writeElement(buf, "link", p.OriginalLink, 6)
	}

	g.writeElement(buf, "description", cmp.Or(p.Content, "No description available"), 6)

	if t, ok := g.parseDate(p.Date); ok {
		g.writeElement(buf, "pubDate", t.Format(time.RFC1123Z), 6)
	}

	g.writeElement(buf, "author", p.Author, 6)

	for _, tag := range p.Tags {
		g.writeElement(buf, "category", tag, 6)
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) parseDate(date string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
