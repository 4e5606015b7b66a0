package frontmatter

import (
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const fence = "---"

type Header struct {
	Title        string
	Date         string
	Author       string
	Tags         []string
	OriginalLink string
}

// Encode renders the canonical post layout: a fenced block with title, date,
// author, tags and original_link, followed directly by the body.
func Encode(h Header, body string) []byte {
	tags := make([]string, 0, len(h.Tags))
	for _, tag := range h.Tags {
		tags = append(tags, flowScalar(tag))
	}

	var b strings.Builder
	b.Grow(len(body) + 128)

	b.WriteString(fence + "\n")
	b.WriteString("title: " + quote(h.Title) + "\n")
	b.WriteString("date: " + h.Date + "\n")
	b.WriteString("author: " + blockScalar(h.Author) + "\n")
	b.WriteString("tags: [" + strings.Join(tags, ", ") + "]\n")
	b.WriteString("original_link: " + blockScalar(h.OriginalLink) + "\n")
	b.WriteString(fence + "\n")
	b.WriteString(body)

	return []byte(b.String())
}

// quote single-quotes s with ' doubled. Line breaks fold to spaces inside
// single quotes, so values containing them are double-quoted with escapes.
func quote(s string) string {
	if strings.ContainsAny(s, "\n\r") {
		return strconv.Quote(s)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func blockScalar(s string) string {
	if s == "" || !needsQuote(s, false) {
		return s
	}
	return quote(s)
}

func flowScalar(s string) string {
	if s == "" || needsQuote(s, true) {
		return quote(s)
	}
	return s
}

func needsQuote(s string, flow bool) bool {
	if strings.TrimSpace(s) != s || strings.ContainsAny(s, "\n\r\t") {
		return true
	}
	if strings.ContainsRune("-?:,[]{}#&*!|>'\"%@`", rune(s[0])) {
		return true
	}
	if strings.Contains(s, ": ") || strings.Contains(s, " #") || strings.HasSuffix(s, ":") {
		return true
	}
	if flow && strings.ContainsAny(s, ",[]{}") {
		return true
	}

	// Plain scalars such as null, 1e3 or true resolve to other types.
	var resolved any
	if err := yaml.Unmarshal([]byte(s), &resolved); err != nil {
		return true
	}
	str, ok := resolved.(string)
	return !ok || str != s
}
