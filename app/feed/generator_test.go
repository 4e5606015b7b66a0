package feed

import (
	"strings"
	"testing"

	"github.com/lysyi3m/disc/app/post"
)

func TestGenerator_Run(t *testing.T) {
	generator := NewGenerator()

	posts := []post.Post{
		{
			Title:        "Cogito ergo sum",
			Date:         "2021-09-01",
			Author:       "Cicero",
			Tags:         []string{"b"},
			OriginalLink: "http://example.com/2021/09/01/lorem-ipsum/",
			Content:      "Lorem <b>ipsum</b>",
		},
		{
			Title:        "From git",
			Date:         "2020-02-02",
			OriginalLink: "git@example.com:blog.git",
		},
	}

	rss, err := generator.Run(Channel{Title: "Project", Link: "http://localhost/", Version: "1.0.0"}, posts)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	expected := []string{
		`<rss version="2.0"`,
		"<title>Project</title>",
		"<generator>disc/1.0.0</generator>",
		"<lastBuildDate>Wed, 01 Sep 2021 00:00:00 +0000</lastBuildDate>",
		`<guid isPermaLink="true">http://example.com/2021/09/01/lorem-ipsum/</guid>`,
		"<description>Lorem &lt;b&gt;ipsum&lt;/b&gt;</description>",
		"<pubDate>Wed, 01 Sep 2021 00:00:00 +0000</pubDate>",
		"<author>Cicero</author>",
		"<category>b</category>",
		`<guid isPermaLink="false">git@example.com:blog.git</guid>`,
		"<description>No description available</description>",
	}

	for _, s := range expected {
		if !strings.Contains(rss, s) {
			t.Errorf("Expected RSS to contain %q\n%s", s, rss)
		}
	}

	if strings.Contains(rss, "<link>git@example.com:blog.git</link>") {
		t.Errorf("Non-URL identifiers must not be written as links")
	}
}

func TestGenerator_Run_Empty(t *testing.T) {
	rss, err := NewGenerator().Run(Channel{}, nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !strings.Contains(rss, "<title>disc</title>") || strings.Contains(rss, "<item>") {
		t.Errorf("Unexpected empty feed:\n%s", rss)
	}
}
