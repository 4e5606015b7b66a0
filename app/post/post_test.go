package post

import (
	"errors"
	"testing"
)

func TestFileName(t *testing.T) {
	tests := []struct {
		date     string
		title    string
		expected string
	}{
		{"2021-09-01", "Cogito ergo sum", "2021-09-01-Cogito ergo sum.md"},
		{"2021-11-29", "Why ./ is better than \\", "2021-11-29-Why .- is better than \\.md"},
		{"2021-01-02", "a/b/c", "2021-01-02-a-b-c.md"},
		{"2021-01-02", "../../etc/passwd", "2021-01-02-..-..-etc-passwd.md"},
	}

	for _, tt := range tests {
		got := FileName(tt.date, tt.title)
		if got != tt.expected {
			t.Errorf("FileName(%q, %q): expected %q, got %q", tt.date, tt.title, tt.expected, got)
		}
	}
}

func TestFileName_NFC(t *testing.T) {
	decomposed := FileName("2021-09-01", "Cafe\u0301")
	composed := FileName("2021-09-01", "Caf\u00e9")

	if decomposed != composed {
		t.Errorf("Expected equivalent titles to share a file name, got %q and %q", decomposed, composed)
	}
}

func TestPost_Validate(t *testing.T) {
	valid := Post{Title: "T", Date: "2021-09-01", OriginalLink: "l"}
	if err := valid.Validate(); err != nil {
		t.Errorf("Expected valid post, got %v", err)
	}

	invalid := []Post{
		{Date: "2021-09-01", OriginalLink: "l"},
		{Title: "T", OriginalLink: "l"},
		{Title: "T", Date: "2021-09-01"},
	}
	for i, p := range invalid {
		if err := p.Validate(); !errors.Is(err, ErrInvalidPost) {
			t.Errorf("Post %d: expected ErrInvalidPost, got %v", i, err)
		}
	}
}
