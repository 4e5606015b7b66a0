package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	raw := []byte("---\ntitle: Hello\ndate: 2021-09-01\ntags: [go, git]\n---\nFirst line\n\nSecond line\n")

	doc, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "Hello", doc.String("title"))
	assert.Equal(t, "2021-09-01", doc.String("date"))
	assert.Equal(t, []string{"go", "git"}, doc.Strings("tags"))
	assert.Equal(t, "First line\n\nSecond line\n", doc.Body)
	assert.False(t, doc.HasExcerpt)
}

func TestDecode_Accessors(t *testing.T) {
	raw := []byte("---\ntitle: 42\ndate: 2021-09-01\nauthor:\ntags: solo\n---\n")

	doc, err := Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "42", doc.String("title"))
	assert.Equal(t, "", doc.String("author"))
	assert.Equal(t, "", doc.String("missing"))
	assert.Equal(t, []string{"solo"}, doc.Strings("tags"))
	assert.Nil(t, doc.Strings("missing"))
}

func TestDecode_Excerpt(t *testing.T) {
	raw := []byte("---\ntitle: Hello\ndate: 2021-09-01\n---\nIntro text\n<!--more-->\nRest\n")

	doc, err := Decode(raw)
	require.NoError(t, err)

	assert.True(t, doc.HasExcerpt)
	assert.Equal(t, "Intro text", doc.Excerpt)
	assert.Equal(t, "Intro text\n<!--more-->\nRest\n", doc.Body)
}

func TestDecode_NoFrontMatter(t *testing.T) {
	_, err := Decode([]byte("just some markdown\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFrontMatter)
}

func TestDecode_UnclosedFence(t *testing.T) {
	_, err := Decode([]byte("---\ntitle: Hello\ndate: 2021-09-01\nbody without closing fence\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFrontMatter)
}

func TestDecode_MalformedYAML(t *testing.T) {
	_, err := Decode([]byte("---\ntitle: [unterminated\ndate: 2021-09-01\n---\nbody\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidFrontMatter)
}

func TestDecode_MissingField(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{name: "missing title", raw: "---\ndate: 2021-09-01\n---\nbody", field: "title"},
		{name: "missing date", raw: "---\ntitle: Hello\n---\nbody", field: "date"},
		{name: "null date", raw: "---\ntitle: Hello\ndate:\n---\nbody", field: "date"},
		{name: "empty block", raw: "---\n---\nbody", field: "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingField)

			var fieldErr *FieldError
			require.True(t, errors.As(err, &fieldErr))
			assert.Equal(t, tt.field, fieldErr.Field)
		})
	}
}

func TestDecode_Timestamps(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{name: "bare date", raw: "date: 2021-11-27", want: "2021-11-27"},
		{name: "quoted date", raw: "date: '2021-11-27'", want: "2021-11-27"},
		{name: "timestamp with offset", raw: "date: 2021-11-27T22:30:00+02:00", want: "2021-11-27T22:30:00+02:00"},
		{name: "utc timestamp", raw: "date: 2021-11-27T10:15:00Z", want: "2021-11-27T10:15:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte("---\ntitle: Hello\n" + tt.raw + "\n---\nbody"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.String("date"))
		})
	}
}

func TestDecode_TimestampInList(t *testing.T) {
	doc, err := Decode([]byte("---\ntitle: Hello\ndate: 2021-11-27\ntags: [2020-01-01, go]\n---\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"2020-01-01", "go"}, doc.Strings("tags"))
}
