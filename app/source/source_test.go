package source

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		id   string
		kind Kind
	}{
		{"git@github.com:example/blog.git", KindGit},
		{"https://github.com/example/blog.git", KindGit},
		{"/srv/mirrors/blog.git", KindGit},
		{"https://example.com/feed.xml", KindFeed},
		{"./example.rss.xml", KindFeed},
	}

	for _, tt := range tests {
		kind, err := Classify(tt.id)
		require.NoError(t, err, tt.id)
		assert.Equal(t, tt.kind, kind, tt.id)
	}
}

func TestClassify_Unsupported(t *testing.T) {
	for _, id := range []string{"http://example.com/file.txt", "https://example.com/feed", "blog.git.bak", ""} {
		_, err := Classify(id)
		assert.ErrorIs(t, err, ErrUnsupportedSourceKind, id)
	}
}

func TestCachePath(t *testing.T) {
	out := "/tmp/out"

	assert.Equal(t, filepath.Join(out, ".blogs", "https:--example.com-feed.xml"),
		CachePath(out, "https://example.com/feed.xml", CacheKeyReplace))

	// The replace strategy folds distinct identifiers onto one key.
	assert.Equal(t, CachePath(out, "a/b.xml", CacheKeyReplace), CachePath(out, "a-b.xml", CacheKeyReplace))

	hashed := CachePath(out, "a/b.xml", CacheKeyHash)
	assert.NotEqual(t, hashed, CachePath(out, "a-b.xml", CacheKeyHash))
	assert.Equal(t, filepath.Join(out, ".blogs"), filepath.Dir(hashed))
	assert.Len(t, filepath.Base(hashed), 64)
}

func TestParseCacheKey(t *testing.T) {
	key, err := ParseCacheKey("")
	require.NoError(t, err)
	assert.Equal(t, CacheKeyReplace, key)

	key, err = ParseCacheKey("hash")
	require.NoError(t, err)
	assert.Equal(t, CacheKeyHash, key)

	_, err = ParseCacheKey("md5")
	assert.Error(t, err)
}
