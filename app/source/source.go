// Package source classifies blog identifiers and ingests one source into
// the output directory.
package source

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lysyi3m/disc/app/feed"
)

const CacheDirName = ".blogs"

var (
	ErrUnsupportedSourceKind = errors.New("unsupported source kind")
	ErrReadFailed            = errors.New("read failed")
)

type Kind string

const (
	KindGit  Kind = "git"
	KindFeed Kind = "feed"
)

// Classify decides the kind of id from its suffix alone.
func Classify(id string) (Kind, error) {
	switch {
	case strings.HasSuffix(id, ".git"):
		return KindGit, nil
	case strings.HasSuffix(id, ".xml"):
		return KindFeed, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedSourceKind, id)
	}
}

func IsRemote(id string) bool {
	return feed.IsRemote(id)
}

type CacheKey string

const (
	CacheKeyReplace CacheKey = "replace"
	CacheKeyHash    CacheKey = "hash"
)

func ParseCacheKey(s string) (CacheKey, error) {
	switch CacheKey(s) {
	case "", CacheKeyReplace:
		return CacheKeyReplace, nil
	case CacheKeyHash:
		return CacheKeyHash, nil
	default:
		return "", fmt.Errorf("unknown cache key strategy: %s", s)
	}
}

func CacheDir(outputDir string) string {
	return filepath.Join(outputDir, CacheDirName)
}

// CachePath is the per-source directory under the cache dir. With
// CacheKeyReplace the key is id with every "/" turned into "-", which can
// collide for distinct ids; CacheKeyHash uses the SHA-256 of id instead.
func CachePath(outputDir, id string, key CacheKey) string {
	var name string
	switch key {
	case CacheKeyHash:
		sum := sha256.Sum256([]byte(id))
		name = hex.EncodeToString(sum[:])
	default:
		name = strings.ReplaceAll(id, "/", "-")
	}
	return filepath.Join(CacheDir(outputDir), name)
}

// Error scopes a failure to the source it happened in.
type Error struct {
	Source string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
