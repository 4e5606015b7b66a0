package post

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

type Writer struct {
	perm os.FileMode
}

func NewWriter() *Writer {
	return &Writer{perm: 0o644}
}

// Write stores p under outputDir and returns the file name. An existing file
// with the same name is replaced; readers never observe a partial file.
func (w *Writer) Write(outputDir string, p Post) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	name := p.FileName()
	path := filepath.Join(outputDir, name)

	tmp, err := os.CreateTemp(outputDir, ".post-*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, name, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(p.Encode()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, name, err)
	}

	if err := os.Chmod(tmpPath, w.perm); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, name, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, name, err)
	}

	slog.Debug("Post written", "file", name, "link", p.OriginalLink)

	return name, nil
}
