package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &LocalStorage{basePath: basePath}, nil
}

// Resolve accepts either an absolute path (the download agent records those)
// or a path relative to the media directory. Traversal outside the media
// directory is rejected for relative paths.
func (ls *LocalStorage) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty media path")
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		cleanPath := filepath.Clean(path)
		if strings.HasPrefix(cleanPath, "..") {
			return "", fmt.Errorf("invalid media path: %s", path)
		}
		fullPath = filepath.Join(ls.basePath, cleanPath)
	}

	info, err := os.Stat(fullPath)
	if err != nil {
		return "", fmt.Errorf("media file not found: %s", fullPath)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("media path is not a regular file: %s", fullPath)
	}

	return fullPath, nil
}
