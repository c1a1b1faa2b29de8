// Package fsblob is the filesystem blob adapter for local and dev targets.
package fsblob

import (
	"context"
	"os"
	"path/filepath"
)

// Store writes blobs under a root directory, one file per path.
type Store struct {
	root string
}

// New creates a Store rooted at dir.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{root: dir}, nil
}

// Put writes data to root/path, creating parent directories as needed.
// An existing file at the same path is overwritten.
func (s *Store) Put(_ context.Context, path string, data []byte) error {
	full := filepath.Join(s.root, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}
