package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes attachments into a directory on the local filesystem.
// The directory is expected to be served read-only at /uploads/.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the uploads directory if needed and returns the store.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir %s: %w", dir, err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory attachments are written into.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Write persists the attachment bytes under the generated name.
// Names containing path separators or traversal segments are rejected.
func (s *LocalStore) Write(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid attachment name %q", name)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment %s: %w", name, err)
	}

	return name, nil
}
