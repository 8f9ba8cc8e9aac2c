package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	apperrors "github.com/vanisarees/storefront/pkg/errors"
)

// Storage implements repository.Storage with one JSON file per key. Writes go
// through a temp file and rename so a crash never leaves a torn value behind.
type Storage struct {
	dir string
}

// NewStorage creates the directory if needed and returns a file storage.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Path returns the file that holds key. Keys are query-escaped, so distinct
// keys always map to distinct files and never escape the directory.
func (s *Storage) Path(key string) string {
	return filepath.Join(s.dir, url.QueryEscape(key)+".json")
}

// Get reads the file for key.
func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, apperrors.NotFound("key", key)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

// Set atomically replaces the file for key.
func (s *Storage) Set(_ context.Context, key string, data []byte) error {
	if err := atomic.WriteFile(s.Path(key), bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Delete removes the file for key.
func (s *Storage) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
