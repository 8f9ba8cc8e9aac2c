package memory

import (
	"context"
	"sync"

	apperrors "github.com/vanisarees/storefront/pkg/errors"
)

// Storage is an in-process implementation of repository.Storage. Values do
// not survive a restart; it backs development runs and tests.
type Storage struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty in-memory storage.
func New() *Storage {
	return &Storage{values: make(map[string][]byte)}
}

// Get returns a copy of the value stored under key.
func (s *Storage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, apperrors.NotFound("key", key)
	}
	return append([]byte(nil), v...), nil
}

// Set stores a copy of data under key.
func (s *Storage) Set(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), data...)
	return nil
}

// Delete removes key.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}
