package repository

import (
	"context"
)

// Storage is the durable key-value contract behind the shopper collections.
// Each collection owns one key and stores its full serialized item sequence
// under it.
type Storage interface {
	// Get returns the raw value stored under key. A missing key yields an
	// error matching apperrors.ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set overwrites the value stored under key.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
