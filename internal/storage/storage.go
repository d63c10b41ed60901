package storage

import (
	"context"
	"errors"
)

// BlobStore is an opaque key-value store for whole named resources.
// Every Put replaces the previous contents of the key.
type BlobStore interface {
	// Get returns the full contents stored under key.
	// Returns ErrObjectNotFound when nothing has been stored yet.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores data under key, replacing any previous contents.
	Put(ctx context.Context, key string, data []byte) error
}

// Error constants for storage layer
var (
	ErrObjectNotFound = errors.New("object not found in storage")
)
