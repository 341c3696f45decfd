// Package store persists opaque values under logical key names. The rest of
// the application never sees which backend is in use.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no value is stored under a key.
var ErrNotFound = errors.New("key not found")

// KV is the persistence boundary: load, save and delete a value by name.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
