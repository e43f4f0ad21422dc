package repository

import (
	"context"
	"time"
)

// CacheEntry is a single persisted value with its integrity digest.
type CacheEntry struct {
	Key       string
	Value     []byte
	Checksum  []byte
	UpdatedAt time.Time
}

// CacheBackend stores cache entries by key. Get returns errors.ErrNotFound
// for a key that was never written.
type CacheBackend interface {
	Get(ctx context.Context, key string) (CacheEntry, error)
	Put(ctx context.Context, entry CacheEntry) error
	HealthCheck(ctx context.Context) error
	Close() error
}
