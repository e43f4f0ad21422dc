package cache

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
)

// MemoryBackend keeps entries in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]repository.CacheEntry
}

// NewMemoryBackend returns an empty backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]repository.CacheEntry)}
}

func (b *MemoryBackend) Get(ctx context.Context, key string) (repository.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return repository.CacheEntry{}, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	entry, ok := b.entries[key]
	if !ok {
		return repository.CacheEntry{}, domainErrors.ErrNotFound
	}
	return cloneEntry(entry), nil
}

func (b *MemoryBackend) Put(ctx context.Context, entry repository.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[entry.Key] = cloneEntry(entry)
	return nil
}

func (b *MemoryBackend) HealthCheck(ctx context.Context) error { return ctx.Err() }

func (b *MemoryBackend) Close() error { return nil }

func cloneEntry(e repository.CacheEntry) repository.CacheEntry {
	e.Value = append([]byte(nil), e.Value...)
	e.Checksum = append([]byte(nil), e.Checksum...)
	return e
}
