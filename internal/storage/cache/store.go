package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/metrics"
)

// DefaultKey is the entry name holding the whole collection.
const DefaultKey = "phoneNumbers"

// Store persists the full collection as a single JSON array entry.
type Store struct {
	backend repository.CacheBackend
	key     string
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewStore wraps a backend. An empty key falls back to DefaultKey.
func NewStore(backend repository.CacheBackend, key string, logger *slog.Logger, m *metrics.Metrics) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{backend: backend, key: key, logger: logger, metrics: m, now: time.Now}
}

// Load returns the last saved collection. Any failure degrades to an empty
// collection and is logged, never returned.
func (s *Store) Load(ctx context.Context) []model.PhoneNumber {
	entry, err := s.backend.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			s.metrics.CacheLoad("miss")
			return []model.PhoneNumber{}
		}
		s.logger.Warn("cache read failed", slog.String("key", s.key), slog.String("error", err.Error()))
		s.metrics.CacheLoad("error")
		return []model.PhoneNumber{}
	}

	if len(entry.Checksum) > 0 && !bytes.Equal(entry.Checksum, Digest(entry.Value)) {
		s.logger.Warn("cache checksum mismatch", slog.String("key", s.key))
		s.metrics.CacheLoad("corrupt")
		return []model.PhoneNumber{}
	}

	var records []model.PhoneNumber
	if err := json.Unmarshal(entry.Value, &records); err != nil {
		s.logger.Warn("cache decode failed", slog.String("key", s.key), slog.String("error", err.Error()))
		s.metrics.CacheLoad("corrupt")
		return []model.PhoneNumber{}
	}
	if records == nil {
		records = []model.PhoneNumber{}
	}
	s.metrics.CacheLoad("hit")
	return records
}

// Save overwrites the entry with the given collection.
func (s *Store) Save(ctx context.Context, records []model.PhoneNumber) error {
	if records == nil {
		records = []model.PhoneNumber{}
	}
	value, err := json.Marshal(records)
	if err != nil {
		s.metrics.CacheWrite("error")
		s.logger.Warn("cache encode failed", slog.String("error", err.Error()))
		return fmt.Errorf("encode cache: %w", err)
	}

	entry := repository.CacheEntry{
		Key:       s.key,
		Value:     value,
		Checksum:  Digest(value),
		UpdatedAt: s.now().UTC(),
	}
	if err := s.backend.Put(ctx, entry); err != nil {
		s.metrics.CacheWrite("error")
		s.logger.Warn("cache write failed", slog.String("key", s.key), slog.String("error", err.Error()))
		return fmt.Errorf("write cache: %w", err)
	}
	s.metrics.CacheWrite("ok")
	s.logger.Debug("cache saved", slog.String("key", s.key), slog.Int("records", len(records)))
	return nil
}

// Digest returns the BLAKE2b-256 sum of value.
func Digest(value []byte) []byte {
	sum := blake2b.Sum256(value)
	return sum[:]
}
