package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
)

// pgxPool is the subset of *pgxpool.Pool used by Storage.
type pgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

var newPgxPool = func(ctx context.Context, cfg *pgxpool.Config) (pgxPool, error) {
	return pgxpool.NewWithConfig(ctx, cfg)
}

// Storage is a repository.CacheBackend backed by PostgreSQL.
type Storage struct {
	pool   pgxPool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pool, err := newPgxPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
            key TEXT PRIMARY KEY,
            value BYTEA NOT NULL,
            checksum BYTEA,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// Get reads one entry.
func (s *Storage) Get(ctx context.Context, key string) (repository.CacheEntry, error) {
	const query = `SELECT value, checksum, updated_at FROM cache_entries WHERE key=$1`
	entry := repository.CacheEntry{Key: key}
	err := s.pool.QueryRow(ctx, query, key).Scan(&entry.Value, &entry.Checksum, &entry.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.CacheEntry{}, domainErrors.ErrNotFound
		}
		return repository.CacheEntry{}, err
	}
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	return entry, nil
}

// Put upserts the entry.
func (s *Storage) Put(ctx context.Context, entry repository.CacheEntry) error {
	const query = `INSERT INTO cache_entries (key, value, checksum, updated_at) VALUES ($1, $2, $3, $4)
                   ON CONFLICT (key) DO UPDATE
                   SET value = EXCLUDED.value, checksum = EXCLUDED.checksum, updated_at = EXCLUDED.updated_at`
	_, err := s.pool.Exec(ctx, query, entry.Key, entry.Value, entry.Checksum, entry.UpdatedAt)
	return err
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
