// Package sqlite stores cache entries in an embedded SQLite file using the
// pure Go ncruces driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
)

// Storage is a repository.CacheBackend backed by SQLite.
type Storage struct {
	conn   *sql.DB
	logger *slog.Logger
}

// Open creates the database file and schema when missing.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Storage, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	// One connection serializes writes to the shared entry.
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping cache database: %w", err)
	}

	s := &Storage{conn: conn, logger: logger}
	if err := s.initSchema(ctx); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS cache_entries (
            key TEXT PRIMARY KEY,
            value BLOB NOT NULL,
            checksum BLOB,
            updated_at INTEGER NOT NULL
        )`,
	}
	for _, stmt := range statements {
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Get reads one entry.
func (s *Storage) Get(ctx context.Context, key string) (repository.CacheEntry, error) {
	const query = `SELECT value, checksum, updated_at FROM cache_entries WHERE key = ?`
	entry := repository.CacheEntry{Key: key}
	var updated int64
	err := s.conn.QueryRowContext(ctx, query, key).Scan(&entry.Value, &entry.Checksum, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.CacheEntry{}, domainErrors.ErrNotFound
		}
		return repository.CacheEntry{}, err
	}
	entry.UpdatedAt = time.UnixMilli(updated).UTC()
	return entry, nil
}

// Put replaces the entry in one statement.
func (s *Storage) Put(ctx context.Context, entry repository.CacheEntry) error {
	const query = `INSERT INTO cache_entries (key, value, checksum, updated_at) VALUES (?, ?, ?, ?)
                   ON CONFLICT (key) DO UPDATE SET value = excluded.value,
                       checksum = excluded.checksum, updated_at = excluded.updated_at`
	_, err := s.conn.ExecContext(ctx, query, entry.Key, entry.Value, entry.Checksum, entry.UpdatedAt.UnixMilli())
	return err
}

// Close releases the database handle.
func (s *Storage) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// HealthCheck verifies the database is still reachable.
func (s *Storage) HealthCheck(ctx context.Context) error {
	if s.conn == nil {
		return sql.ErrConnDone
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.conn.PingContext(ctx)
}
