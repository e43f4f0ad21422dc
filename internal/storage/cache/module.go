package cache

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/metrics"
	"github.com/polkiloo/phonetrack/internal/storage/postgres"
	"github.com/polkiloo/phonetrack/internal/storage/sqlite"
)

// Module wires the configured cache backend and the Store on top of it.
var Module = fx.Options(
	fx.Provide(newBackend, newStore),
	fx.Invoke(registerLifecycle),
)

// BackendKind names a cache backend implementation.
type BackendKind string

const (
	BackendMemory   BackendKind = "memory"
	BackendPostgres BackendKind = "postgres"
	BackendSQLite   BackendKind = "sqlite"
)

const memoryDSN = "memory:"

// KindForDSN picks the backend for a cache location.
func KindForDSN(dsn string) BackendKind {
	switch {
	case dsn == memoryDSN:
		return BackendMemory
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return BackendPostgres
	default:
		return BackendSQLite
	}
}

type backendParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

func newBackend(p backendParams) (repository.CacheBackend, error) {
	kind := KindForDSN(p.Config.CacheDSN)
	p.Logger.Debug("opening cache backend", slog.String("backend", string(kind)))
	switch kind {
	case BackendMemory:
		return NewMemoryBackend(), nil
	case BackendPostgres:
		return postgres.New(p.Ctx, p.Config.CacheDSN, p.Logger)
	default:
		return sqlite.Open(p.Ctx, p.Config.CacheDSN, p.Logger)
	}
}

type storeParams struct {
	fx.In

	Backend repository.CacheBackend
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func newStore(p storeParams) *Store {
	return NewStore(p.Backend, p.Config.CacheKey, p.Logger, p.Metrics)
}

func registerLifecycle(lc fx.Lifecycle, backend repository.CacheBackend) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return backend.Close()
		},
	})
}
