package cache

import (
	"context"
	"path/filepath"
	"testing"

	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/storage/sqlite"
)

func TestModuleSelectsBackend(t *testing.T) {
	cases := []struct {
		name  string
		dsn   string
		check func(t *testing.T, b repository.CacheBackend)
	}{
		{
			name: "memory",
			dsn:  "memory:",
			check: func(t *testing.T, b repository.CacheBackend) {
				if _, ok := b.(*MemoryBackend); !ok {
					t.Fatalf("expected memory backend, got %T", b)
				}
			},
		},
		{
			name: "sqlite",
			dsn:  filepath.Join(t.TempDir(), "cache.db"),
			check: func(t *testing.T, b repository.CacheBackend) {
				if _, ok := b.(*sqlite.Storage); !ok {
					t.Fatalf("expected sqlite backend, got %T", b)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var (
				backend repository.CacheBackend
				store   *Store
			)
			app := fx.New(
				fx.NopLogger,
				fx.Provide(func() context.Context { return context.Background() }),
				fx.Supply(&config.Config{CacheDSN: tc.dsn, CacheKey: "phoneNumbers"}),
				fx.Provide(testLogger),
				Module,
				fx.Populate(&backend, &store),
			)
			if err := app.Err(); err != nil {
				t.Fatalf("fx app failed: %v", err)
			}
			if err := app.Start(context.Background()); err != nil {
				t.Fatalf("start: %v", err)
			}
			t.Cleanup(func() { _ = app.Stop(context.Background()) })
			tc.check(t, backend)
			if store == nil || store.key != "phoneNumbers" {
				t.Fatalf("unexpected store %+v", store)
			}
		})
	}
}
