package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/adapter/remote"
	"github.com/polkiloo/phonetrack/internal/app"
	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/logger"
	"github.com/polkiloo/phonetrack/internal/metrics"
	"github.com/polkiloo/phonetrack/internal/server/http/handlers"
	"github.com/polkiloo/phonetrack/internal/server/http/router"
	"github.com/polkiloo/phonetrack/internal/storage/cache"
	"github.com/polkiloo/phonetrack/internal/usecase"
)

func infrastructure() []fx.Option {
	return []fx.Option{
		config.Module,
		logger.Module,
		metrics.Module,
		cache.Module,
		remote.Module,
		usecase.Module,
	}
}

// Core builds the tracker without the bridge server, for one-shot commands.
func Core(opts ...fx.Option) fx.Option {
	modules := append(infrastructure(), app.Core)
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// Module builds the full long-running graph: tracker, bridge API and refresher.
func Module(opts ...fx.Option) fx.Option {
	modules := append(infrastructure(),
		fx.Provide(
			func(t *app.Tracker) handlers.TrackerFacade { return t },
			func(b repository.CacheBackend) handlers.HealthChecker { return b },
		),
		router.Module,
		app.Module,
	)
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
