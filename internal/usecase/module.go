package usecase

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/metrics"
	"github.com/polkiloo/phonetrack/internal/storage/cache"
)

// Module provides the reconciliation engine and the import workflow.
var Module = fx.Options(
	fx.Provide(
		newEngine,
		newImportWorkflow,
	),
	fx.Invoke(registerLifecycle),
)

// registerLifecycle closes the engine once everything that uses it has stopped.
func registerLifecycle(lc fx.Lifecycle, engine *Engine) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			engine.Close()
			return nil
		},
	})
}

type engineParams struct {
	fx.In

	Remote  repository.PhoneNumberRemote
	Cache   *cache.Store
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func newEngine(p engineParams) *Engine {
	return NewEngine(p.Remote, p.Cache, p.Logger, p.Metrics)
}

type importParams struct {
	fx.In

	Remote repository.ExtractionRemote
	Engine *Engine
	Config *config.Config
	Logger *slog.Logger
}

func newImportWorkflow(p importParams) *ImportWorkflow {
	return NewImportWorkflow(p.Remote, p.Engine, p.Config.UploadFileName, p.Logger)
}
