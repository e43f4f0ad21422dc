package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/usecase"
	"github.com/polkiloo/phonetrack/internal/worker"
)

// initialRefreshTimeout bounds the refresh kicked off right after start.
const initialRefreshTimeout = 30 * time.Second

// Core provides the tracker facade without any network listeners.
var Core = fx.Provide(
	func(e *usecase.Engine) Collection { return e },
	func(w *usecase.ImportWorkflow) Importer { return w },
	NewTracker,
)

// Module wires the bridge server, the periodic refresher and lifecycle hooks.
var Module = fx.Options(
	Core,
	fx.Provide(
		newHTTPServer,
		newRefresher,
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:              p.Config.ListenAddress,
		Handler:           p.Router,
		ReadHeaderTimeout: p.Config.RequestTimeout,
	}
}

type refresherParams struct {
	fx.In

	Collection Collection
	Config     *config.Config
	Logger     *slog.Logger
}

func newRefresher(p refresherParams) *worker.Refresher {
	return worker.NewRefresher(p.Collection, p.Config.RefreshInterval, p.Logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Refresher  *worker.Refresher
	Tracker    *Tracker
	Collection Collection
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	var (
		cancel context.CancelFunc
		wg     sync.WaitGroup
	)

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := p.Tracker.Start(ctx); err != nil {
				return err
			}
			p.Logger.Info("starting phonetrack",
				slog.String("addr", p.Server.Addr),
				slog.Duration("refresh_interval", p.Config.RefreshInterval))

			// Hook contexts end with startup, so background work gets its own.
			var runCtx context.Context
			runCtx, cancel = context.WithCancel(context.Background())

			wg.Add(1)
			go func() {
				defer wg.Done()
				refreshCtx, done := context.WithTimeout(runCtx, initialRefreshTimeout)
				defer done()
				if err := p.Collection.Refresh(refreshCtx); err != nil {
					p.Logger.Warn("initial refresh failed, serving cached list", slog.String("error", err.Error()))
				}
			}()
			p.Refresher.Start(runCtx)

			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cancel != nil {
				cancel()
			}
			p.Refresher.Stop()
			wg.Wait()

			shutdownCtx := ctx
			stop := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, stop = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer stop()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("phonetrack stopped")
			return nil
		},
	})
}
