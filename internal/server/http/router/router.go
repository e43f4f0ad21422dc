package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/metrics"
	"github.com/polkiloo/phonetrack/internal/server/http/handlers"
	"github.com/polkiloo/phonetrack/internal/server/http/middleware"
)

// Params are the router dependencies.
type Params struct {
	fx.In

	Facade  handlers.TrackerFacade
	Logger  *slog.Logger
	Metrics *metrics.Metrics       `optional:"true"`
	Health  handlers.HealthChecker `optional:"true"`
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.Metrics(p.Metrics))
	engine.Use(middleware.DecompressRequest())
	// The limit wraps the decompressed body.
	engine.Use(middleware.LimitBody(middleware.DefaultMaxBodyBytes))
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	engine.GET("/healthz", handlers.NewHealthHandler(p.Health).Check)
	engine.GET("/metrics", gin.WrapH(p.Metrics.Handler()))

	numbers := handlers.NewPhoneNumberHandler(p.Facade)
	imports := handlers.NewImportHandler(p.Facade)

	api := engine.Group("/api")

	phone := api.Group("/phone-numbers")
	phone.GET("", numbers.List)
	phone.POST("", numbers.Create)
	phone.POST("/refresh", numbers.Refresh)
	phone.POST("/bulk", numbers.Bulk)
	phone.GET("/:id", numbers.Get)
	phone.PATCH("/:id", numbers.Modify)
	phone.DELETE("/:id", numbers.Delete)
	phone.POST("/:id/used", numbers.MarkUsed)
	phone.POST("/:id/tried", numbers.MarkTried)

	imp := api.Group("/import")
	imp.GET("", imports.Status)
	imp.POST("/upload", imports.Upload)
	imp.POST("/review", imports.Review)
	imp.PUT("/candidates", imports.ReplaceCandidates)
	imp.DELETE("/candidates/:number", imports.RemoveCandidate)
	imp.POST("/confirm", imports.Confirm)
	imp.POST("/reset", imports.Reset)

	return engine
}
