package logger

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/config"
)

// Module wires slog logger for dependency injection.
var Module = fx.Provide(fromConfig)

func fromConfig(lc fx.Lifecycle, cfg *config.Config) (*slog.Logger, error) {
	l, closer, err := New(Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error { return closer.Close() },
	})
	return l, nil
}
