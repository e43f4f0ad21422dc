package remote

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/phonetrack/internal/config"
	"github.com/polkiloo/phonetrack/internal/domain/repository"
	"github.com/polkiloo/phonetrack/internal/metrics"
)

// Module exposes the service client to the fx graph under both ports.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(
		func(c *HTTPClient) repository.PhoneNumberRemote { return c },
		func(c *HTTPClient) repository.ExtractionRemote { return c },
	),
)

type clientParams struct {
	fx.In

	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics `optional:"true"`
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(Options{
		BaseURL:    p.Config.ServerURL,
		Timeout:    p.Config.RequestTimeout,
		DeleteByID: p.Config.DeleteBy == config.DeleteByID,
	}, p.Logger, p.Metrics)
}
