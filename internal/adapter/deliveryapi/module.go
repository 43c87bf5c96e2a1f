package deliveryapi

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/config"
	"github.com/polkiloo/deliverydesk/internal/session"
	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// Module exposes the delivery service client to the console graph.
var Module = fx.Provide(
	newClient,
	func(c *HTTPClient) usecase.DeliveryService { return c },
	func(c *HTTPClient) session.Source { return c },
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (*HTTPClient, error) {
	return NewHTTPClient(p.Config.DeliveryServiceAddress, Options{
		Token:   p.Config.DeliveryServiceToken,
		Timeout: p.Config.RequestTimeout,
	}, p.Logger)
}
