package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/adapter/deliveryapi"
	"github.com/polkiloo/deliverydesk/internal/adapter/events"
	"github.com/polkiloo/deliverydesk/internal/adapter/otpcache"
	"github.com/polkiloo/deliverydesk/internal/app"
	"github.com/polkiloo/deliverydesk/internal/clock"
	"github.com/polkiloo/deliverydesk/internal/config"
	"github.com/polkiloo/deliverydesk/internal/dialog"
	"github.com/polkiloo/deliverydesk/internal/logger"
	"github.com/polkiloo/deliverydesk/internal/metrics"
	"github.com/polkiloo/deliverydesk/internal/pkg/auth"
	"github.com/polkiloo/deliverydesk/internal/server/http/handlers"
	"github.com/polkiloo/deliverydesk/internal/server/http/router"
	"github.com/polkiloo/deliverydesk/internal/session"
	"github.com/polkiloo/deliverydesk/internal/storage/postgres"
	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// ConsoleModule composes the partner console process.
func ConsoleModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		clock.Module,
		metrics.Module,
		auth.ConsoleModule,
		deliveryapi.Module,
		session.Module,
		usecase.ConsoleModule,
		dialog.Module,
		router.ConsoleModule,
		app.ConsoleModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

// ServiceModule composes the delivery service process.
func ServiceModule(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.ServiceModule,
		logger.ServiceModule,
		clock.Module,
		metrics.Module,
		auth.ServiceModule,
		postgres.Module,
		otpcache.Module,
		events.Module,
		fx.Provide(
			func(h *auth.BcryptHasher) usecase.SecretHasher { return h },
			func(s *postgres.Storage) handlers.HealthChecker { return s },
		),
		usecase.ServiceModule,
		router.ServiceModule,
		app.ServiceModule,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
