package router

import (
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/pkg/auth"
	"github.com/polkiloo/deliverydesk/internal/server/http/handlers"
	"github.com/polkiloo/deliverydesk/internal/server/http/middleware"
	"github.com/polkiloo/deliverydesk/internal/session"
	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// ConsoleModule registers the partner console router.
var ConsoleModule = fx.Options(
	fx.Provide(
		func(s auth.Strategy) middleware.TokenParser { return s },
		func(r *session.Registry) handlers.Sessions { return r },
		func(c *usecase.StatusCommand) handlers.StatusUpdater { return c },
		SetupConsole,
	),
)

// ServiceModule registers the delivery service router.
var ServiceModule = fx.Options(
	fx.Provide(
		func(u *usecase.DeliveryUseCase) handlers.DeliveryBackend { return u },
		SetupService,
	),
)
