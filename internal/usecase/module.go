package usecase

import (
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/config"
)

// ConsoleModule provides the partner console's status update use cases.
var ConsoleModule = fx.Provide(
	func(cfg *config.Config) Validator { return NewValidator(cfg.RequireDeliveryOTP) },
	NewStatusCommand,
)

// ServiceModule provides the delivery service's use cases.
var ServiceModule = fx.Provide(
	func(cfg *config.ServiceConfig) DeliveryOptions {
		return DeliveryOptions{
			RequireOTP:  cfg.RequireDeliveryOTP,
			OTPTTL:      cfg.OTPTTL,
			MaxAttempts: cfg.MaxDeliveryAttempts,
		}
	},
	NewDeliveryUseCase,
)
