package auth

import (
	"github.com/polkiloo/deliverydesk/internal/config"
	"go.uber.org/fx"
)

// ConsoleModule provides partner token verification for the console.
var ConsoleModule = fx.Provide(newTokenStrategy)

// ServiceModule provides OTP hashing and service token checks for the delivery service.
var ServiceModule = fx.Provide(
	newOTPHasher,
	newServiceToken,
)

func newOTPHasher() *BcryptHasher {
	return NewBcryptHasher(0)
}

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.JWTSecret, Options{})
}

func newServiceToken(cfg *config.ServiceConfig) ServiceToken {
	return ServiceToken(cfg.ServiceToken)
}
