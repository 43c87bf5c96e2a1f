package otpcache

import (
	"context"
	"log/slog"

	"github.com/go-redis/redis/v8"
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/config"
	"github.com/polkiloo/deliverydesk/internal/domain/repository"
)

// Module provides the OTP store for the delivery service.
var Module = fx.Provide(newOTPStore)

var dial = Dial

type storeParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.ServiceConfig
	Logger    *slog.Logger
}

func newOTPStore(p storeParams) (repository.OTPStore, error) {
	if p.Config.RedisURL == "" {
		p.Logger.Warn("REDIS_URL is empty, handover codes are disabled")
		return Disabled{}, nil
	}
	rdb, err := dial(context.Background(), p.Config.RedisURL)
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return rdb.Close()
		},
	})
	return NewStore(rdb), nil
}

var _ commander = (*redis.Client)(nil)
