package events

import (
	"context"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"

	"github.com/polkiloo/deliverydesk/internal/config"
	"github.com/polkiloo/deliverydesk/internal/domain/repository"
)

// Module provides the status change event publisher.
var Module = fx.Provide(newEventPublisher)

type connection interface {
	Channel() (*amqp.Channel, error)
	Close() error
}

var dialAMQP = func(url string) (connection, error) {
	return amqp.Dial(url)
}

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.ServiceConfig
	Logger    *slog.Logger
}

func newEventPublisher(p publisherParams) (repository.EventPublisher, error) {
	if p.Config.AMQPURL == "" {
		p.Logger.Warn("AMQP_URL is empty, status change events are not published")
		return Nop{Logger: p.Logger}, nil
	}
	conn, err := dialAMQP(p.Config.AMQPURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	publisher, err := NewPublisher(ch)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = publisher.Close()
			return conn.Close()
		},
	})
	return publisher, nil
}
