package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

const (
	// Exchange receives delivery lifecycle events.
	Exchange = "deliveries_topic"
	// StatusChangedKey is the routing key of status change events.
	StatusChangedKey = "delivery.status_changed"

	confirmTimeout = 5 * time.Second
	confirmBuffer  = 16
)

// ErrNacked is returned when the broker refuses a message.
var ErrNacked = errors.New("publish nacked by broker")

// channel is the subset of *amqp.Channel used by Publisher.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Confirm(noWait bool) error
	NotifyPublish(confirm chan amqp.Confirmation) chan amqp.Confirmation
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// message is the JSON body of a status change event.
type message struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	PartnerID  string    `json:"partner_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	ChangedBy  string    `json:"changed_by"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher sends status change events to RabbitMQ with publisher confirms.
type Publisher struct {
	ch   channel
	acks chan amqp.Confirmation

	mu sync.Mutex
	// seq mirrors the broker's delivery tags, which start at 1 once confirms are enabled.
	seq uint64
}

// NewPublisher declares the exchange and enables confirms on ch.
func NewPublisher(ch channel) (*Publisher, error) {
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	if err := ch.Confirm(false); err != nil {
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))
	return &Publisher{ch: ch, acks: acks}, nil
}

// PublishStatusChanged publishes event and waits for the broker's confirm.
func (p *Publisher) PublishStatusChanged(ctx context.Context, event model.StatusChangedEvent) error {
	body, err := json.Marshal(message{
		ID:         event.ID,
		OrderID:    event.OrderID,
		PartnerID:  event.PartnerID,
		OldStatus:  string(event.OldStatus),
		NewStatus:  string(event.NewStatus),
		ChangedBy:  event.ChangedBy,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	if err := p.ch.PublishWithContext(ctx, Exchange, StatusChangedKey, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    event.ID,
		Timestamp:    event.OccurredAt,
		Headers:      amqp.Table{"partner_id": event.PartnerID},
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	p.seq++

	for {
		select {
		case conf, ok := <-p.acks:
			if !ok {
				return errors.New("confirm channel closed")
			}
			if conf.DeliveryTag < p.seq {
				// late confirm of a publish that already timed out
				continue
			}
			if !conf.Ack {
				return ErrNacked
			}
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close closes the underlying channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}

// Nop drops events. It is used when AMQP_URL is empty.
type Nop struct {
	Logger *slog.Logger
}

// PublishStatusChanged logs and discards event.
func (n Nop) PublishStatusChanged(_ context.Context, event model.StatusChangedEvent) error {
	if n.Logger != nil {
		n.Logger.Debug("status change event dropped",
			slog.String("order", event.OrderID),
			slog.String("status", string(event.NewStatus)),
		)
	}
	return nil
}
