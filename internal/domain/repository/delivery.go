package repository

import (
	"context"
	"time"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// DeliveryRepository describes persistence operations with delivery records.
type DeliveryRepository interface {
	Assign(ctx context.Context, record model.DeliveryRecord) (*model.DeliveryRecord, bool, error)
	Get(ctx context.Context, orderID string) (*model.DeliveryRecord, error)
	ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
	ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
	UpdateStatus(ctx context.Context, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error)
	SelectForEscalation(ctx context.Context, maxAttempts, limit int) ([]model.DeliveryRecord, error)
	// EscalateStatus applies update only while the order is still a failed attempt with at least
	// maxAttempts attempts. The bool reports whether the update was applied.
	EscalateStatus(ctx context.Context, orderID string, maxAttempts int, update model.StatusUpdate) (*model.DeliveryRecord, bool, error)
}

// OTPStore keeps hashed one-time codes issued for pending handovers.
type OTPStore interface {
	Save(ctx context.Context, orderID, hash string, ttl time.Duration) error
	Get(ctx context.Context, orderID string) (string, error)
	Delete(ctx context.Context, orderID string) error
}

// EventPublisher announces accepted status changes to downstream consumers.
type EventPublisher interface {
	PublishStatusChanged(ctx context.Context, event model.StatusChangedEvent) error
}
