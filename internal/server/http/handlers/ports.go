package handlers

import (
	"context"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/session"
	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// Sessions hands out the per-partner projection caches.
type Sessions interface {
	Get(partnerID string) *session.Session
}

// StatusUpdater validates and submits a status change for a partner.
type StatusUpdater interface {
	UpdateStatus(ctx context.Context, partner usecase.Partner, orderID, proposed string, fields model.UpdateFields) (*usecase.UpdateResult, error)
}

// ExportObserver is notified about every history export.
type ExportObserver interface {
	ObserveExport(rows int)
}

// DeliveryBackend is the delivery service's use case surface exposed over HTTP.
type DeliveryBackend interface {
	Assign(ctx context.Context, record model.DeliveryRecord) (*model.DeliveryRecord, bool, error)
	Assigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
	History(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
	UpdateStatus(ctx context.Context, partnerID, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error)
	IssueOTP(ctx context.Context, partnerID, orderID string) (string, error)
}

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
