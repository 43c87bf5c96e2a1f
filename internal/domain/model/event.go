package model

import "time"

// StatusChangedEvent is emitted by the delivery service after a status change is persisted.
type StatusChangedEvent struct {
	ID         string
	OrderID    string
	PartnerID  string
	OldStatus  DeliveryStatus
	NewStatus  DeliveryStatus
	ChangedBy  string
	OccurredAt time.Time
}
