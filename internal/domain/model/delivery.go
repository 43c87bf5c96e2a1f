package model

import "time"

// Customer identifies who receives the order.
type Customer struct {
	Name    string
	Phone   string
	Address string
}

// Item is a single order line.
type Item struct {
	Name      string
	Quantity  int
	UnitPrice float64
}

// DeliveryRecord is the delivery state of one order as seen by a partner.
type DeliveryRecord struct {
	OrderID           string
	PartnerID         string
	Status            DeliveryStatus
	Customer          Customer
	Items             []Item
	PaymentMethod     string
	TotalAmount       float64
	Currency          string
	EstimatedDelivery *time.Time
	AssignedAt        time.Time
	CompletedAt       *time.Time
	Notes             string
	Attempts          int
	UpdatedAt         time.Time
}

// UpdateFields carries the data supplied alongside a proposed status.
type UpdateFields struct {
	Notes             string
	OTP               string
	Photo             string
	EstimatedDelivery *time.Time
}

// StatusUpdate is the payload submitted to the delivery service.
type StatusUpdate struct {
	Status            DeliveryStatus
	Notes             string
	OTP               string
	Photo             string
	EstimatedDelivery *time.Time
	UpdatedAt         time.Time
}

// Apply folds an accepted status update into the record. Entering failed_attempt
// counts an attempt, and completion time is stamped once when a terminal status is reached.
func (r *DeliveryRecord) Apply(update StatusUpdate) {
	if update.Status == StatusFailedAttempt && r.Status != StatusFailedAttempt {
		r.Attempts++
	}
	r.Status = update.Status
	if update.Notes != "" {
		r.Notes = update.Notes
	}
	if update.EstimatedDelivery != nil {
		eta := *update.EstimatedDelivery
		r.EstimatedDelivery = &eta
	}
	at := update.UpdatedAt
	if at.IsZero() {
		at = time.Now()
	}
	r.UpdatedAt = at
	if !update.Status.Terminal() {
		r.CompletedAt = nil
		return
	}
	if r.CompletedAt == nil {
		r.CompletedAt = &at
	}
}

// Field names a transition input that may be reported as missing.
type Field string

const (
	FieldNotes             Field = "notes"
	FieldOTP               Field = "otp"
	FieldPhoto             Field = "photo"
	FieldEstimatedDelivery Field = "estimated_delivery"
)

// Advisory is a non-blocking hint attached to an accepted transition.
type Advisory string

const (
	AdvisoryMissingETA   Advisory = "missing_eta"
	AdvisoryBackwardMove Advisory = "backward_move"
)
