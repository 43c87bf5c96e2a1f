package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/polkiloo/deliverydesk/internal/clock"
	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// DeliveryService is the remote collaborator that owns delivery records.
type DeliveryService interface {
	ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
	ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
	UpdateStatus(ctx context.Context, partnerID, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error)
}

// Partner is the session context a status update is performed for.
type Partner interface {
	PartnerID() string
	Lookup(orderID string) (model.DeliveryRecord, bool)
	Refresh(ctx context.Context) error
}

// Outcome labels reported to the recorder.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeTransport = "transport"
	OutcomeRejected  = "rejected"
)

// UpdateRecorder observes status update attempts.
type UpdateRecorder interface {
	ObserveStatusUpdate(status, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveStatusUpdate(string, string) {}

// UpdateResult is the reconciled state after an accepted status update.
type UpdateResult struct {
	Record     model.DeliveryRecord
	Advisories []model.Advisory
	Refreshed  bool
}

// StatusCommand validates and submits status updates, then re-fetches the partner's projections.
type StatusCommand struct {
	validator Validator
	service   DeliveryService
	clock     clock.Clock
	recorder  UpdateRecorder
	logger    *slog.Logger
}

// NewStatusCommand constructs StatusCommand. A nil recorder disables observation.
func NewStatusCommand(validator Validator, service DeliveryService, clk clock.Clock, recorder UpdateRecorder, logger *slog.Logger) *StatusCommand {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &StatusCommand{validator: validator, service: service, clock: clk, recorder: recorder, logger: logger}
}

// Validator returns the validator used before every submission.
func (c *StatusCommand) Validator() Validator {
	return c.validator
}

// UpdateStatus moves orderID to the proposed status on behalf of partner.
// Validation failures never reach the delivery service.
func (c *StatusCommand) UpdateStatus(ctx context.Context, partner Partner, orderID, proposed string, fields model.UpdateFields) (*UpdateResult, error) {
	var current model.DeliveryStatus
	if record, ok := partner.Lookup(orderID); ok {
		current = record.Status
	}

	decision, err := c.validator.Validate(current, proposed, fields)
	if err != nil {
		c.recorder.ObserveStatusUpdate(proposed, OutcomeInvalid)
		return nil, err
	}

	update := model.StatusUpdate{
		Status:            decision.Status,
		Notes:             fields.Notes,
		OTP:               fields.OTP,
		Photo:             fields.Photo,
		EstimatedDelivery: fields.EstimatedDelivery,
		UpdatedAt:         c.clock.Now(),
	}

	updated, err := c.service.UpdateStatus(ctx, partner.PartnerID(), orderID, update)
	if err != nil {
		outcome := OutcomeTransport
		if rejected(err) {
			outcome = OutcomeRejected
		} else {
			var tErr *domainErrors.TransportError
			if !errors.As(err, &tErr) {
				err = &domainErrors.TransportError{Op: "update status", Err: err}
			}
		}
		c.recorder.ObserveStatusUpdate(string(decision.Status), outcome)
		c.logger.Warn("status update failed",
			slog.String("partner", partner.PartnerID()),
			slog.String("order", orderID),
			slog.String("status", string(decision.Status)),
			slog.String("outcome", outcome),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	c.recorder.ObserveStatusUpdate(string(decision.Status), OutcomeOK)

	result := &UpdateResult{Record: *updated, Advisories: decision.Advisories}
	if err := partner.Refresh(ctx); err != nil {
		c.logger.Warn("projection refresh after update failed",
			slog.String("partner", partner.PartnerID()),
			slog.String("order", orderID),
			slog.String("error", err.Error()),
		)
		return result, nil
	}
	result.Refreshed = true
	if refreshed, ok := partner.Lookup(orderID); ok {
		result.Record = refreshed
	}
	return result, nil
}

// rejected reports whether the delivery service refused the update on its merits.
func rejected(err error) bool {
	var vErr *domainErrors.ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	for _, target := range []error{domainErrors.ErrForbidden, domainErrors.ErrNotFound, domainErrors.ErrInvalidOTP} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
