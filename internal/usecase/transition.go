package usecase

import (
	"strings"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// Decision describes an accepted transition together with non-blocking advisories.
type Decision struct {
	Status     model.DeliveryStatus
	Advisories []model.Advisory
}

// HasAdvisory reports whether the decision carries the given advisory.
func (d Decision) HasAdvisory(a model.Advisory) bool {
	for _, got := range d.Advisories {
		if got == a {
			return true
		}
	}
	return false
}

// Validator decides whether a proposed status may be submitted with the supplied fields.
// It does not enforce ordering between recognized statuses.
type Validator struct {
	RequireOTP bool
}

// NewValidator constructs Validator with the OTP capability flag.
func NewValidator(requireOTP bool) Validator {
	return Validator{RequireOTP: requireOTP}
}

// Validate checks the proposed status and required fields. It performs no I/O.
func (v Validator) Validate(current model.DeliveryStatus, proposed string, fields model.UpdateFields) (Decision, error) {
	status, ok := model.ParseStatus(proposed)
	if !ok {
		return Decision{}, &domainErrors.ValidationError{Status: proposed, Unknown: true}
	}

	var missing []string
	switch status {
	case model.StatusDelivered:
		if v.RequireOTP && strings.TrimSpace(fields.OTP) == "" {
			missing = append(missing, string(model.FieldOTP))
		}
	case model.StatusFailedAttempt, model.StatusReturningToWarehouse:
		if strings.TrimSpace(fields.Notes) == "" {
			missing = append(missing, string(model.FieldNotes))
		}
	}
	if len(missing) > 0 {
		return Decision{}, &domainErrors.ValidationError{Status: string(status), Missing: missing}
	}

	decision := Decision{Status: status}
	if status == model.StatusOutForDelivery && fields.EstimatedDelivery == nil {
		decision.Advisories = append(decision.Advisories, model.AdvisoryMissingETA)
	}
	if status.Before(current) && !isReattempt(current, status) {
		decision.Advisories = append(decision.Advisories, model.AdvisoryBackwardMove)
	}
	return decision, nil
}

func isReattempt(current, proposed model.DeliveryStatus) bool {
	return current == model.StatusFailedAttempt && proposed == model.StatusOutForDelivery
}
