package usecase

import (
	"errors"
	"reflect"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

func missingOf(t *testing.T, err error) []string {
	t.Helper()
	var vErr *domainErrors.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return vErr.Missing
}

func TestValidatorRejectsUnknownStatus(t *testing.T) {
	_, err := NewValidator(false).Validate(model.StatusAssigned, "teleported", model.UpdateFields{})
	if !errors.Is(err, domainErrors.ErrUnknownStatus) {
		t.Fatalf("expected unknown status error, got %v", err)
	}
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("unknown status is a validation error, got %v", err)
	}
}

func TestValidatorDeliveredOTPFlag(t *testing.T) {
	decision, err := NewValidator(false).Validate(model.StatusOutForDelivery, "delivered", model.UpdateFields{})
	if err != nil {
		t.Fatalf("expected success without otp requirement, got %v", err)
	}
	if decision.Status != model.StatusDelivered {
		t.Fatalf("unexpected status %s", decision.Status)
	}

	_, err = NewValidator(true).Validate(model.StatusOutForDelivery, "delivered", model.UpdateFields{OTP: "  "})
	if got := missingOf(t, err); !reflect.DeepEqual(got, []string{"otp"}) {
		t.Fatalf("expected missing otp, got %v", got)
	}

	if _, err := NewValidator(true).Validate(model.StatusOutForDelivery, "delivered", model.UpdateFields{OTP: "4821"}); err != nil {
		t.Fatalf("expected success with otp, got %v", err)
	}
}

func TestValidatorRequiresNotesForFailures(t *testing.T) {
	for _, proposed := range []string{"failed_attempt", "returning_to_warehouse"} {
		t.Run(proposed, func(t *testing.T) {
			_, err := NewValidator(false).Validate(model.StatusOutForDelivery, proposed, model.UpdateFields{Notes: "\t"})
			if got := missingOf(t, err); !reflect.DeepEqual(got, []string{"notes"}) {
				t.Fatalf("expected missing notes, got %v", got)
			}
			if _, err := NewValidator(false).Validate(model.StatusOutForDelivery, proposed, model.UpdateFields{Notes: "customer absent"}); err != nil {
				t.Fatalf("expected success with notes, got %v", err)
			}
		})
	}
}

func TestValidatorAdvisesMissingETA(t *testing.T) {
	decision, err := NewValidator(false).Validate(model.StatusPickedUp, "out_for_delivery", model.UpdateFields{})
	if err != nil {
		t.Fatalf("missing eta must not block: %v", err)
	}
	if !decision.HasAdvisory(model.AdvisoryMissingETA) {
		t.Fatalf("expected missing eta advisory, got %v", decision.Advisories)
	}

	eta := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	decision, err = NewValidator(false).Validate(model.StatusPickedUp, "out_for_delivery", model.UpdateFields{EstimatedDelivery: &eta})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(decision.Advisories) != 0 {
		t.Fatalf("expected no advisories, got %v", decision.Advisories)
	}
}

func TestValidatorPermitsBackwardMovesWithAdvisory(t *testing.T) {
	decision, err := NewValidator(false).Validate(model.StatusDelivered, "assigned", model.UpdateFields{})
	if err != nil {
		t.Fatalf("backward move must be permitted: %v", err)
	}
	if !decision.HasAdvisory(model.AdvisoryBackwardMove) {
		t.Fatalf("expected backward move advisory, got %v", decision.Advisories)
	}

	eta := time.Date(2026, 5, 1, 15, 0, 0, 0, time.UTC)
	decision, err = NewValidator(false).Validate(model.StatusFailedAttempt, "out_for_delivery", model.UpdateFields{EstimatedDelivery: &eta})
	if err != nil {
		t.Fatalf("re-attempt must be permitted: %v", err)
	}
	if decision.HasAdvisory(model.AdvisoryBackwardMove) {
		t.Fatal("re-attempt after failed attempt is not a backward move")
	}
}

func TestValidatorAcceptsAliasesAndPlainStatuses(t *testing.T) {
	decision, err := NewValidator(false).Validate(model.StatusAssigned, "in_transit", model.UpdateFields{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Status != model.StatusOutForDelivery {
		t.Fatalf("expected alias to resolve, got %s", decision.Status)
	}

	for _, proposed := range []string{"assigned", "picked_up", "failed_final", "cancelled"} {
		if _, err := NewValidator(true).Validate(model.StatusAssigned, proposed, model.UpdateFields{}); err != nil {
			t.Fatalf("expected %s to be legal without extra fields, got %v", proposed, err)
		}
	}
}

func TestValidatorIsDeterministic(t *testing.T) {
	v := NewValidator(true)
	inputs := []struct {
		current  model.DeliveryStatus
		proposed string
		fields   model.UpdateFields
	}{
		{model.StatusOutForDelivery, "delivered", model.UpdateFields{}},
		{model.StatusOutForDelivery, "failed_attempt", model.UpdateFields{Notes: "gate locked"}},
		{model.StatusDelivered, "assigned", model.UpdateFields{}},
		{model.StatusAssigned, "nope", model.UpdateFields{}},
		{model.StatusPickedUp, "out_for_delivery", model.UpdateFields{}},
	}

	for _, in := range inputs {
		firstDecision, firstErr := v.Validate(in.current, in.proposed, in.fields)
		secondDecision, secondErr := v.Validate(in.current, in.proposed, in.fields)
		if !reflect.DeepEqual(firstDecision, secondDecision) || !reflect.DeepEqual(firstErr, secondErr) {
			t.Fatalf("validate not deterministic for %+v: %v/%v vs %v/%v", in, firstDecision, firstErr, secondDecision, secondErr)
		}
	}
}
