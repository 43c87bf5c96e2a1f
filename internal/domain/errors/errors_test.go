package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
	}{
		{"not found", ErrNotFound},
		{"forbidden", ErrForbidden},
		{"validation", ErrValidation},
		{"unknown status", ErrUnknownStatus},
		{"invalid otp", ErrInvalidOTP},
		{"transport", ErrTransport},
		{"empty export", ErrEmptyExport},
		{"in flight", ErrSubmissionInFlight},
		{"dialog closed", ErrDialogClosed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !stdErrors.Is(tc.err, tc.err) {
				t.Fatalf("expected error to match itself: %v", tc.err)
			}
		})
	}
}

func TestValidationErrorMatching(t *testing.T) {
	missing := &ValidationError{Status: "failed_attempt", Missing: []string{"notes"}}
	if !stdErrors.Is(missing, ErrValidation) {
		t.Fatal("expected validation error to match ErrValidation")
	}
	if stdErrors.Is(missing, ErrUnknownStatus) {
		t.Fatal("missing-field error must not match ErrUnknownStatus")
	}
	if missing.FirstMissing() != "notes" {
		t.Fatalf("unexpected first missing %q", missing.FirstMissing())
	}
	if missing.Error() != `status "failed_attempt" requires notes` {
		t.Fatalf("unexpected message %q", missing.Error())
	}

	unknown := &ValidationError{Status: "lost", Unknown: true}
	wrapped := fmt.Errorf("submit: %w", unknown)
	if !stdErrors.Is(wrapped, ErrUnknownStatus) || !stdErrors.Is(wrapped, ErrValidation) {
		t.Fatal("expected wrapped unknown status to match both sentinels")
	}
	if unknown.FirstMissing() != "" {
		t.Fatal("unknown status has no missing fields")
	}

	var target *ValidationError
	if !stdErrors.As(wrapped, &target) || target.Status != "lost" {
		t.Fatalf("expected errors.As to extract validation error, got %v", target)
	}
}

func TestTransportErrorMatching(t *testing.T) {
	err := &TransportError{Op: "update status", StatusCode: 502, Err: stdErrors.New("bad gateway")}
	if !stdErrors.Is(err, ErrTransport) {
		t.Fatal("expected transport error to match ErrTransport")
	}
	if !err.Retryable() {
		t.Fatal("transport errors are retryable")
	}
	if err.Error() != "update status: delivery service responded 502: bad gateway" {
		t.Fatalf("unexpected message %q", err.Error())
	}

	notFound := &TransportError{Op: "update status", StatusCode: 404, Err: ErrNotFound}
	if !stdErrors.Is(notFound, ErrNotFound) {
		t.Fatal("expected wrapped cause to be reachable")
	}

	network := &TransportError{Op: "list assigned", Err: stdErrors.New("connection refused")}
	if network.Error() != "list assigned: connection refused" {
		t.Fatalf("unexpected message %q", network.Error())
	}
}
