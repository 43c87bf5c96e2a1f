package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrValidation         = errors.New("validation failed")
	ErrUnknownStatus      = errors.New("unknown status")
	ErrInvalidOTP         = errors.New("invalid otp")
	ErrTransport          = errors.New("delivery service unavailable")
	ErrEmptyExport        = errors.New("nothing to export")
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrDialogClosed       = errors.New("dialog is closed")
	ErrUnavailable        = errors.New("dependency unavailable")
)

// ValidationError reports a proposed transition that cannot be submitted as-is.
type ValidationError struct {
	Status  string
	Missing []string
	Unknown bool
}

func (e *ValidationError) Error() string {
	if e.Unknown {
		return fmt.Sprintf("unknown status %q", e.Status)
	}
	return fmt.Sprintf("status %q requires %s", e.Status, strings.Join(e.Missing, ", "))
}

// Is matches ErrValidation and, for unrecognized statuses, ErrUnknownStatus.
func (e *ValidationError) Is(target error) bool {
	if target == ErrValidation {
		return true
	}
	return e.Unknown && target == ErrUnknownStatus
}

// FirstMissing returns the field shown inline by forms, or empty string.
func (e *ValidationError) FirstMissing() string {
	if len(e.Missing) == 0 {
		return ""
	}
	return e.Missing[0]
}

// TransportError wraps a failed call to the delivery service. The caller may resubmit.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: delivery service responded %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}

// Retryable reports whether resubmitting the same request may succeed.
func (e *TransportError) Retryable() bool {
	return true
}
