package model

import (
	"testing"
	"time"
)

func TestDeliveryStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   DeliveryStatus
		value string
	}{
		{"assigned", StatusAssigned, "assigned"},
		{"picked up", StatusPickedUp, "picked_up"},
		{"out for delivery", StatusOutForDelivery, "out_for_delivery"},
		{"delivered", StatusDelivered, "delivered"},
		{"failed attempt", StatusFailedAttempt, "failed_attempt"},
		{"failed final", StatusFailedFinal, "failed_final"},
		{"returning", StatusReturningToWarehouse, "returning_to_warehouse"},
		{"cancelled", StatusCancelled, "cancelled"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if string(tc.got) != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
			if !tc.got.Valid() {
				t.Fatalf("expected %s to be valid", tc.got)
			}
		})
	}
}

func TestParseStatusResolvesAliases(t *testing.T) {
	cases := []struct {
		raw  string
		want DeliveryStatus
	}{
		{"assigned", StatusAssigned},
		{"  Picked Up ", StatusPickedUp},
		{"OUT-FOR-DELIVERY", StatusOutForDelivery},
		{"shipped", StatusAssigned},
		{"payment_successful", StatusAssigned},
		{"in_transit", StatusOutForDelivery},
		{"completed", StatusDelivered},
		{"failed", StatusFailedAttempt},
		{"returned", StatusReturningToWarehouse},
		{"canceled", StatusCancelled},
	}

	for _, tc := range cases {
		got, ok := ParseStatus(tc.raw)
		if !ok {
			t.Fatalf("expected %q to parse", tc.raw)
		}
		if got != tc.want {
			t.Fatalf("parse %q: expected %s, got %s", tc.raw, tc.want, got)
		}
	}

	for _, raw := range []string{"", "lost", "delivered!"} {
		if _, ok := ParseStatus(raw); ok {
			t.Fatalf("expected %q to be rejected", raw)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	terminal := map[DeliveryStatus]bool{
		StatusDelivered:            true,
		StatusFailedFinal:          true,
		StatusReturningToWarehouse: true,
		StatusCancelled:            true,
	}
	for _, status := range Statuses {
		if status.Terminal() != terminal[status] {
			t.Fatalf("unexpected terminal flag for %s", status)
		}
	}
	if DeliveryStatus("unknown").Terminal() {
		t.Fatal("unknown status must not be terminal")
	}
}

func TestStatusBefore(t *testing.T) {
	if !StatusAssigned.Before(StatusOutForDelivery) {
		t.Fatal("assigned should precede out_for_delivery")
	}
	if StatusDelivered.Before(StatusAssigned) {
		t.Fatal("delivered should not precede assigned")
	}
	if StatusDelivered.Before(StatusCancelled) || StatusCancelled.Before(StatusDelivered) {
		t.Fatal("terminal statuses share a stage")
	}
	if DeliveryStatus("bogus").Before(StatusDelivered) {
		t.Fatal("unknown statuses are never ordered")
	}
}

func TestDeliveryRecordApply(t *testing.T) {
	at := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	eta := at.Add(3 * time.Hour)
	record := DeliveryRecord{OrderID: "A", Status: StatusOutForDelivery}

	record.Apply(StatusUpdate{Status: StatusFailedAttempt, Notes: "no answer", EstimatedDelivery: &eta, UpdatedAt: at})
	if record.Attempts != 1 || record.Notes != "no answer" || !record.EstimatedDelivery.Equal(eta) {
		t.Fatalf("unexpected record after failed attempt: %+v", record)
	}
	if record.CompletedAt != nil {
		t.Fatal("non-terminal status must not carry completion time")
	}

	record.Apply(StatusUpdate{Status: StatusFailedAttempt, UpdatedAt: at.Add(time.Minute)})
	if record.Attempts != 1 {
		t.Fatalf("staying in failed_attempt must not count again, got %d", record.Attempts)
	}
	if record.Notes != "no answer" {
		t.Fatal("empty notes must keep previous notes")
	}

	done := at.Add(time.Hour)
	record.Apply(StatusUpdate{Status: StatusDelivered, UpdatedAt: done})
	if record.CompletedAt == nil || !record.CompletedAt.Equal(done) {
		t.Fatalf("expected completion at %v, got %v", done, record.CompletedAt)
	}

	record.Apply(StatusUpdate{Status: StatusCancelled, UpdatedAt: done.Add(time.Hour)})
	if !record.CompletedAt.Equal(done) {
		t.Fatal("completion time must be stamped only once")
	}

	record.Apply(StatusUpdate{Status: StatusOutForDelivery, UpdatedAt: done.Add(2 * time.Hour)})
	if record.CompletedAt != nil {
		t.Fatal("reopening a delivery must clear completion time")
	}
}
