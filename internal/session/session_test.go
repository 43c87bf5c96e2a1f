package session

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

type sourceStub struct {
	assigned   []model.DeliveryRecord
	history    []model.DeliveryRecord
	historyErr error
	calls      atomic.Int32
}

func (s *sourceStub) ListAssigned(context.Context, string) ([]model.DeliveryRecord, error) {
	s.calls.Add(1)
	return s.assigned, nil
}

func (s *sourceStub) ListHistory(context.Context, string) ([]model.DeliveryRecord, error) {
	s.calls.Add(1)
	return s.history, s.historyErr
}

func TestSessionLookupPrefersQueue(t *testing.T) {
	src := &sourceStub{
		assigned: []model.DeliveryRecord{{OrderID: "A", Status: model.StatusPickedUp}},
		history: []model.DeliveryRecord{
			{OrderID: "A", Status: model.StatusDelivered},
			{OrderID: "B", Status: model.StatusCancelled},
		},
	}
	s := New("p1", src)
	if s.PartnerID() != "p1" {
		t.Fatalf("unexpected partner id %q", s.PartnerID())
	}
	if _, ok := s.Lookup("A"); ok {
		t.Fatal("expected empty session before refresh")
	}
	if err := s.Refresh(context.Background()); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if src.calls.Load() != 2 {
		t.Fatalf("expected both projections fetched, got %d calls", src.calls.Load())
	}

	record, ok := s.Lookup("A")
	if !ok || record.Status != model.StatusPickedUp {
		t.Fatalf("expected queue record, got %+v ok=%v", record, ok)
	}
	record, ok = s.Lookup("B")
	if !ok || record.Status != model.StatusCancelled {
		t.Fatalf("expected history record, got %+v ok=%v", record, ok)
	}
}

func TestSessionRefreshJoinsErrors(t *testing.T) {
	boom := errors.New("history down")
	src := &sourceStub{
		assigned:   []model.DeliveryRecord{{OrderID: "A", Status: model.StatusAssigned}},
		historyErr: boom,
	}
	s := New("p1", src)
	err := s.Refresh(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected history error, got %v", err)
	}
	if _, ok := s.Queue().Lookup("A"); !ok {
		t.Fatal("expected queue refresh to succeed independently")
	}
}

func TestRegistryReusesSessions(t *testing.T) {
	r := NewRegistry(&sourceStub{})
	a := r.Get("p1")
	if r.Get("p1") != a {
		t.Fatal("expected same session for same partner")
	}
	if r.Get("p2") == a {
		t.Fatal("expected distinct session per partner")
	}
	if r.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", r.Len())
	}
}
