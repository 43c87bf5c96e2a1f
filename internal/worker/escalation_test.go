package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/polkiloo/deliverydesk/internal/clock"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
	testhelpers "github.com/polkiloo/deliverydesk/internal/test"
	"github.com/polkiloo/deliverydesk/internal/usecase"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

type escalatorStub struct {
	sync.Mutex
	Batches    [][]model.DeliveryRecord
	EscalateFn func(context.Context, model.DeliveryRecord) error
	Limits     []int
	Escalated  []string
}

func (s *escalatorStub) EscalationCandidates(_ context.Context, limit int) ([]model.DeliveryRecord, error) {
	s.Lock()
	defer s.Unlock()
	s.Limits = append(s.Limits, limit)
	if len(s.Batches) == 0 {
		return nil, nil
	}
	batch := s.Batches[0]
	s.Batches = s.Batches[1:]
	return batch, nil
}

func (s *escalatorStub) Escalate(ctx context.Context, record model.DeliveryRecord) error {
	if s.EscalateFn != nil {
		if err := s.EscalateFn(ctx, record); err != nil {
			return err
		}
	}
	s.Lock()
	defer s.Unlock()
	s.Escalated = append(s.Escalated, record.OrderID)
	return nil
}

func (s *escalatorStub) escalated() []string {
	s.Lock()
	defer s.Unlock()
	return append([]string(nil), s.Escalated...)
}

type observerStub struct {
	sync.Mutex
	ok, failed int
}

func (o *observerStub) ObserveEscalation(err error) {
	o.Lock()
	defer o.Unlock()
	if err != nil {
		o.failed++
		return
	}
	o.ok++
}

func (o *observerStub) counts() (int, int) {
	o.Lock()
	defer o.Unlock()
	return o.ok, o.failed
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for escalation")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestNewEscalationProcessorDefaults(t *testing.T) {
	proc := NewEscalationProcessor(&escalatorStub{}, nil, time.Second, 0, 0, discardLogger())
	if proc.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", proc.batchSize)
	}
	if proc.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", proc.workers)
	}
	if _, ok := proc.observer.(nopObserver); !ok {
		t.Fatalf("expected nop observer by default")
	}
}

func TestEscalationProcessorEscalatesBatches(t *testing.T) {
	escalator := &escalatorStub{Batches: [][]model.DeliveryRecord{
		{{OrderID: "A", Attempts: 3}, {OrderID: "B", Attempts: 4}},
		{{OrderID: "C", Attempts: 3}},
	}}
	observer := &observerStub{}
	proc := NewEscalationProcessor(escalator, observer, 5*time.Millisecond, 2, 2, discardLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	proc.Start(ctx)
	waitFor(t, time.Second, func() bool { return len(escalator.escalated()) == 3 })
	proc.Stop()

	if ok, failed := observer.counts(); ok != 3 || failed != 0 {
		t.Fatalf("unexpected observations ok=%d failed=%d", ok, failed)
	}
	escalator.Lock()
	defer escalator.Unlock()
	if escalator.Limits[0] != 2 {
		t.Fatalf("expected batch size passed as limit, got %d", escalator.Limits[0])
	}
}

func TestEscalationProcessorReportsFailures(t *testing.T) {
	escalator := &escalatorStub{
		Batches: [][]model.DeliveryRecord{{{OrderID: "A"}}},
		EscalateFn: func(context.Context, model.DeliveryRecord) error {
			return errors.New("db down")
		},
	}
	observer := &observerStub{}
	proc := NewEscalationProcessor(escalator, observer, 5*time.Millisecond, 1, 1, discardLogger())

	proc.Start(context.Background())
	waitFor(t, time.Second, func() bool {
		_, failed := observer.counts()
		return failed == 1
	})
	proc.Stop()

	if got := escalator.escalated(); len(got) != 0 {
		t.Fatalf("expected nothing escalated, got %v", got)
	}
}

func TestEscalationProcessorSkipsInFlightRecords(t *testing.T) {
	release := make(chan struct{})
	escalator := &escalatorStub{
		Batches: [][]model.DeliveryRecord{{{OrderID: "A"}}, {{OrderID: "A"}}, {{OrderID: "A"}}},
		EscalateFn: func(ctx context.Context, _ model.DeliveryRecord) error {
			select {
			case <-release:
			case <-ctx.Done():
			}
			return nil
		},
	}
	proc := NewEscalationProcessor(escalator, nil, 5*time.Millisecond, 1, 2, discardLogger())

	proc.Start(context.Background())
	waitFor(t, time.Second, func() bool {
		escalator.Lock()
		defer escalator.Unlock()
		return len(escalator.Batches) == 0
	})
	close(release)
	proc.Stop()

	if got := escalator.escalated(); len(got) != 1 {
		t.Fatalf("expected a single escalation for a record still in flight, got %v", got)
	}
}

func TestEscalationProcessorMovesExhaustedDeliveriesToFinal(t *testing.T) {
	repo := testhelpers.NewDeliveryRepositoryStub(
		model.DeliveryRecord{OrderID: "A", PartnerID: "p1", Status: model.StatusFailedAttempt, Attempts: 3},
		model.DeliveryRecord{OrderID: "B", PartnerID: "p1", Status: model.StatusFailedAttempt, Attempts: 1},
		model.DeliveryRecord{OrderID: "C", PartnerID: "p1", Status: model.StatusOutForDelivery, Attempts: 5},
	)
	events := &testhelpers.EventPublisherStub{}
	deliveries := usecase.NewDeliveryUseCase(repo, &testhelpers.OTPStoreStub{}, testhelpers.HasherStub{}, events,
		clock.NewFixed(time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)), usecase.DeliveryOptions{MaxAttempts: 3}, discardLogger())
	proc := NewEscalationProcessor(deliveries, nil, 5*time.Millisecond, 10, 1, discardLogger())

	proc.Start(context.Background())
	waitFor(t, time.Second, func() bool { return len(events.Published()) == 1 })
	proc.Stop()

	final, err := repo.Get(context.Background(), "A")
	if err != nil || final.Status != model.StatusFailedFinal || final.CompletedAt == nil {
		t.Fatalf("expected A escalated to failed_final, got %+v %v", final, err)
	}
	for _, id := range []string{"B", "C"} {
		record, _ := repo.Get(context.Background(), id)
		if record.Status == model.StatusFailedFinal {
			t.Fatalf("expected %s untouched, got %s", id, record.Status)
		}
	}
	if event := events.Published()[0]; event.OldStatus != model.StatusFailedAttempt || event.NewStatus != model.StatusFailedFinal {
		t.Fatalf("unexpected event %+v", event)
	}
}
