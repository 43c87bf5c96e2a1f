package test

import (
	"context"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// DeliveryRepositoryStub keeps deliveries in memory and applies updates the way storage does.
type DeliveryRepositoryStub struct {
	mu      sync.Mutex
	Records map[string]*model.DeliveryRecord
	Err     error

	UpdateFn func(context.Context, string, model.StatusUpdate) (*model.DeliveryRecord, error)
	Updates  []model.StatusUpdate
}

// NewDeliveryRepositoryStub seeds the stub with records.
func NewDeliveryRepositoryStub(records ...model.DeliveryRecord) *DeliveryRepositoryStub {
	s := &DeliveryRepositoryStub{Records: make(map[string]*model.DeliveryRecord)}
	for _, r := range records {
		record := r
		s.Records[r.OrderID] = &record
	}
	return s
}

// Assign stores record unless the order is already known.
func (s *DeliveryRepositoryStub) Assign(ctx context.Context, record model.DeliveryRecord) (*model.DeliveryRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	if s.Records == nil {
		s.Records = make(map[string]*model.DeliveryRecord)
	}
	if existing, ok := s.Records[record.OrderID]; ok {
		clone := *existing
		return &clone, false, nil
	}
	stored := record
	s.Records[record.OrderID] = &stored
	clone := stored
	return &clone, true, nil
}

// Get returns a copy of the stored record.
func (s *DeliveryRepositoryStub) Get(ctx context.Context, orderID string) (*model.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	record, ok := s.Records[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// ListAssigned returns the partner's non-terminal records.
func (s *DeliveryRepositoryStub) ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	return s.list(partnerID, func(r *model.DeliveryRecord) bool { return !r.Status.Terminal() })
}

// ListHistory returns the partner's terminal records.
func (s *DeliveryRepositoryStub) ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	return s.list(partnerID, func(r *model.DeliveryRecord) bool { return r.Status.Terminal() })
}

// UpdateStatus applies update, counting failed attempts and stamping completion.
func (s *DeliveryRepositoryStub) UpdateStatus(ctx context.Context, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, orderID, update)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	record, ok := s.Records[orderID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	s.Updates = append(s.Updates, update)
	record.Apply(update)
	clone := *record
	return &clone, nil
}

// EscalateStatus applies update only to failed attempts that reached maxAttempts.
func (s *DeliveryRepositoryStub) EscalateStatus(ctx context.Context, orderID string, maxAttempts int, update model.StatusUpdate) (*model.DeliveryRecord, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	record, ok := s.Records[orderID]
	if !ok {
		return nil, false, domainErrors.ErrNotFound
	}
	if record.Status != model.StatusFailedAttempt || record.Attempts < maxAttempts {
		clone := *record
		return &clone, false, nil
	}
	s.Updates = append(s.Updates, update)
	record.Apply(update)
	clone := *record
	return &clone, true, nil
}

// SelectForEscalation returns failed attempts that reached maxAttempts.
func (s *DeliveryRepositoryStub) SelectForEscalation(ctx context.Context, maxAttempts, limit int) ([]model.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.DeliveryRecord
	for _, r := range s.Records {
		if r.Status == model.StatusFailedAttempt && r.Attempts >= maxAttempts && len(out) < limit {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (s *DeliveryRepositoryStub) list(partnerID string, keep func(*model.DeliveryRecord) bool) ([]model.DeliveryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.DeliveryRecord
	for _, r := range s.Records {
		if r.PartnerID == partnerID && keep(r) {
			out = append(out, *r)
		}
	}
	return out, nil
}

// OTPStoreStub keeps OTP hashes in memory.
type OTPStoreStub struct {
	mu      sync.Mutex
	Hashes  map[string]string
	TTLs    map[string]time.Duration
	Deleted []string
	Err     error
}

// Save stores hash for orderID.
func (s *OTPStoreStub) Save(ctx context.Context, orderID, hash string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if s.Hashes == nil {
		s.Hashes = make(map[string]string)
		s.TTLs = make(map[string]time.Duration)
	}
	s.Hashes[orderID] = hash
	s.TTLs[orderID] = ttl
	return nil
}

// Get returns the stored hash or ErrNotFound.
func (s *OTPStoreStub) Get(ctx context.Context, orderID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	hash, ok := s.Hashes[orderID]
	if !ok {
		return "", domainErrors.ErrNotFound
	}
	return hash, nil
}

// Delete forgets the hash for orderID.
func (s *OTPStoreStub) Delete(ctx context.Context, orderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, orderID)
	delete(s.Hashes, orderID)
	return s.Err
}

// EventPublisherStub records published events.
type EventPublisherStub struct {
	mu     sync.Mutex
	Events []model.StatusChangedEvent
	Err    error
}

// PublishStatusChanged records event.
func (s *EventPublisherStub) PublishStatusChanged(ctx context.Context, event model.StatusChangedEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, event)
	return s.Err
}

// Published returns a copy of recorded events.
func (s *EventPublisherStub) Published() []model.StatusChangedEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.StatusChangedEvent(nil), s.Events...)
}
