package test

import (
	"context"
	"sync"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// DeliveryServiceStub emulates the remote delivery service for console tests.
type DeliveryServiceStub struct {
	Repo *DeliveryRepositoryStub

	mu          sync.Mutex
	UpdateErr   error
	ListErr     error
	UpdateCalls int
	ListCalls   int
}

// NewDeliveryServiceStub seeds the emulated service.
func NewDeliveryServiceStub(records ...model.DeliveryRecord) *DeliveryServiceStub {
	return &DeliveryServiceStub{Repo: NewDeliveryRepositoryStub(records...)}
}

// ListAssigned returns the partner's active deliveries.
func (s *DeliveryServiceStub) ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	if err := s.countList(); err != nil {
		return nil, err
	}
	return s.Repo.ListAssigned(ctx, partnerID)
}

// ListHistory returns the partner's completed deliveries.
func (s *DeliveryServiceStub) ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	if err := s.countList(); err != nil {
		return nil, err
	}
	return s.Repo.ListHistory(ctx, partnerID)
}

// UpdateStatus applies update when the order belongs to partnerID.
func (s *DeliveryServiceStub) UpdateStatus(ctx context.Context, partnerID, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error) {
	s.mu.Lock()
	s.UpdateCalls++
	err := s.UpdateErr
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	current, err := s.Repo.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.PartnerID != partnerID {
		return nil, domainErrors.ErrForbidden
	}
	return s.Repo.UpdateStatus(ctx, orderID, update)
}

// Calls reports the number of update and list calls so far.
func (s *DeliveryServiceStub) Calls() (updates, lists int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.UpdateCalls, s.ListCalls
}

func (s *DeliveryServiceStub) countList() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListCalls++
	return s.ListErr
}
