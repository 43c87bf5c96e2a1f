package session

import (
	"context"
	"errors"
	"sync"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/projection"
)

// Source fetches both projections' data for a partner.
type Source interface {
	projection.AssignedSource
	projection.HistorySource
}

// Session holds the per-partner read caches of the console.
type Session struct {
	partnerID string
	queue     *projection.Queue
	history   *projection.History
}

// New constructs an empty session for partnerID.
func New(partnerID string, source Source) *Session {
	return &Session{
		partnerID: partnerID,
		queue:     projection.NewQueue(partnerID, source),
		history:   projection.NewHistory(partnerID, source),
	}
}

// PartnerID returns the partner the session belongs to.
func (s *Session) PartnerID() string { return s.partnerID }

// Queue returns the assignment queue projection.
func (s *Session) Queue() *projection.Queue { return s.queue }

// History returns the history projection.
func (s *Session) History() *projection.History { return s.history }

// Lookup finds orderID in the queue first and then in history.
func (s *Session) Lookup(orderID string) (model.DeliveryRecord, bool) {
	if record, ok := s.queue.Lookup(orderID); ok {
		return record, true
	}
	return s.history.Lookup(orderID)
}

// Refresh re-fetches both projections concurrently and joins their errors.
func (s *Session) Refresh(ctx context.Context) error {
	var (
		wg         sync.WaitGroup
		queueErr   error
		historyErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		queueErr = s.queue.Refresh(ctx)
	}()
	go func() {
		defer wg.Done()
		historyErr = s.history.Refresh(ctx)
	}()
	wg.Wait()
	return errors.Join(queueErr, historyErr)
}

// Registry hands out one Session per partner.
type Registry struct {
	source Source

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry constructs an empty Registry backed by source.
func NewRegistry(source Source) *Registry {
	return &Registry{source: source, sessions: make(map[string]*Session)}
}

// Get returns the session for partnerID, creating an empty one on first use.
func (r *Registry) Get(partnerID string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[partnerID]
	if !ok {
		s = New(partnerID, r.source)
		r.sessions[partnerID] = s
	}
	return s
}

// Len reports the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
