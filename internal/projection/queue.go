package projection

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// Priority is derived from ETA proximity on every read and never persisted.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// HighPriorityWindow is the ETA distance under which a delivery becomes urgent.
const HighPriorityWindow = 24 * time.Hour

// PriorityOf returns high when the ETA is less than HighPriorityWindow away (or already past).
func PriorityOf(record model.DeliveryRecord, now time.Time) Priority {
	if record.EstimatedDelivery == nil {
		return PriorityNormal
	}
	if record.EstimatedDelivery.Sub(now) < HighPriorityWindow {
		return PriorityHigh
	}
	return PriorityNormal
}

// ParsePriority accepts "high", "normal" or empty (any).
func ParsePriority(raw string) (Priority, bool) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(raw))); p {
	case PriorityHigh, PriorityNormal, "":
		return p, true
	default:
		return "", false
	}
}

// AssignedSource fetches deliveries currently assigned to a partner.
type AssignedSource interface {
	ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
}

// QueueItem is a queued delivery with its computed priority.
type QueueItem struct {
	Record   model.DeliveryRecord
	Priority Priority
}

// QueueFilter narrows the queue view. Empty fields match everything.
type QueueFilter struct {
	Query    string
	Priority Priority
}

// Queue is the partner's assignment queue read cache, populated only by Refresh.
type Queue struct {
	partnerID string
	source    AssignedSource

	mu          sync.RWMutex
	records     []model.DeliveryRecord
	started     uint64
	applied     uint64
	refreshedAt time.Time
}

// NewQueue constructs an empty queue for partnerID.
func NewQueue(partnerID string, source AssignedSource) *Queue {
	return &Queue{partnerID: partnerID, source: source}
}

// Refresh re-fetches assigned deliveries. A slower, older refresh never overwrites a newer one.
func (q *Queue) Refresh(ctx context.Context) error {
	q.mu.Lock()
	q.started++
	seq := q.started
	q.mu.Unlock()

	records, err := q.source.ListAssigned(ctx, q.partnerID)
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if seq < q.applied {
		return nil
	}
	q.records = records
	q.applied = seq
	q.refreshedAt = time.Now()
	return nil
}

// List returns non-terminal deliveries matching filter, highest priority and earliest ETA first.
func (q *Queue) List(filter QueueFilter, now time.Time) []QueueItem {
	q.mu.RLock()
	defer q.mu.RUnlock()

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	items := make([]QueueItem, 0, len(q.records))
	for _, record := range q.records {
		if record.Status.Terminal() {
			continue
		}
		if query != "" && !matchesQuery(record, query) {
			continue
		}
		priority := PriorityOf(record, now)
		if filter.Priority != "" && filter.Priority != priority {
			continue
		}
		items = append(items, QueueItem{Record: record, Priority: priority})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Priority != b.Priority {
			return a.Priority == PriorityHigh
		}
		if !sameTime(a.Record.EstimatedDelivery, b.Record.EstimatedDelivery) {
			return etaBefore(a.Record.EstimatedDelivery, b.Record.EstimatedDelivery)
		}
		return a.Record.OrderID < b.Record.OrderID
	})
	return items
}

// Lookup returns the cached record for orderID.
func (q *Queue) Lookup(orderID string) (model.DeliveryRecord, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for _, record := range q.records {
		if record.OrderID == orderID {
			return record, true
		}
	}
	return model.DeliveryRecord{}, false
}

// RefreshedAt reports when the cache was last populated.
func (q *Queue) RefreshedAt() time.Time {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.refreshedAt
}

func matchesQuery(record model.DeliveryRecord, query string) bool {
	for _, field := range []string{record.OrderID, record.Customer.Name, record.Customer.Address} {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}
	return false
}

// etaBefore orders present ETAs ascending with missing ETAs last.
func etaBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}

func sameTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
