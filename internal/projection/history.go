package projection

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// Label is the display vocabulary used by the history view.
type Label string

const (
	LabelDelivered      Label = "Delivered"
	LabelOutForDelivery Label = "Out for Delivery"
	LabelFailed         Label = "Failed"
	LabelPending        Label = "Pending"
)

// LabelOf maps any status text to a display label. Unrecognized input is Pending.
func LabelOf(raw string) Label {
	status, ok := model.ParseStatus(raw)
	if !ok {
		return LabelPending
	}
	switch status {
	case model.StatusDelivered:
		return LabelDelivered
	case model.StatusOutForDelivery:
		return LabelOutForDelivery
	case model.StatusFailedAttempt, model.StatusFailedFinal, model.StatusCancelled:
		return LabelFailed
	default:
		return LabelPending
	}
}

// ParseLabel accepts a label in any case, or empty/"all" for no label filter.
func ParseLabel(raw string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all":
		return "", true
	case "delivered":
		return LabelDelivered, true
	case "out for delivery", "out_for_delivery":
		return LabelOutForDelivery, true
	case "failed":
		return LabelFailed, true
	case "pending":
		return LabelPending, true
	default:
		return "", false
	}
}

// DateWindow buckets history by completion time.
type DateWindow string

const (
	WindowToday DateWindow = "today"
	WindowWeek  DateWindow = "week"
	WindowMonth DateWindow = "month"
	WindowAll   DateWindow = "all"
)

// ParseDateWindow resolves a window name; empty means all.
func ParseDateWindow(raw string) (DateWindow, bool) {
	switch w := DateWindow(strings.ToLower(strings.TrimSpace(raw))); w {
	case WindowToday, WindowWeek, WindowMonth, WindowAll:
		return w, true
	case "":
		return WindowAll, true
	default:
		return "", false
	}
}

// Contains reports whether a completion time falls inside the window ending at now.
// Records without a completion time only appear under WindowAll.
func (w DateWindow) Contains(completed *time.Time, now time.Time) bool {
	if w == WindowAll || w == "" {
		return true
	}
	if completed == nil {
		return false
	}
	var since time.Time
	switch w {
	case WindowToday:
		y, m, d := now.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case WindowWeek:
		since = now.AddDate(0, 0, -7)
	case WindowMonth:
		since = now.AddDate(0, -1, 0)
	default:
		return false
	}
	return !completed.Before(since)
}

// HistorySource fetches a partner's completed deliveries.
type HistorySource interface {
	ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error)
}

// HistoryFilter narrows the history view. Empty Label matches every label.
type HistoryFilter struct {
	Window DateWindow
	Label  Label
}

// HistoryEntry is a completed delivery with its display label.
type HistoryEntry struct {
	Record model.DeliveryRecord
	Label  Label
}

// History is the partner's completed-delivery read cache, populated only by Refresh.
type History struct {
	partnerID string
	source    HistorySource

	mu      sync.RWMutex
	records []model.DeliveryRecord
	started uint64
	applied uint64
}

// NewHistory constructs an empty history projection for partnerID.
func NewHistory(partnerID string, source HistorySource) *History {
	return &History{partnerID: partnerID, source: source}
}

// Refresh re-fetches delivery history.
func (h *History) Refresh(ctx context.Context) error {
	h.mu.Lock()
	h.started++
	seq := h.started
	h.mu.Unlock()

	records, err := h.source.ListHistory(ctx, h.partnerID)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if seq < h.applied {
		return nil
	}
	h.records = records
	h.applied = seq
	return nil
}

// List returns terminal deliveries matching filter, most recently completed first.
func (h *History) List(filter HistoryFilter, now time.Time) []HistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()

	entries := make([]HistoryEntry, 0, len(h.records))
	for _, record := range h.records {
		if !record.Status.Terminal() {
			continue
		}
		if !filter.Window.Contains(record.CompletedAt, now) {
			continue
		}
		label := LabelOf(string(record.Status))
		if filter.Label != "" && filter.Label != label {
			continue
		}
		entries = append(entries, HistoryEntry{Record: record, Label: label})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].Record.CompletedAt, entries[j].Record.CompletedAt
		if !sameTime(a, b) {
			return completedAfter(a, b)
		}
		return entries[i].Record.OrderID < entries[j].Record.OrderID
	})
	return entries
}

// Lookup returns the cached record for orderID.
func (h *History) Lookup(orderID string) (model.DeliveryRecord, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, record := range h.records {
		if record.OrderID == orderID {
			return record, true
		}
	}
	return model.DeliveryRecord{}, false
}

// completedAfter orders completion times descending with missing times last.
func completedAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
