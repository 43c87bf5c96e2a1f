package model

import "strings"

// DeliveryStatus describes the position of an order in the delivery lifecycle.
type DeliveryStatus string

const (
	StatusAssigned             DeliveryStatus = "assigned"
	StatusPickedUp             DeliveryStatus = "picked_up"
	StatusOutForDelivery       DeliveryStatus = "out_for_delivery"
	StatusDelivered            DeliveryStatus = "delivered"
	StatusFailedAttempt        DeliveryStatus = "failed_attempt"
	StatusFailedFinal          DeliveryStatus = "failed_final"
	StatusReturningToWarehouse DeliveryStatus = "returning_to_warehouse"
	StatusCancelled            DeliveryStatus = "cancelled"
)

// Statuses lists every recognized status in lifecycle order.
var Statuses = []DeliveryStatus{
	StatusAssigned,
	StatusPickedUp,
	StatusOutForDelivery,
	StatusDelivered,
	StatusFailedAttempt,
	StatusFailedFinal,
	StatusReturningToWarehouse,
	StatusCancelled,
}

// statusAliases maps loose upstream spellings onto canonical statuses.
var statusAliases = map[string]DeliveryStatus{
	"shipped":            StatusAssigned,
	"payment_successful": StatusAssigned,
	"processing":         StatusAssigned,
	"pickedup":           StatusPickedUp,
	"in_transit":         StatusOutForDelivery,
	"completed":          StatusDelivered,
	"failed":             StatusFailedAttempt,
	"returned":           StatusReturningToWarehouse,
	"returning":          StatusReturningToWarehouse,
	"canceled":           StatusCancelled,
}

// stage orders statuses for backward-move detection. Terminal variants share the last stage.
var stage = map[DeliveryStatus]int{
	StatusAssigned:             0,
	StatusPickedUp:             1,
	StatusOutForDelivery:       2,
	StatusFailedAttempt:        3,
	StatusDelivered:            4,
	StatusFailedFinal:          4,
	StatusReturningToWarehouse: 4,
	StatusCancelled:            4,
}

// ParseStatus resolves raw status text, including aliases, into a canonical status.
func ParseStatus(raw string) (DeliveryStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	status := DeliveryStatus(key)
	if _, ok := stage[status]; ok {
		return status, true
	}
	if alias, ok := statusAliases[key]; ok {
		return alias, true
	}
	return "", false
}

// Valid reports whether status is a member of the fixed status set.
func (s DeliveryStatus) Valid() bool {
	_, ok := stage[s]
	return ok
}

// Terminal reports whether no further workflow transitions are expected.
func (s DeliveryStatus) Terminal() bool {
	switch s {
	case StatusDelivered, StatusFailedFinal, StatusReturningToWarehouse, StatusCancelled:
		return true
	default:
		return false
	}
}

// Before reports whether s sits at an earlier lifecycle stage than other.
func (s DeliveryStatus) Before(other DeliveryStatus) bool {
	a, okA := stage[s]
	b, okB := stage[other]
	return okA && okB && a < b
}
