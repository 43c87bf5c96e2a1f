package dto

import (
	"time"

	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

// Customer is the recipient block of a delivery.
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address"`
}

// Item is a single order line.
type Item struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Delivery is the wire form of a delivery record shared by the service and the console.
type Delivery struct {
	OrderID           string     `json:"order_id"`
	PartnerID         string     `json:"partner_id"`
	Status            string     `json:"status"`
	Customer          Customer   `json:"customer"`
	Items             []Item     `json:"items,omitempty"`
	PaymentMethod     string     `json:"payment_method"`
	TotalAmount       float64    `json:"total_amount"`
	Currency          string     `json:"currency,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	AssignedAt        time.Time  `json:"assigned_at"`
	CompletedDate     *time.Time `json:"completed_date,omitempty"`
	Notes             string     `json:"notes,omitempty"`
	Attempts          int        `json:"attempts"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FromDelivery converts a domain record to its wire form.
func FromDelivery(r model.DeliveryRecord) Delivery {
	items := make([]Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, Item{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return Delivery{
		OrderID:           r.OrderID,
		PartnerID:         r.PartnerID,
		Status:            string(r.Status),
		Customer:          Customer{Name: r.Customer.Name, Phone: r.Customer.Phone, Address: r.Customer.Address},
		Items:             items,
		PaymentMethod:     r.PaymentMethod,
		TotalAmount:       r.TotalAmount,
		Currency:          r.Currency,
		EstimatedDelivery: r.EstimatedDelivery,
		AssignedAt:        r.AssignedAt,
		CompletedDate:     r.CompletedAt,
		Notes:             r.Notes,
		Attempts:          r.Attempts,
		UpdatedAt:         r.UpdatedAt,
	}
}

// FromDeliveries converts a slice of domain records.
func FromDeliveries(records []model.DeliveryRecord) []Delivery {
	out := make([]Delivery, 0, len(records))
	for _, r := range records {
		out = append(out, FromDelivery(r))
	}
	return out
}

// ToModel converts the wire form to a domain record.
// The status text goes through alias resolution; ok is false when it is not recognized.
func (d Delivery) ToModel() (model.DeliveryRecord, bool) {
	status, ok := model.ParseStatus(d.Status)
	if d.Status == "" {
		status, ok = model.StatusAssigned, true
	}
	items := make([]model.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, model.Item{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return model.DeliveryRecord{
		OrderID:           d.OrderID,
		PartnerID:         d.PartnerID,
		Status:            status,
		Customer:          model.Customer{Name: d.Customer.Name, Phone: d.Customer.Phone, Address: d.Customer.Address},
		Items:             items,
		PaymentMethod:     d.PaymentMethod,
		TotalAmount:       d.TotalAmount,
		Currency:          d.Currency,
		EstimatedDelivery: d.EstimatedDelivery,
		AssignedAt:        d.AssignedAt,
		CompletedAt:       d.CompletedDate,
		Notes:             d.Notes,
		Attempts:          d.Attempts,
		UpdatedAt:         d.UpdatedAt,
	}, ok
}

// StatusUpdateRequest is the PATCH body accepted by the delivery service.
type StatusUpdateRequest struct {
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	OTP               string     `json:"otp,omitempty"`
	Photo             string     `json:"photo,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// FromStatusUpdate converts a domain update to the PATCH body.
func FromStatusUpdate(u model.StatusUpdate) StatusUpdateRequest {
	return StatusUpdateRequest{
		Status:            string(u.Status),
		Notes:             u.Notes,
		OTP:               u.OTP,
		Photo:             u.Photo,
		EstimatedDelivery: u.EstimatedDelivery,
		UpdatedAt:         u.UpdatedAt,
	}
}

// ToModel converts the PATCH body to a domain update. The status is kept verbatim for validation.
func (r StatusUpdateRequest) ToModel() model.StatusUpdate {
	return model.StatusUpdate{
		Status:            model.DeliveryStatus(r.Status),
		Notes:             r.Notes,
		OTP:               r.OTP,
		Photo:             r.Photo,
		EstimatedDelivery: r.EstimatedDelivery,
		UpdatedAt:         r.UpdatedAt,
	}
}

// OTPResponse carries a freshly issued handover code.
type OTPResponse struct {
	OrderID string `json:"order_id"`
	OTP     string `json:"otp"`
}
