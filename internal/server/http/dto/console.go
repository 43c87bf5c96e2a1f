package dto

import "time"

// QueueItem is a queued delivery with its computed priority.
type QueueItem struct {
	Delivery
	Priority string `json:"priority"`
}

// QueueResponse is the assignment queue view.
type QueueResponse struct {
	Items       []QueueItem `json:"items"`
	RefreshedAt *time.Time  `json:"refreshed_at,omitempty"`
}

// HistoryEntry is a completed delivery with its display label.
type HistoryEntry struct {
	Delivery
	Label string `json:"label"`
}

// HistoryResponse is the history view.
type HistoryResponse struct {
	Items []HistoryEntry `json:"items"`
}

// StatusChangeRequest is the console's direct status update body.
type StatusChangeRequest struct {
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	OTP               string     `json:"otp,omitempty"`
	Photo             string     `json:"photo,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// StatusChangeResponse reports the reconciled record after an update.
type StatusChangeResponse struct {
	Delivery   Delivery `json:"delivery"`
	Advisories []string `json:"advisories,omitempty"`
	Refreshed  bool     `json:"refreshed"`
}

// DialogForm is the editable part of a dialog.
type DialogForm struct {
	Status            string     `json:"status"`
	Notes             string     `json:"notes,omitempty"`
	OTP               string     `json:"otp,omitempty"`
	Photo             string     `json:"photo,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

// DialogPatch edits a dialog form. Absent fields are unchanged.
type DialogPatch struct {
	Status            *string    `json:"status,omitempty"`
	Notes             *string    `json:"notes,omitempty"`
	OTP               *string    `json:"otp,omitempty"`
	Photo             *string    `json:"photo,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
	ClearEstimate     bool       `json:"clear_estimated_delivery,omitempty"`
	DismissNotice     bool       `json:"dismiss_notice,omitempty"`
}

// DialogResponse is a dialog snapshot.
type DialogResponse struct {
	OrderID    string     `json:"order_id"`
	State      string     `json:"state"`
	Form       DialogForm `json:"form"`
	Options    []string   `json:"options"`
	FieldError string     `json:"field_error,omitempty"`
	Notice     string     `json:"notice,omitempty"`
	Advisories []string   `json:"advisories,omitempty"`
	Delivery   *Delivery  `json:"delivery,omitempty"`
}
