package dialog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/usecase"
)

// State is the lifecycle position of a status update dialog.
type State string

const (
	StateClosed     State = "closed"
	StateOpen       State = "open"
	StateSubmitting State = "submitting"
)

const transportNotice = "Could not reach the delivery service. Your changes are kept, try again."

// Form holds the user's pending input.
type Form struct {
	Status            string
	Notes             string
	OTP               string
	Photo             string
	EstimatedDelivery *time.Time
}

// Patch carries optional form edits. Nil fields are left unchanged.
type Patch struct {
	Status            *string
	Notes             *string
	OTP               *string
	Photo             *string
	EstimatedDelivery *time.Time
	ClearEstimate     bool
}

// View is a snapshot of one dialog.
type View struct {
	OrderID    string
	State      State
	Form       Form
	Options    []model.DeliveryStatus
	FieldError string
	Notice     string
	Advisories []model.Advisory
}

// Submitter performs a validated status update for a partner.
type Submitter interface {
	UpdateStatus(ctx context.Context, partner usecase.Partner, orderID, proposed string, fields model.UpdateFields) (*usecase.UpdateResult, error)
}

type key struct {
	partnerID string
	orderID   string
}

type dialog struct {
	orderID    string
	state      State
	form       Form
	fieldError string
	notice     string
	advisories []model.Advisory
}

func (d *dialog) view() View {
	return View{
		OrderID:    d.orderID,
		State:      d.state,
		Form:       d.form,
		Options:    Options(),
		FieldError: d.fieldError,
		Notice:     d.notice,
		Advisories: append([]model.Advisory(nil), d.advisories...),
	}
}

// Coordinator owns every open status update dialog of the console.
// Each (partner, order) pair has at most one dialog and at most one submission in flight.
type Coordinator struct {
	submitter Submitter
	logger    *slog.Logger

	mu      sync.Mutex
	dialogs map[key]*dialog
	// inflight holds keys with a running submission, including ones whose dialog was closed.
	inflight map[key]struct{}
}

// NewCoordinator constructs Coordinator.
func NewCoordinator(submitter Submitter, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		submitter: submitter,
		logger:    logger,
		dialogs:   make(map[key]*dialog),
		inflight:  make(map[key]struct{}),
	}
}

// Options lists every status the dialog offers.
func Options() []model.DeliveryStatus {
	return append([]model.DeliveryStatus(nil), model.Statuses...)
}

// Open starts a dialog for orderID seeded from the partner's cached record.
// Opening an already open dialog returns it unchanged.
func (c *Coordinator) Open(partner usecase.Partner, orderID string) (View, error) {
	k := key{partnerID: partner.PartnerID(), orderID: orderID}

	c.mu.Lock()
	if d, ok := c.dialogs[k]; ok {
		v := d.view()
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	record, ok := partner.Lookup(orderID)
	if !ok {
		return View{}, domainErrors.ErrNotFound
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.dialogs[k]; ok {
		return d.view(), nil
	}
	d := &dialog{
		orderID: orderID,
		state:   StateOpen,
		form: Form{
			Status:            string(record.Status),
			EstimatedDelivery: record.EstimatedDelivery,
		},
	}
	c.dialogs[k] = d
	return d.view(), nil
}

// Get returns the current dialog for orderID, or a closed view.
func (c *Coordinator) Get(partnerID, orderID string) View {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.dialogs[key{partnerID: partnerID, orderID: orderID}]; ok {
		return d.view()
	}
	return View{OrderID: orderID, State: StateClosed, Options: Options()}
}

// Edit applies patch to an open dialog's form.
func (c *Coordinator) Edit(partnerID, orderID string, patch Patch) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.dialogs[key{partnerID: partnerID, orderID: orderID}]
	if !ok {
		return View{}, domainErrors.ErrDialogClosed
	}
	if d.state == StateSubmitting {
		return d.view(), domainErrors.ErrSubmissionInFlight
	}

	if patch.Status != nil {
		d.form.Status = *patch.Status
	}
	if patch.Notes != nil {
		d.form.Notes = *patch.Notes
	}
	if patch.OTP != nil {
		d.form.OTP = *patch.OTP
	}
	if patch.Photo != nil {
		d.form.Photo = *patch.Photo
	}
	if patch.ClearEstimate {
		d.form.EstimatedDelivery = nil
	} else if patch.EstimatedDelivery != nil {
		eta := *patch.EstimatedDelivery
		d.form.EstimatedDelivery = &eta
	}
	d.fieldError = ""
	return d.view(), nil
}

// DismissNotice clears a transport notice.
func (c *Coordinator) DismissNotice(partnerID, orderID string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.dialogs[key{partnerID: partnerID, orderID: orderID}]
	if !ok {
		return View{}, domainErrors.ErrDialogClosed
	}
	d.notice = ""
	return d.view(), nil
}

// Submit sends the dialog's form through the submitter.
// A validation failure keeps the dialog open with the first missing field flagged.
// A transport failure keeps it open with a notice. Success closes it.
// The returned error is the submitter's error, if any.
func (c *Coordinator) Submit(ctx context.Context, partner usecase.Partner, orderID string) (View, *usecase.UpdateResult, error) {
	k := key{partnerID: partner.PartnerID(), orderID: orderID}

	c.mu.Lock()
	d, ok := c.dialogs[k]
	if !ok {
		c.mu.Unlock()
		return View{}, nil, domainErrors.ErrDialogClosed
	}
	if _, busy := c.inflight[k]; busy || d.state == StateSubmitting {
		v := d.view()
		c.mu.Unlock()
		return v, nil, domainErrors.ErrSubmissionInFlight
	}
	c.inflight[k] = struct{}{}
	d.state = StateSubmitting
	d.fieldError = ""
	d.notice = ""
	form := d.form
	c.mu.Unlock()

	result, err := c.submitter.UpdateStatus(ctx, partner, orderID, form.Status, model.UpdateFields{
		Notes:             form.Notes,
		OTP:               form.OTP,
		Photo:             form.Photo,
		EstimatedDelivery: form.EstimatedDelivery,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, k)
	if current, ok := c.dialogs[k]; !ok || current != d {
		c.logger.Info("dialog closed during submission, result dropped",
			slog.String("partner", k.partnerID),
			slog.String("order", orderID),
		)
		return View{OrderID: orderID, State: StateClosed, Options: Options()}, result, err
	}

	if err == nil {
		delete(c.dialogs, k)
		d.state = StateClosed
		d.advisories = result.Advisories
		return d.view(), result, nil
	}

	d.state = StateOpen
	var vErr *domainErrors.ValidationError
	switch {
	case errors.As(err, &vErr):
		d.fieldError = vErr.FirstMissing()
		if vErr.Unknown {
			d.fieldError = "status"
		}
	case errors.Is(err, domainErrors.ErrInvalidOTP):
		d.fieldError = string(model.FieldOTP)
	case errors.Is(err, domainErrors.ErrTransport):
		d.notice = transportNotice
	default:
		d.notice = err.Error()
	}
	return d.view(), nil, err
}

// Close discards the dialog. An in-flight submission is not cancelled but its result is dropped.
func (c *Coordinator) Close(partnerID, orderID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.dialogs, key{partnerID: partnerID, orderID: orderID})
}
