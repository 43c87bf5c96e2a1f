package usecase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/polkiloo/deliverydesk/internal/clock"
	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/domain/repository"
)

const (
	otpDigits        = 6
	escalationNote   = "maximum delivery attempts reached"
	escalationActor  = "escalation"
	defaultOTPTTL    = 15 * time.Minute
	defaultAttempts  = 3
	otpDigitAlphabet = "0123456789"
)

// SecretHasher hashes and verifies short secrets such as handover codes.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Compare(hash string, secret string) error
}

// DeliveryOptions tunes server-side delivery rules.
type DeliveryOptions struct {
	RequireOTP  bool
	OTPTTL      time.Duration
	MaxAttempts int
}

// DeliveryUseCase implements the delivery service side of the status protocol.
type DeliveryUseCase struct {
	deliveries repository.DeliveryRepository
	otps       repository.OTPStore
	hasher     SecretHasher
	events     repository.EventPublisher
	validator  Validator
	clock      clock.Clock
	otpTTL     time.Duration
	attempts   int
	logger     *slog.Logger
}

// NewDeliveryUseCase constructs DeliveryUseCase.
func NewDeliveryUseCase(
	deliveries repository.DeliveryRepository,
	otps repository.OTPStore,
	hasher SecretHasher,
	events repository.EventPublisher,
	clk clock.Clock,
	opts DeliveryOptions,
	logger *slog.Logger,
) *DeliveryUseCase {
	if opts.OTPTTL <= 0 {
		opts.OTPTTL = defaultOTPTTL
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultAttempts
	}
	return &DeliveryUseCase{
		deliveries: deliveries,
		otps:       otps,
		hasher:     hasher,
		events:     events,
		validator:  NewValidator(opts.RequireOTP),
		clock:      clk,
		otpTTL:     opts.OTPTTL,
		attempts:   opts.MaxAttempts,
		logger:     logger,
	}
}

// Assign registers a delivery handed over by fulfillment. Returns whether it was newly created.
func (u *DeliveryUseCase) Assign(ctx context.Context, record model.DeliveryRecord) (*model.DeliveryRecord, bool, error) {
	var missing []string
	if record.OrderID == "" {
		missing = append(missing, "order_id")
	}
	if record.PartnerID == "" {
		missing = append(missing, "partner_id")
	}
	if len(missing) > 0 {
		return nil, false, &domainErrors.ValidationError{Status: string(record.Status), Missing: missing}
	}
	if record.Status == "" {
		record.Status = model.StatusAssigned
	}
	if !record.Status.Valid() {
		return nil, false, &domainErrors.ValidationError{Status: string(record.Status), Unknown: true}
	}
	now := u.clock.Now()
	if record.AssignedAt.IsZero() {
		record.AssignedAt = now
	}
	record.UpdatedAt = now
	if record.Status.Terminal() {
		record.CompletedAt = &now
	} else {
		record.CompletedAt = nil
	}
	return u.deliveries.Assign(ctx, record)
}

// Assigned returns the partner's non-terminal deliveries.
func (u *DeliveryUseCase) Assigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	return u.deliveries.ListAssigned(ctx, partnerID)
}

// History returns the partner's completed deliveries.
func (u *DeliveryUseCase) History(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	return u.deliveries.ListHistory(ctx, partnerID)
}

// UpdateStatus applies a partner's status update after scoping, validation and OTP checks.
func (u *DeliveryUseCase) UpdateStatus(ctx context.Context, partnerID, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error) {
	current, err := u.owned(ctx, partnerID, orderID)
	if err != nil {
		return nil, err
	}

	fields := model.UpdateFields{
		Notes:             update.Notes,
		OTP:               update.OTP,
		Photo:             update.Photo,
		EstimatedDelivery: update.EstimatedDelivery,
	}
	decision, err := u.validator.Validate(current.Status, string(update.Status), fields)
	if err != nil {
		return nil, err
	}
	update.Status = decision.Status

	if update.Status == model.StatusDelivered {
		if err := u.verifyOTP(ctx, orderID, update.OTP); err != nil {
			return nil, err
		}
	}
	if update.UpdatedAt.IsZero() {
		update.UpdatedAt = u.clock.Now()
	}

	updated, err := u.deliveries.UpdateStatus(ctx, orderID, update)
	if err != nil {
		return nil, err
	}

	if update.Status == model.StatusDelivered {
		if err := u.otps.Delete(ctx, orderID); err != nil {
			u.logger.Warn("otp cleanup failed", slog.String("order", orderID), slog.String("error", err.Error()))
		}
	}
	u.publish(ctx, current.Status, *updated, partnerID)
	return updated, nil
}

// IssueOTP generates a handover code for orderID and stores its hash. The code is returned once.
func (u *DeliveryUseCase) IssueOTP(ctx context.Context, partnerID, orderID string) (string, error) {
	if _, err := u.owned(ctx, partnerID, orderID); err != nil {
		return "", err
	}
	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	hash, err := u.hasher.Hash(code)
	if err != nil {
		return "", fmt.Errorf("hash otp: %w", err)
	}
	if err := u.otps.Save(ctx, orderID, hash, u.otpTTL); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	return code, nil
}

// EscalationCandidates returns failed attempts that reached the attempt limit.
func (u *DeliveryUseCase) EscalationCandidates(ctx context.Context, limit int) ([]model.DeliveryRecord, error) {
	return u.deliveries.SelectForEscalation(ctx, u.attempts, limit)
}

// Escalate converts a repeatedly failed delivery into the terminal failed_final status.
// The stored record is re-checked, so a candidate that moved on since selection is left alone.
func (u *DeliveryUseCase) Escalate(ctx context.Context, record model.DeliveryRecord) error {
	if record.Status != model.StatusFailedAttempt || record.Attempts < u.attempts {
		return nil
	}
	updated, applied, err := u.deliveries.EscalateStatus(ctx, record.OrderID, u.attempts, model.StatusUpdate{
		Status:    model.StatusFailedFinal,
		Notes:     escalationNote,
		UpdatedAt: u.clock.Now(),
	})
	if err != nil {
		return err
	}
	if !applied {
		u.logger.Info("escalation skipped, delivery moved on",
			slog.String("order", record.OrderID),
			slog.String("status", string(updated.Status)),
		)
		return nil
	}
	u.publish(ctx, model.StatusFailedAttempt, *updated, escalationActor)
	return nil
}

func (u *DeliveryUseCase) owned(ctx context.Context, partnerID, orderID string) (*model.DeliveryRecord, error) {
	record, err := u.deliveries.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if record.PartnerID != partnerID {
		return nil, domainErrors.ErrForbidden
	}
	return record, nil
}

func (u *DeliveryUseCase) verifyOTP(ctx context.Context, orderID, otp string) error {
	hash, err := u.otps.Get(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return err
		}
		if u.validator.RequireOTP {
			return domainErrors.ErrInvalidOTP
		}
		return nil
	}
	if otp == "" {
		return nil
	}
	if err := u.hasher.Compare(hash, otp); err != nil {
		return domainErrors.ErrInvalidOTP
	}
	return nil
}

func (u *DeliveryUseCase) publish(ctx context.Context, old model.DeliveryStatus, record model.DeliveryRecord, actor string) {
	event := model.StatusChangedEvent{
		ID:         uuid.NewString(),
		OrderID:    record.OrderID,
		PartnerID:  record.PartnerID,
		OldStatus:  old,
		NewStatus:  record.Status,
		ChangedBy:  actor,
		OccurredAt: u.clock.Now(),
	}
	if err := u.events.PublishStatusChanged(ctx, event); err != nil {
		u.logger.Error("publish status change failed", slog.String("order", record.OrderID), slog.String("error", err.Error()))
	}
}

func generateOTP() (string, error) {
	buf := make([]byte, otpDigits)
	alphabet := big.NewInt(int64(len(otpDigitAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, alphabet)
		if err != nil {
			return "", err
		}
		buf[i] = otpDigitAlphabet[n.Int64()]
	}
	return string(buf), nil
}
