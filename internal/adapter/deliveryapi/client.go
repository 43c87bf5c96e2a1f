package deliveryapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/server/http/dto"
)

const (
	// PartnerHeader scopes every call to the acting partner.
	PartnerHeader = "X-Partner-ID"

	defaultTimeout = 10 * time.Second
	maxErrorBody   = 4 << 10
)

// HTTPClient talks to the delivery service REST API.
type HTTPClient struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Options tunes HTTPClient.
type Options struct {
	Token   string
	Timeout time.Duration
}

// NewHTTPClient creates a client for the service at baseURL.
func NewHTTPClient(baseURL string, opts Options, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse delivery service url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("delivery service url must be absolute")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL: parsed,
		token:   opts.Token,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// ListAssigned fetches the partner's active deliveries.
func (c *HTTPClient) ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	return c.list(ctx, "list assigned", partnerID, "assigned")
}

// ListHistory fetches the partner's completed deliveries.
func (c *HTTPClient) ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	return c.list(ctx, "list history", partnerID, "history")
}

// UpdateStatus submits a status change and returns the record as stored by the service.
func (c *HTTPClient) UpdateStatus(ctx context.Context, partnerID, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error) {
	const op = "update status"

	body, err := json.Marshal(dto.FromStatusUpdate(update))
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", op, err)
	}
	endpoint := c.baseURL.JoinPath("api", "deliveries", url.PathEscape(orderID), "status")

	var payload dto.Delivery
	if err := c.do(ctx, op, http.MethodPatch, endpoint, partnerID, bytes.NewReader(body), &payload); err != nil {
		return nil, err
	}
	record, ok := payload.ToModel()
	if !ok {
		return nil, &domainErrors.TransportError{Op: op, Err: fmt.Errorf("service returned unknown status %q", payload.Status)}
	}
	return &record, nil
}

func (c *HTTPClient) list(ctx context.Context, op, partnerID, view string) ([]model.DeliveryRecord, error) {
	endpoint := c.baseURL.JoinPath("api", "partners", url.PathEscape(partnerID), "deliveries", view)

	var payload []dto.Delivery
	if err := c.do(ctx, op, http.MethodGet, endpoint, partnerID, nil, &payload); err != nil {
		return nil, err
	}

	records := make([]model.DeliveryRecord, 0, len(payload))
	for _, d := range payload {
		record, ok := d.ToModel()
		if !ok {
			c.logger.Warn("skipping delivery with unknown status",
				slog.String("order", d.OrderID),
				slog.String("status", d.Status),
			)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *HTTPClient) do(ctx context.Context, op, method string, endpoint *url.URL, partnerID string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(PartnerHeader, partnerID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domainErrors.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &domainErrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
		return nil
	}
	return c.failure(op, resp)
}

// failure maps a non-2xx response. Rejections the partner can act on keep their domain meaning;
// everything else is a transport failure.
func (c *HTTPClient) failure(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body dto.ErrorResponse
	_ = json.Unmarshal(raw, &body)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", op, domainErrors.ErrNotFound)
	case http.StatusForbidden:
		return fmt.Errorf("%s: %w", op, domainErrors.ErrForbidden)
	case http.StatusUnprocessableEntity:
		switch body.Code {
		case dto.CodeInvalidOTP:
			return fmt.Errorf("%s: %w", op, domainErrors.ErrInvalidOTP)
		case dto.CodeUnknownStatus:
			return &domainErrors.ValidationError{Status: body.Status, Unknown: true}
		case dto.CodeValidation:
			return &domainErrors.ValidationError{Status: body.Status, Missing: body.Missing}
		}
	}

	c.logger.Error("delivery service request failed",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.String("body", string(raw)),
	)
	msg := body.Error
	if msg == "" {
		msg = resp.Status
	}
	return &domainErrors.TransportError{Op: op, StatusCode: resp.StatusCode, Err: errors.New(msg)}
}
