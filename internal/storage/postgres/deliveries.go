package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
)

const deliveryColumns = `order_id, partner_id, status, customer_name, customer_phone, customer_address,
                   items, payment_method, total_amount, currency, estimated_delivery, assigned_at,
                   completed_at, notes, attempts, updated_at`

type deliveryRepository struct {
	storage *Storage
}

type itemRow struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

type rowScanner interface {
	Scan(dest ...any) error
}

// terminalStatuses is the set that separates history from the active queue.
var terminalStatuses = func() []string {
	var out []string
	for _, s := range model.Statuses {
		if s.Terminal() {
			out = append(out, string(s))
		}
	}
	return out
}()

func (r *deliveryRepository) Assign(ctx context.Context, record model.DeliveryRecord) (*model.DeliveryRecord, bool, error) {
	items, err := encodeItems(record.Items)
	if err != nil {
		return nil, false, err
	}
	const query = `INSERT INTO deliveries (order_id, partner_id, status, customer_name, customer_phone, customer_address,
                   items, payment_method, total_amount, currency, estimated_delivery, assigned_at, completed_at, updated_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
                   ON CONFLICT (order_id) DO NOTHING
                   RETURNING assigned_at, updated_at`
	err = r.storage.pool.QueryRow(ctx, query,
		record.OrderID, record.PartnerID, string(record.Status),
		record.Customer.Name, record.Customer.Phone, record.Customer.Address,
		items, record.PaymentMethod, record.TotalAmount, record.Currency,
		record.EstimatedDelivery, record.AssignedAt, record.CompletedAt, record.UpdatedAt,
	).Scan(&record.AssignedAt, &record.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, err := r.Get(ctx, record.OrderID)
			if err != nil {
				return nil, false, err
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return &record, true, nil
}

func (r *deliveryRepository) Get(ctx context.Context, orderID string) (*model.DeliveryRecord, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id=$1`
	record, err := scanDelivery(r.storage.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return record, nil
}

func (r *deliveryRepository) ListAssigned(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
                   WHERE partner_id=$1 AND NOT (status = ANY($2))
                   ORDER BY estimated_delivery NULLS LAST, order_id`
	return r.list(ctx, query, partnerID, terminalStatuses)
}

func (r *deliveryRepository) ListHistory(ctx context.Context, partnerID string) ([]model.DeliveryRecord, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
                   WHERE partner_id=$1 AND status = ANY($2)
                   ORDER BY completed_at DESC NULLS LAST, order_id`
	return r.list(ctx, query, partnerID, terminalStatuses)
}

func (r *deliveryRepository) list(ctx context.Context, query string, args ...any) ([]model.DeliveryRecord, error) {
	rows, err := r.storage.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.DeliveryRecord
	for rows.Next() {
		record, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *deliveryRepository) UpdateStatus(ctx context.Context, orderID string, update model.StatusUpdate) (*model.DeliveryRecord, error) {
	updated, _, err := r.applyLocked(ctx, orderID, update, nil)
	return updated, err
}

func (r *deliveryRepository) EscalateStatus(ctx context.Context, orderID string, maxAttempts int, update model.StatusUpdate) (*model.DeliveryRecord, bool, error) {
	return r.applyLocked(ctx, orderID, update, func(record *model.DeliveryRecord) bool {
		return record.Status == model.StatusFailedAttempt && record.Attempts >= maxAttempts
	})
}

// applyLocked re-reads the row under FOR UPDATE and applies update when eligible accepts it.
func (r *deliveryRepository) applyLocked(ctx context.Context, orderID string, update model.StatusUpdate, eligible func(*model.DeliveryRecord) bool) (*model.DeliveryRecord, bool, error) {
	var (
		updated *model.DeliveryRecord
		applied bool
	)
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE order_id=$1 FOR UPDATE`
		record, err := scanDelivery(tx.QueryRow(ctx, query, orderID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domainErrors.ErrNotFound
			}
			return err
		}
		if eligible != nil && !eligible(record) {
			updated = record
			return nil
		}

		record.Apply(update)

		const updateQuery = `UPDATE deliveries
                             SET status=$1, notes=$2, estimated_delivery=$3, completed_at=$4, attempts=$5, updated_at=$6
                             WHERE order_id=$7`
		if _, err := tx.Exec(ctx, updateQuery,
			string(record.Status), record.Notes, record.EstimatedDelivery, record.CompletedAt,
			record.Attempts, record.UpdatedAt, orderID,
		); err != nil {
			return err
		}
		updated = record
		applied = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return updated, applied, nil
}

func (r *deliveryRepository) SelectForEscalation(ctx context.Context, maxAttempts, limit int) ([]model.DeliveryRecord, error) {
	query := `SELECT ` + deliveryColumns + ` FROM deliveries
                         WHERE status=$1 AND attempts >= $2
                         ORDER BY updated_at
                         LIMIT $3
                         FOR UPDATE SKIP LOCKED`

	var records []model.DeliveryRecord
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, query, string(model.StatusFailedAttempt), maxAttempts, limit)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanDelivery(rows)
			if err != nil {
				return err
			}
			records = append(records, *record)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func scanDelivery(row rowScanner) (*model.DeliveryRecord, error) {
	var (
		record model.DeliveryRecord
		status string
		items  []byte
	)
	err := row.Scan(
		&record.OrderID, &record.PartnerID, &status,
		&record.Customer.Name, &record.Customer.Phone, &record.Customer.Address,
		&items, &record.PaymentMethod, &record.TotalAmount, &record.Currency,
		&record.EstimatedDelivery, &record.AssignedAt, &record.CompletedAt,
		&record.Notes, &record.Attempts, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.Status = model.DeliveryStatus(status)
	if record.Items, err = decodeItems(items); err != nil {
		return nil, err
	}
	return &record, nil
}

func encodeItems(items []model.Item) (string, error) {
	rows := make([]itemRow, 0, len(items))
	for _, it := range items {
		rows = append(rows, itemRow{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return "", fmt.Errorf("encode items: %w", err)
	}
	return string(raw), nil
}

func decodeItems(raw []byte) ([]model.Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var rows []itemRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]model.Item, 0, len(rows))
	for _, r := range rows {
		items = append(items, model.Item{Name: r.Name, Quantity: r.Quantity, UnitPrice: r.UnitPrice})
	}
	return items, nil
}
