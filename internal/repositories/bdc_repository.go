package repositories

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/models"
)

type BDCRepository struct {
	DB *pgxpool.Pool
}

func NewBDCRepository(db *pgxpool.Pool) *BDCRepository {
	return &BDCRepository{DB: db}
}

const bdcSelect = `SELECT id, doc FROM bdcs`

func (r *BDCRepository) List(ctx context.Context) ([]models.BDC, error) {
	return scanDocs[models.BDC](ctx, r.DB, TableBDCs, bdcSelect+` ORDER BY lower(doc->>'name')`)
}

func (r *BDCRepository) Get(ctx context.Context, id string) (*models.BDC, error) {
	return getDoc[models.BDC](ctx, r.DB, TableBDCs, bdcSelect+` WHERE lower(id) = lower($1)`, id)
}

func (r *BDCRepository) GetByName(ctx context.Context, name string) (*models.BDC, error) {
	return getDoc[models.BDC](ctx, r.DB, TableBDCs, bdcSelect+` WHERE lower(doc->>'name') = lower(btrim($1))`, name)
}

func (r *BDCRepository) Create(ctx context.Context, b *models.BDC) error {
	return insertDoc(ctx, r.DB, TableBDCs, b)
}

func (r *BDCRepository) AddPaymentDetail(ctx context.Context, id string, pd *models.PaymentDetail) (bool, error) {
	return appendToArray(ctx, r.DB, TableBDCs, id, "payment_details", pd)
}

// ListTransactions returns the BDC's deposits, or every BDC's when bdcID
// is empty.
func (r *BDCRepository) ListTransactions(ctx context.Context, bdcID string) ([]models.BDCTransaction, error) {
	return scanDocs[models.BDCTransaction](ctx, r.DB, TableBDCTransactions, `
		SELECT id, doc FROM bdc_transactions
		WHERE $1 = '' OR lower(btrim(COALESCE(doc->'bdc_id'->>'$oid', doc->>'bdc_id'))) = lower($1)
		ORDER BY created_at, id`, bdcID)
}

func (r *BDCRepository) AddTransaction(ctx context.Context, t *models.BDCTransaction) error {
	return insertDoc(ctx, r.DB, TableBDCTransactions, t)
}

// SetEntryDelivery updates the delivery status of the payment entry at
// index and copies it onto the order the entry references, in one
// transaction. OrderUpdated is false when the entry names no known order.
func (r *BDCRepository) SetEntryDelivery(ctx context.Context, id string, index int, status string, at time.Time) (*models.DeliveryUpdate, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	b, err := getDoc[models.BDC](ctx, tx, TableBDCs, bdcSelect+` WHERE lower(id) = lower($1) FOR UPDATE`, id)
	if err != nil || b == nil {
		return nil, err
	}
	if index < 0 || index >= len(b.PaymentDetails) {
		return nil, fmt.Errorf("payment entry %d out of range", index)
	}

	_, err = tx.Exec(ctx, `
		UPDATE bdcs
		SET doc = jsonb_set(doc, ARRAY['payment_details', $2::text, 'delivery_status'], to_jsonb($3::text), true),
		    updated_at = NOW()
		WHERE id = $1`, b.ID, strconv.Itoa(index), status)
	if err != nil {
		return nil, fmt.Errorf("failed to update bdc entry: %w", err)
	}

	res := &models.DeliveryUpdate{BDCUpdated: true, Status: status}
	ref := b.PaymentDetails[index].OrderID
	if !ref.IsZero() {
		fields := map[string]any{"delivery_status": status}
		if strings.EqualFold(status, models.DeliveryDelivered) {
			fields["delivered_date"] = models.NewDate(at)
		}
		o, err := getDoc[models.Order](ctx, tx, TableOrders,
			orderSelect+` WHERE lower(id) = lower($1) OR doc->>'order_id' = $1 LIMIT 1 FOR UPDATE`, ref.String())
		if err != nil {
			return nil, err
		}
		if o != nil {
			if _, err := patchDoc(ctx, tx, TableOrders, o.ID, fields); err != nil {
				return nil, err
			}
			res.OrderUpdated = true
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit bdc delivery update: %w", err)
	}
	return res, nil
}
