package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/models"
)

type OrderRepository struct {
	DB *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{DB: db}
}

const orderSelect = `SELECT id, doc FROM orders`

// List returns orders in insertion order
func (r *OrderRepository) List(ctx context.Context, f OrderFilter) ([]models.Order, error) {
	return scanDocs[models.Order](ctx, r.DB, TableOrders, orderSelect+`
		WHERE ($1 = '' OR doc->>'status' = $1)
		  AND ($2 = '' OR lower(doc->>'delivery_status') = lower($2))
		  AND (cardinality($3::text[]) = 0 OR `+clientRefExpr+` = ANY($3))
		ORDER BY created_at, id`,
		f.Status, f.DeliveryStatus, refKeys(f.Clients))
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	return getDoc[models.Order](ctx, r.DB, TableOrders, orderSelect+` WHERE lower(id) = lower($1)`, id)
}

// GetByRef finds an order by storage id or short code
func (r *OrderRepository) GetByRef(ctx context.Context, ref string) (*models.Order, error) {
	return getDoc[models.Order](ctx, r.DB, TableOrders,
		orderSelect+` WHERE lower(id) = lower($1) OR doc->>'order_id' = btrim($1) LIMIT 1`, ref)
}

func (r *OrderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM orders WHERE doc->>'order_id' = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order code: %w", err)
	}
	return exists, nil
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return insertDoc(ctx, r.DB, TableOrders, o)
}

// CreateWithTruckOrder stores a portal order and the haulage job for the
// registered truck carrying it, together.
func (r *OrderRepository) CreateWithTruckOrder(ctx context.Context, o *models.Order, to *models.TruckOrder) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertDoc(ctx, tx, TableOrders, o); err != nil {
		return err
	}
	to.OrderRef = models.Ref(o.ID)
	if err := insertDoc(ctx, tx, TableTruckOrders, to); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *OrderRepository) Save(ctx context.Context, o *models.Order) (bool, error) {
	return replaceDoc(ctx, r.DB, TableOrders, o)
}

// ApplyPricing saves an approved order and, when the approval records a
// payment to the supplying BDC, pushes the same entry onto the BDC. Both
// land or neither does.
func (r *OrderRepository) ApplyPricing(ctx context.Context, o *models.Order, entry *models.PaymentDetail) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	found, err := replaceDoc(ctx, tx, TableOrders, o)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("order %s disappeared during approval", o.ID)
	}
	if entry != nil && !o.BDCID.IsZero() {
		ok, err := appendToArray(ctx, tx, TableBDCs, o.BDCID.String(), "payment_details", entry)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("bdc %s not found for payment entry", o.BDCID)
		}
	}
	return tx.Commit(ctx)
}

// mirrorBDCDelivery sets delivery_status on the first BDC payment entry
// that references one of keys.
const mirrorBDCDelivery = `
	WITH target AS (
		SELECT b.id, (e.ord - 1) AS idx
		FROM bdcs b,
		     jsonb_array_elements(CASE WHEN jsonb_typeof(b.doc->'payment_details') = 'array'
		                               THEN b.doc->'payment_details' ELSE '[]'::jsonb END)
		         WITH ORDINALITY AS e(item, ord)
		WHERE lower(btrim(COALESCE(e.item->'order_id'->>'$oid', e.item->>'order_id'))) = ANY($1)
		ORDER BY b.created_at, e.ord
		LIMIT 1
	)
	UPDATE bdcs
	SET doc = jsonb_set(bdcs.doc, ARRAY['payment_details', target.idx::text, 'delivery_status'], to_jsonb($2::text), true),
	    updated_at = NOW()
	FROM target
	WHERE bdcs.id = target.id`

// SetDeliveryStatus records a delivery status change on the order and
// mirrors it into the BDC entry for that order in one transaction. A nil
// result with no error means the order does not exist.
func (r *OrderRepository) SetDeliveryStatus(ctx context.Context, id, status string, at time.Time) (*models.DeliveryUpdate, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	o, err := getDoc[models.Order](ctx, tx, TableOrders, orderSelect+` WHERE lower(id) = lower($1) FOR UPDATE`, id)
	if err != nil || o == nil {
		return nil, err
	}

	fields := map[string]any{"delivery_status": status}
	if strings.EqualFold(status, models.DeliveryDelivered) {
		fields["delivered_date"] = models.NewDate(at)
	}
	if _, err := patchDoc(ctx, tx, TableOrders, o.ID, fields); err != nil {
		return nil, err
	}
	if _, err := appendToArray(ctx, tx, TableOrders, o.ID, "delivery_history", models.DeliveryEvent{Status: status, Timestamp: models.NewDate(at)}); err != nil {
		return nil, err
	}

	keys := refKeys([]string{o.ID, o.OrderCode})
	tag, err := tx.Exec(ctx, mirrorBDCDelivery, keys, status)
	if err != nil {
		return nil, fmt.Errorf("failed to mirror delivery status to bdc: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit delivery update: %w", err)
	}
	return &models.DeliveryUpdate{OrderUpdated: true, BDCUpdated: tag.RowsAffected() > 0, Status: status}, nil
}
