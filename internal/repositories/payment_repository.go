package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/models"
)

// PaymentRepository serves both order payments and truck payments; they
// share a shape and live in separate tables.
type PaymentRepository struct {
	DB    *pgxpool.Pool
	Table string
}

func NewPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db, Table: TablePayments}
}

func NewTruckPaymentRepository(db *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{DB: db, Table: TableTruckPayments}
}

func (r *PaymentRepository) List(ctx context.Context, f PaymentFilter) ([]models.Payment, error) {
	sql := fmt.Sprintf(`SELECT id, doc FROM %s
		WHERE ($1 = '' OR doc->>'status' = $1)
		  AND (cardinality($2::text[]) = 0 OR %s = ANY($2))
		ORDER BY created_at, id`, r.Table, clientRefExpr)
	return scanDocs[models.Payment](ctx, r.DB, r.Table, sql, f.Status, refKeys(f.Clients))
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	return getDoc[models.Payment](ctx, r.DB, r.Table,
		fmt.Sprintf(`SELECT id, doc FROM %s WHERE lower(id) = lower($1)`, r.Table), id)
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	return insertDoc(ctx, r.DB, r.Table, p)
}

// Confirm marks a pending payment confirmed. It reports false when the
// payment was already confirmed.
func (r *PaymentRepository) Confirm(ctx context.Context, id, by string, at time.Time) (bool, error) {
	sql := fmt.Sprintf(`
		UPDATE %s
		SET doc = doc || jsonb_build_object('status', 'confirmed', 'confirmed_by', $2::text, 'confirmed_at', $3::text),
		    updated_at = NOW()
		WHERE lower(id) = lower($1) AND doc->>'status' IS DISTINCT FROM 'confirmed'`, r.Table)
	tag, err := r.DB.Exec(ctx, sql, id, by, at.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return false, fmt.Errorf("failed to confirm payment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
