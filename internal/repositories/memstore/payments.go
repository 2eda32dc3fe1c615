package memstore

import (
	"context"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

type PaymentRepository struct {
	db    *DB
	table string
}

func (db *DB) Payments() *PaymentRepository {
	return &PaymentRepository{db: db, table: repositories.TablePayments}
}

func (db *DB) TruckPayments() *PaymentRepository {
	return &PaymentRepository{db: db, table: repositories.TableTruckPayments}
}

func (r *PaymentRepository) t() *table { return r.db.tables[r.table] }

func (r *PaymentRepository) List(ctx context.Context, f repositories.PaymentFilter) ([]models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return all(r.t(), func(p *models.Payment) bool {
		if f.Status != "" && p.Status != f.Status {
			return false
		}
		return matchesRef(p.ClientID, f.Clients)
	}), nil
}

func (r *PaymentRepository) Get(ctx context.Context, id string) (*models.Payment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.Payment](r.t(), id), nil
}

func (r *PaymentRepository) Create(ctx context.Context, p *models.Payment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return insert(r.t(), p)
}

func (r *PaymentRepository) Confirm(ctx context.Context, id, by string, at time.Time) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p := get[models.Payment](r.t(), id)
	if p == nil || p.IsConfirmed() {
		return false, nil
	}
	p.Status = models.PaymentConfirmed
	p.ConfirmedBy = by
	p.ConfirmedAt = models.NewDate(at)
	return replace(r.t(), p)
}
