package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

type BDCRepository struct{ db *DB }

func (db *DB) BDCs() *BDCRepository { return &BDCRepository{db: db} }

func (r *BDCRepository) t() *table { return r.db.tables[repositories.TableBDCs] }

func (r *BDCRepository) List(ctx context.Context) ([]models.BDC, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := all[models.BDC](r.t(), nil)
	sortBy(out, func(b models.BDC) string { return strings.ToLower(b.Name) })
	return out, nil
}

func (r *BDCRepository) Get(ctx context.Context, id string) (*models.BDC, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.BDC](r.t(), id), nil
}

func (r *BDCRepository) GetByName(ctx context.Context, name string) (*models.BDC, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return first(r.t(), func(b *models.BDC) bool { return strings.EqualFold(b.Name, strings.TrimSpace(name)) }), nil
}

func (r *BDCRepository) Create(ctx context.Context, b *models.BDC) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if first(r.t(), func(x *models.BDC) bool { return strings.EqualFold(x.Name, b.Name) }) != nil {
		return fmt.Errorf("bdcs: %w", repositories.ErrDuplicate)
	}
	return insert(r.t(), b)
}

func (r *BDCRepository) AddPaymentDetail(ctx context.Context, id string, pd *models.PaymentDetail) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	b := get[models.BDC](r.t(), id)
	if b == nil {
		return false, nil
	}
	b.PaymentDetails = append(b.PaymentDetails, *pd)
	return replace(r.t(), b)
}

func (r *BDCRepository) ListTransactions(ctx context.Context, bdcID string) ([]models.BDCTransaction, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return all(r.db.tables[repositories.TableBDCTransactions], func(t *models.BDCTransaction) bool {
		return bdcID == "" || strings.EqualFold(t.BDCID.Key(), strings.TrimSpace(bdcID))
	}), nil
}

func (r *BDCRepository) AddTransaction(ctx context.Context, t *models.BDCTransaction) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return insert(r.db.tables[repositories.TableBDCTransactions], t)
}

func (r *BDCRepository) SetEntryDelivery(ctx context.Context, id string, index int, status string, at time.Time) (*models.DeliveryUpdate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	b := get[models.BDC](r.t(), id)
	if b == nil {
		return nil, nil
	}
	if index < 0 || index >= len(b.PaymentDetails) {
		return nil, fmt.Errorf("payment entry %d out of range", index)
	}
	b.PaymentDetails[index].DeliveryStatus = status
	res := &models.DeliveryUpdate{BDCUpdated: true, Status: status}

	orders := &OrderRepository{db: r.db}
	var o *models.Order
	if ref := b.PaymentDetails[index].OrderID; !ref.IsZero() {
		o = orders.byRef(ref.String())
	}
	if o != nil {
		o.DeliveryStatus = status
		if strings.EqualFold(status, models.DeliveryDelivered) {
			o.DeliveredDate = models.NewDate(at)
		}
		if _, err := replace(orders.t(), o); err != nil {
			return nil, err
		}
		res.OrderUpdated = true
	}
	if _, err := replace(r.t(), b); err != nil {
		return nil, err
	}
	return res, nil
}
