package memstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

type OrderRepository struct{ db *DB }

func (db *DB) Orders() *OrderRepository { return &OrderRepository{db: db} }

func (r *OrderRepository) t() *table { return r.db.tables[repositories.TableOrders] }

func (r *OrderRepository) List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return all(r.t(), func(o *models.Order) bool {
		if f.Status != "" && o.Status != f.Status {
			return false
		}
		if f.DeliveryStatus != "" && !strings.EqualFold(o.DeliveryStatus, f.DeliveryStatus) {
			return false
		}
		return matchesRef(o.ClientID, f.Clients)
	}), nil
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.Order](r.t(), id), nil
}

func (r *OrderRepository) byRef(ref string) *models.Order {
	if o := get[models.Order](r.t(), ref); o != nil {
		return o
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	return first(r.t(), func(o *models.Order) bool { return o.OrderCode == ref })
}

func (r *OrderRepository) GetByRef(ctx context.Context, ref string) (*models.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.byRef(ref), nil
}

func (r *OrderRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return first(r.t(), func(o *models.Order) bool { return o.OrderCode == code }) != nil, nil
}

func (r *OrderRepository) insertLocked(o *models.Order) error {
	if o.OrderCode != "" && first(r.t(), func(x *models.Order) bool { return x.OrderCode == o.OrderCode }) != nil {
		return fmt.Errorf("orders: %w", repositories.ErrDuplicate)
	}
	return insert(r.t(), o)
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return r.insertLocked(o)
}

func (r *OrderRepository) CreateWithTruckOrder(ctx context.Context, o *models.Order, to *models.TruckOrder) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if err := r.insertLocked(o); err != nil {
		return err
	}
	to.OrderRef = models.Ref(o.ID)
	if err := insert(r.db.tables[repositories.TableTruckOrders], to); err != nil {
		remove(r.t(), o.ID)
		return err
	}
	return nil
}

func (r *OrderRepository) Save(ctx context.Context, o *models.Order) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return replace(r.t(), o)
}

func (r *OrderRepository) ApplyPricing(ctx context.Context, o *models.Order, entry *models.PaymentDetail) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var bdc *models.BDC
	bdcs := r.db.tables[repositories.TableBDCs]
	if entry != nil && !o.BDCID.IsZero() {
		if bdc = get[models.BDC](bdcs, o.BDCID.String()); bdc == nil {
			return fmt.Errorf("bdc %s not found for payment entry", o.BDCID)
		}
		bdc.PaymentDetails = append(bdc.PaymentDetails, *entry)
	}
	found, err := replace(r.t(), o)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("order %s disappeared during approval", o.ID)
	}
	if bdc != nil {
		if _, err := replace(bdcs, bdc); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrderRepository) SetDeliveryStatus(ctx context.Context, id, status string, at time.Time) (*models.DeliveryUpdate, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	o := get[models.Order](r.t(), id)
	if o == nil {
		return nil, nil
	}
	o.DeliveryStatus = status
	if strings.EqualFold(status, models.DeliveryDelivered) {
		o.DeliveredDate = models.NewDate(at)
	}
	o.DeliveryHistory = append(o.DeliveryHistory, models.DeliveryEvent{Status: status, Timestamp: models.NewDate(at)})

	keys := repositories.ClientFilter{models.NormalizeRef(o.ID), models.NormalizeRef(o.OrderCode)}
	bdcs := r.db.tables[repositories.TableBDCs]
	var mirrored *models.BDC
	for _, b := range all[models.BDC](bdcs, nil) {
		b := b
		for i := range b.PaymentDetails {
			if b.PaymentDetails[i].OrderID.IsZero() || !matchesRef(b.PaymentDetails[i].OrderID, keys) {
				continue
			}
			b.PaymentDetails[i].DeliveryStatus = status
			mirrored = &b
			break
		}
		if mirrored != nil {
			break
		}
	}

	if _, err := replace(r.t(), o); err != nil {
		return nil, err
	}
	if mirrored != nil {
		if _, err := replace(bdcs, mirrored); err != nil {
			return nil, err
		}
	}
	return &models.DeliveryUpdate{OrderUpdated: true, BDCUpdated: mirrored != nil, Status: status}, nil
}
