package memstore

import (
	"context"
	"fmt"
	"strings"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

type TruckRepository struct{ db *DB }

func (db *DB) Trucks() *TruckRepository { return &TruckRepository{db: db} }

func (r *TruckRepository) trucks() *table   { return r.db.tables[repositories.TableTrucks] }
func (r *TruckRepository) orders() *table   { return r.db.tables[repositories.TableTruckOrders] }
func (r *TruckRepository) expenses() *table { return r.db.tables[repositories.TableTruckExpenses] }

func (r *TruckRepository) ListTrucks(ctx context.Context) ([]models.Truck, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := all[models.Truck](r.trucks(), nil)
	sortBy(out, func(t models.Truck) string { return t.TruckNumber })
	return out, nil
}

func (r *TruckRepository) GetTruck(ctx context.Context, id string) (*models.Truck, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.Truck](r.trucks(), id), nil
}

func (r *TruckRepository) GetTruckByNumber(ctx context.Context, number string) (*models.Truck, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return first(r.trucks(), func(t *models.Truck) bool {
		return strings.EqualFold(strings.TrimSpace(t.TruckNumber), strings.TrimSpace(number))
	}), nil
}

func (r *TruckRepository) CreateTruck(ctx context.Context, t *models.Truck) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if first(r.trucks(), func(x *models.Truck) bool { return strings.EqualFold(x.TruckNumber, t.TruckNumber) }) != nil {
		return fmt.Errorf("trucks: %w", repositories.ErrDuplicate)
	}
	return insert(r.trucks(), t)
}

func (r *TruckRepository) ListOrders(ctx context.Context, clients repositories.ClientFilter) ([]models.TruckOrder, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return all(r.orders(), func(o *models.TruckOrder) bool { return matchesRef(o.ClientID, clients) }), nil
}

func (r *TruckRepository) GetOrder(ctx context.Context, id string) (*models.TruckOrder, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return get[models.TruckOrder](r.orders(), id), nil
}

func (r *TruckRepository) CreateOrder(ctx context.Context, o *models.TruckOrder, newClient *models.Client) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	clients := &ClientRepository{db: r.db}
	if newClient != nil {
		if err := clients.insertLocked(newClient); err != nil {
			return err
		}
		o.ClientID = models.Ref(newClient.ID)
	}
	if err := insert(r.orders(), o); err != nil {
		if newClient != nil {
			remove(clients.t(), newClient.ID)
		}
		return err
	}
	return nil
}

func (r *TruckRepository) SaveOrder(ctx context.Context, o *models.TruckOrder) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return replace(r.orders(), o)
}

func (r *TruckRepository) AddExpense(ctx context.Context, e *models.TruckExpense) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o := get[models.TruckOrder](r.orders(), e.OrderID.String())
	if o == nil {
		return fmt.Errorf("truck order %s not found", e.OrderID)
	}
	if err := insert(r.expenses(), e); err != nil {
		return err
	}
	o.Expenses = append(o.Expenses, *e)
	if _, err := replace(r.orders(), o); err != nil {
		remove(r.expenses(), e.ID)
		return err
	}
	return nil
}

func (r *TruckRepository) ListExpenses(ctx context.Context) ([]models.TruckExpense, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return all[models.TruckExpense](r.expenses(), nil), nil
}
