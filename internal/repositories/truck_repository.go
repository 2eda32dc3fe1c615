package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"fuel-backend/internal/models"
)

// TruckRepository covers trucks, their haulage orders and the expenses
// booked against those orders.
type TruckRepository struct {
	DB *pgxpool.Pool
}

func NewTruckRepository(db *pgxpool.Pool) *TruckRepository {
	return &TruckRepository{DB: db}
}

func (r *TruckRepository) ListTrucks(ctx context.Context) ([]models.Truck, error) {
	return scanDocs[models.Truck](ctx, r.DB, TableTrucks, `SELECT id, doc FROM trucks ORDER BY doc->>'truck_number'`)
}

func (r *TruckRepository) GetTruck(ctx context.Context, id string) (*models.Truck, error) {
	return getDoc[models.Truck](ctx, r.DB, TableTrucks, `SELECT id, doc FROM trucks WHERE lower(id) = lower($1)`, id)
}

func (r *TruckRepository) GetTruckByNumber(ctx context.Context, number string) (*models.Truck, error) {
	return getDoc[models.Truck](ctx, r.DB, TableTrucks,
		`SELECT id, doc FROM trucks WHERE upper(btrim(doc->>'truck_number')) = upper(btrim($1))`, number)
}

func (r *TruckRepository) CreateTruck(ctx context.Context, t *models.Truck) error {
	return insertDoc(ctx, r.DB, TableTrucks, t)
}

func (r *TruckRepository) ListOrders(ctx context.Context, clients ClientFilter) ([]models.TruckOrder, error) {
	return scanDocs[models.TruckOrder](ctx, r.DB, TableTruckOrders, `
		SELECT id, doc FROM truck_orders
		WHERE cardinality($1::text[]) = 0 OR `+clientRefExpr+` = ANY($1)
		ORDER BY created_at, id`, refKeys(clients))
}

func (r *TruckRepository) GetOrder(ctx context.Context, id string) (*models.TruckOrder, error) {
	return getDoc[models.TruckOrder](ctx, r.DB, TableTruckOrders, `SELECT id, doc FROM truck_orders WHERE lower(id) = lower($1)`, id)
}

// CreateOrder stores a truck order, first creating the external client it
// bills when newClient is set.
func (r *TruckRepository) CreateOrder(ctx context.Context, o *models.TruckOrder, newClient *models.Client) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if newClient != nil {
		if err := insertDoc(ctx, tx, TableClients, newClient); err != nil {
			return err
		}
		o.ClientID = models.Ref(newClient.ID)
	}
	if err := insertDoc(ctx, tx, TableTruckOrders, o); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *TruckRepository) SaveOrder(ctx context.Context, o *models.TruckOrder) (bool, error) {
	return replaceDoc(ctx, r.DB, TableTruckOrders, o)
}

// AddExpense records the expense and embeds a copy in its order.
func (r *TruckRepository) AddExpense(ctx context.Context, e *models.TruckExpense) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertDoc(ctx, tx, TableTruckExpenses, e); err != nil {
		return err
	}
	ok, err := appendToArray(ctx, tx, TableTruckOrders, e.OrderID.String(), "expenses", e)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("truck order %s not found", e.OrderID)
	}
	return tx.Commit(ctx)
}

func (r *TruckRepository) ListExpenses(ctx context.Context) ([]models.TruckExpense, error) {
	return scanDocs[models.TruckExpense](ctx, r.DB, TableTruckExpenses, `SELECT id, doc FROM truck_expenses ORDER BY created_at, id`)
}
