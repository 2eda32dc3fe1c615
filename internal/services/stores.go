package services

import (
	"context"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

// The stores below are implemented by the Postgres repositories and by the
// in-memory store. Single-document getters return (nil, nil) when nothing
// matches.

type ClientStore interface {
	List(ctx context.Context) ([]models.Client, error)
	ListByStatus(ctx context.Context, status string) ([]models.Client, error)
	Get(ctx context.Context, id string) (*models.Client, error)
	GetByCode(ctx context.Context, code string) (*models.Client, error)
	FindByName(ctx context.Context, fragment string) (*models.Client, error)
	Search(ctx context.Context, q string, limit int) ([]models.Client, error)
	CountCodePrefix(ctx context.Context, prefix string) (int, error)
	Create(ctx context.Context, c *models.Client) error
	Update(ctx context.Context, c *models.Client) (bool, error)
	SetStatus(ctx context.Context, id, status string) error
}

type OrderStore interface {
	List(ctx context.Context, f repositories.OrderFilter) ([]models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	GetByRef(ctx context.Context, ref string) (*models.Order, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Create(ctx context.Context, o *models.Order) error
	CreateWithTruckOrder(ctx context.Context, o *models.Order, to *models.TruckOrder) error
	Save(ctx context.Context, o *models.Order) (bool, error)
	ApplyPricing(ctx context.Context, o *models.Order, entry *models.PaymentDetail) error
	SetDeliveryStatus(ctx context.Context, id, status string, at time.Time) (*models.DeliveryUpdate, error)
}

type PaymentStore interface {
	List(ctx context.Context, f repositories.PaymentFilter) ([]models.Payment, error)
	Get(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, p *models.Payment) error
	Confirm(ctx context.Context, id, by string, at time.Time) (bool, error)
}

type BDCStore interface {
	List(ctx context.Context) ([]models.BDC, error)
	Get(ctx context.Context, id string) (*models.BDC, error)
	GetByName(ctx context.Context, name string) (*models.BDC, error)
	Create(ctx context.Context, b *models.BDC) error
	AddPaymentDetail(ctx context.Context, id string, pd *models.PaymentDetail) (bool, error)
	ListTransactions(ctx context.Context, bdcID string) ([]models.BDCTransaction, error)
	AddTransaction(ctx context.Context, t *models.BDCTransaction) error
	SetEntryDelivery(ctx context.Context, id string, index int, status string, at time.Time) (*models.DeliveryUpdate, error)
}

type TruckStore interface {
	ListTrucks(ctx context.Context) ([]models.Truck, error)
	GetTruck(ctx context.Context, id string) (*models.Truck, error)
	GetTruckByNumber(ctx context.Context, number string) (*models.Truck, error)
	CreateTruck(ctx context.Context, t *models.Truck) error
	ListOrders(ctx context.Context, clients repositories.ClientFilter) ([]models.TruckOrder, error)
	GetOrder(ctx context.Context, id string) (*models.TruckOrder, error)
	CreateOrder(ctx context.Context, o *models.TruckOrder, newClient *models.Client) error
	SaveOrder(ctx context.Context, o *models.TruckOrder) (bool, error)
	AddExpense(ctx context.Context, e *models.TruckExpense) error
	ListExpenses(ctx context.Context) ([]models.TruckExpense, error)
}

type BankAccountStore interface {
	List(ctx context.Context) ([]models.BankAccount, error)
	Get(ctx context.Context, id string) (*models.BankAccount, error)
	Create(ctx context.Context, a *models.BankAccount) error
	Update(ctx context.Context, a *models.BankAccount) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type ProductStore interface {
	List(ctx context.Context) ([]models.Product, error)
	Get(ctx context.Context, id string) (*models.Product, error)
	GetByName(ctx context.Context, name string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, p *models.Product) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type TaxStore interface {
	List(ctx context.Context) ([]models.TaxRecord, error)
	Create(ctx context.Context, t *models.TaxRecord) error
}

// Stores bundles every collection a service may need.
type Stores struct {
	Clients       ClientStore
	Orders        OrderStore
	Payments      PaymentStore
	TruckPayments PaymentStore
	BDCs          BDCStore
	Trucks        TruckStore
	BankAccounts  BankAccountStore
	Products      ProductStore
	Taxes         TaxStore
}

// Clock returns the current time; tests pin it.
type Clock func() time.Time
