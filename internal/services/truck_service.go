package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/repositories"
)

const truckPageSize = 10

type TruckService struct {
	Clients       ClientStore
	Trucks        TruckStore
	TruckPayments PaymentStore
	Now           Clock
}

func NewTruckService(st Stores, now Clock) *TruckService {
	return &TruckService{Clients: st.Clients, Trucks: st.Trucks, TruckPayments: st.TruckPayments, Now: now}
}

func (s *TruckService) AddTruck(ctx context.Context, req *models.AddTruckRequest) (*models.Truck, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	number := strings.ToUpper(strings.TrimSpace(req.TruckNumber))
	existing, err := s.Trucks.GetTruckByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("failed to check truck number: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("truck %s already exists", number)
	}
	t := &models.Truck{
		TruckNumber: number,
		Product:     strings.TrimSpace(req.Product),
		Capacity:    strings.TrimSpace(req.Capacity),
		DriverName:  strings.TrimSpace(req.DriverName),
		DriverPhone: strings.TrimSpace(req.DriverPhone),
	}
	t.Touch(s.Now())
	if err := s.Trucks.CreateTruck(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("truck %s already exists", number)
		}
		return nil, fmt.Errorf("failed to create truck: %w", err)
	}
	return t, nil
}

type TruckBoard struct {
	Trucks []models.Truck      `json:"trucks"`
	Orders []models.TruckOrder `json:"orders"`
}

// List returns the fleet and every truck order, newest first.
func (s *TruckService) List(ctx context.Context) (*TruckBoard, error) {
	trucks, err := s.Trucks.ListTrucks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list trucks: %w", err)
	}
	orders, err := s.Trucks.ListOrders(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list truck orders: %w", err)
	}
	sort.SliceStable(trucks, func(i, j int) bool { return trucks[i].CreatedAt.After(trucks[j].CreatedAt.Time) })
	newestTruckOrdersFirst(orders)
	return &TruckBoard{Trucks: trucks, Orders: orders}, nil
}

func newestTruckOrdersFirst(orders []models.TruckOrder) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].When().After(orders[j].When()) })
}

// Initiate opens a haulage job for an existing client, or for a new
// external client created from the name and phone given.
func (s *TruckService) Initiate(ctx context.Context, req *models.InitiateTruckOrderRequest) (*models.TruckOrder, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	debt, err := parseAmount(req.TotalDebt, "total_debt")
	if err != nil {
		return nil, err
	}
	truck, err := s.Trucks.GetTruck(ctx, req.TruckID)
	if err != nil {
		return nil, fmt.Errorf("failed to get truck: %w", err)
	}
	if truck == nil {
		return nil, apperr.NotFound("truck %s not found", req.TruckID)
	}

	now := s.Now()
	var client, newClient *models.Client
	switch {
	case strings.TrimSpace(req.ClientID) != "":
		c, err := s.Clients.Get(ctx, strings.TrimSpace(req.ClientID))
		if err != nil {
			return nil, fmt.Errorf("failed to get client: %w", err)
		}
		if c == nil {
			return nil, apperr.NotFound("client %s not found", req.ClientID)
		}
		client = c
	case strings.TrimSpace(req.ClientName) != "" && strings.TrimSpace(req.ClientPhone) != "":
		newClient = &models.Client{
			Name:   strings.TrimSpace(req.ClientName),
			Phone:  strings.TrimSpace(req.ClientPhone),
			Status: models.ClientExternal,
		}
		newClient.Touch(now)
		client = newClient
	default:
		return nil, apperr.Validation("please select or enter a client")
	}

	o := &models.TruckOrder{
		TruckID:     models.Ref(truck.ID),
		TruckNumber: truck.TruckNumber,
		DriverName:  truck.DriverName,
		DriverPhone: truck.DriverPhone,
		ClientID:    models.Ref(client.ID),
		ClientName:  client.Name,
		ClientPhone: client.Phone,
		Destination: strings.TrimSpace(req.Destination),
		TotalDebt:   models.Amount(debt),
		Status:      models.TruckOrderPending,
	}
	o.Touch(now)
	if err := s.Trucks.CreateOrder(ctx, o, newClient); err != nil {
		return nil, fmt.Errorf("failed to create truck order: %w", err)
	}
	log.Info().Str("component", "trucks").
		Str("truck", truck.TruckNumber).
		Bool("new_client", newClient != nil).
		Msg("truck order initiated")
	return o, nil
}

func (s *TruckService) getOrder(ctx context.Context, id string) (*models.TruckOrder, error) {
	o, err := s.Trucks.GetOrder(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get truck order: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("truck order %s not found", id)
	}
	return o, nil
}

func (s *TruckService) setStatus(ctx context.Context, id string, apply func(*models.TruckOrder)) (*models.TruckOrder, error) {
	o, err := s.getOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(o)
	o.Touch(s.Now())
	ok, err := s.Trucks.SaveOrder(ctx, o)
	if err != nil {
		return nil, fmt.Errorf("failed to save truck order: %w", err)
	}
	if !ok {
		return nil, apperr.NotFound("truck order %s not found", id)
	}
	return o, nil
}

// Start puts the truck on the road.
func (s *TruckService) Start(ctx context.Context, id string) (*models.TruckOrder, error) {
	return s.setStatus(ctx, id, func(o *models.TruckOrder) {
		o.Status = models.TruckOrderEnroute
		o.StartedAt = models.NewDate(s.Now())
	})
}

func (s *TruckService) Complete(ctx context.Context, id string) (*models.TruckOrder, error) {
	return s.setStatus(ctx, id, func(o *models.TruckOrder) {
		o.Status = models.TruckOrderDelivered
		o.DeliveredAt = models.NewDate(s.Now())
	})
}

func (s *TruckService) AddExpense(ctx context.Context, orderID string, req *models.TruckExpenseRequest) (*models.TruckExpense, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return nil, err
	}
	o, err := s.getOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	e := &models.TruckExpense{
		OrderID:     models.Ref(o.ID),
		TruckNumber: o.TruckNumber,
		Label:       strings.TrimSpace(req.Label),
		Amount:      models.Amount(amount),
	}
	e.Touch(s.Now())
	if err := s.Trucks.AddExpense(ctx, e); err != nil {
		return nil, apperr.PartialWrite("truck expense was not recorded", err)
	}
	return e, nil
}

// ExternalOrders returns the client's truck orders, newest first.
func (s *TruckService) ExternalOrders(ctx context.Context, c *models.Client) ([]models.TruckOrder, error) {
	orders, err := s.Trucks.ListOrders(ctx, clientFilter(c))
	if err != nil {
		return nil, fmt.Errorf("failed to list truck orders: %w", err)
	}
	newestTruckOrdersFirst(orders)
	return orders, nil
}

func (s *TruckService) book(ctx context.Context) (*reconcile.TruckBook, *reconcile.Directory, []models.Payment, error) {
	clients, err := s.Clients.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list clients: %w", err)
	}
	orders, err := s.Trucks.ListOrders(ctx, nil)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list truck orders: %w", err)
	}
	payments, err := s.TruckPayments.List(ctx, repositories.PaymentFilter{})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list truck payments: %w", err)
	}
	expenses, err := s.Trucks.ListExpenses(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list truck expenses: %w", err)
	}
	return reconcile.NewTruckBook(clients, orders, payments, expenses), reconcile.NewDirectory(clients), payments, nil
}

type TruckDebtorPage struct {
	Debtors []reconcile.TruckDebtor `json:"debtors"`
	reconcile.PageInfo
}

// Debtors lists haulage balances per client, largest amount left first,
// ten to a page.
func (s *TruckService) Debtors(ctx context.Context, search string, unpaidOnly bool, page int) (*TruckDebtorPage, error) {
	book, _, _, err := s.book(ctx)
	if err != nil {
		return nil, err
	}
	rows, info := reconcile.Paginate(book.Filter(search, unpaidOnly), page, truckPageSize)
	return &TruckDebtorPage{Debtors: rows, PageInfo: info}, nil
}

type TruckPaymentRow struct {
	models.Payment
	ClientName  string  `json:"client_name"`
	ClientPhone string  `json:"client_phone"`
	TotalDebt   float64 `json:"total_debt"`
	TotalPaid   float64 `json:"total_paid"`
	AmountLeft  float64 `json:"amount_left"`
}

type TruckPaymentsSummary struct {
	reconcile.TruckSummary
	Payments []TruckPaymentRow `json:"payments"`
	reconcile.PageInfo
}

// Summary reports fleet-wide haulage totals and one page of truck
// payments, newest first, each with its client's balance.
func (s *TruckService) Summary(ctx context.Context, page int) (*TruckPaymentsSummary, error) {
	book, dir, payments, err := s.book(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(payments, func(i, j int) bool { return payments[i].When().After(payments[j].When()) })
	pageRows, info := reconcile.Paginate(payments, page, truckPageSize)

	out := &TruckPaymentsSummary{TruckSummary: book.Summary(), PageInfo: info, Payments: make([]TruckPaymentRow, 0, len(pageRows))}
	for _, p := range pageRows {
		row := TruckPaymentRow{Payment: p, ClientName: "External Client", ClientPhone: "-"}
		if c := dir.Lookup(p.ClientID); c != nil {
			row.ClientName, row.ClientPhone = c.Name, c.Phone
		}
		if d, ok := book.For(dir, p.ClientID); ok {
			row.TotalDebt, row.TotalPaid, row.AmountLeft = d.TotalDebt, d.TotalPaid, d.AmountLeft
		}
		out.Payments = append(out.Payments, row)
	}
	return out, nil
}

// ConfirmTruckPayment marks a truck payment confirmed.
func (s *TruckService) ConfirmTruckPayment(ctx context.Context, id, by string) (*models.Payment, error) {
	return confirmPayment(ctx, s.TruckPayments, models.PaymentForTruck, id, by, s.Now)
}
