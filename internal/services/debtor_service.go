package services

import (
	"context"
	"fmt"

	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/repositories"
	"fuel-backend/internal/timeutil"
)

type DebtorService struct {
	Clients  ClientStore
	Orders   OrderStore
	Payments PaymentStore
	Now      Clock
}

func NewDebtorService(st Stores, now Clock) *DebtorService {
	return &DebtorService{Clients: st.Clients, Orders: st.Orders, Payments: st.Payments, Now: now}
}

type DebtorList struct {
	Debtors    []reconcile.DebtorRow `json:"debtors"`
	Period     string                `json:"period"`
	Month      int                   `json:"selected_month,omitempty"`
	Year       int                   `json:"selected_year,omitempty"`
	Years      []int                 `json:"years"`
	TotalDebt  float64               `json:"total_debt"`
	TotalPaid  float64               `json:"total_paid"`
	AmountLeft float64               `json:"amount_left"`
}

func (s *DebtorService) load(ctx context.Context) ([]models.Client, []models.Order, []models.Payment, error) {
	clients, err := s.Clients.List(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list clients: %w", err)
	}
	orders, err := s.Orders.List(ctx, repositories.OrderFilter{Status: models.OrderApproved})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list orders: %w", err)
	}
	payments, err := s.Payments.List(ctx, repositories.PaymentFilter{Status: models.PaymentConfirmed})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return clients, orders, payments, nil
}

// List returns every client still owing on approved orders in the window.
// A non-empty clientToken restricts the list to that client.
func (s *DebtorService) List(ctx context.Context, args timeutil.WindowArgs, clientToken string) (*DebtorList, error) {
	now := s.Now()
	w := timeutil.ResolveWindow(args, now)

	var only *models.Client
	if clientToken != "" {
		c, err := resolveClient(ctx, s.Clients, clientToken)
		if err != nil {
			return nil, err
		}
		only = c
	}

	clients, orders, payments, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	list := &DebtorList{
		Debtors: reconcile.Debtors(clients, orders, payments, w, only, now),
		Period:  w.Label(),
		Month:   w.Month,
		Year:    w.Year,
		Years:   reconcile.YearsRange(orders, now),
	}
	for _, d := range list.Debtors {
		list.TotalDebt += d.TotalDebt
		list.TotalPaid += d.TotalPaid
		list.AmountLeft += d.AmountLeft
	}
	list.TotalDebt = reconcile.Round2(list.TotalDebt)
	list.TotalPaid = reconcile.Round2(list.TotalPaid)
	list.AmountLeft = reconcile.Round2(list.AmountLeft)
	return list, nil
}

// Details pairs each active client (or the one named) with its latest
// approved order in the window and the payments made against it.
func (s *DebtorService) Details(ctx context.Context, args timeutil.WindowArgs, clientToken string) ([]reconcile.DebtorDetail, error) {
	w := timeutil.ResolveWindow(args, s.Now())

	var clients []models.Client
	if clientToken != "" {
		c, err := resolveClient(ctx, s.Clients, clientToken)
		if err != nil {
			return nil, err
		}
		clients = []models.Client{*c}
	} else {
		cs, err := s.Clients.ListByStatus(ctx, models.ClientActive)
		if err != nil {
			return nil, fmt.Errorf("failed to list clients: %w", err)
		}
		clients = cs
	}

	orders, err := s.Orders.List(ctx, repositories.OrderFilter{Status: models.OrderApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	payments, err := s.Payments.List(ctx, repositories.PaymentFilter{Status: models.PaymentConfirmed})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	out := []reconcile.DebtorDetail{}
	for i := range clients {
		if d := reconcile.LatestOrderDetail(&clients[i], orders, payments, w); d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}
