package services

import (
	"context"

	"fuel-backend/internal/ledger"
	"fuel-backend/internal/timeutil"
)

type StatementService struct {
	Clients     ClientStore
	Orders      OrderStore
	Payments    PaymentStore
	Categories  []string
	CompanyName string
	Now         Clock
}

func NewStatementService(st Stores, categories []string, company string, now Clock) *StatementService {
	return &StatementService{
		Clients:     st.Clients,
		Orders:      st.Orders,
		Payments:    st.Payments,
		Categories:  categories,
		CompanyName: company,
		Now:         now,
	}
}

// Build produces the running-balance statement of the client the token
// names. With no window filters the current month is used.
func (s *StatementService) Build(ctx context.Context, clientToken string, args timeutil.WindowArgs) (*ledger.Statement, error) {
	c, err := resolveClient(ctx, s.Clients, clientToken)
	if err != nil {
		return nil, err
	}
	orders, payments, err := clientBooks(ctx, s.Orders, s.Payments, c)
	if err != nil {
		return nil, err
	}
	now := s.Now()
	return ledger.Build(ledger.Input{
		Client:      c,
		Window:      timeutil.ResolveWindow(args, now),
		Orders:      orders,
		Payments:    payments,
		Categories:  s.Categories,
		CompanyName: s.CompanyName,
	}, now), nil
}
