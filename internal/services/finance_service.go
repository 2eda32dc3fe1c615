package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/repositories"
	"fuel-backend/internal/timeutil"
)

type FinanceService struct {
	Clients       ClientStore
	Orders        OrderStore
	Payments      PaymentStore
	TruckPayments PaymentStore
	BankAccounts  BankAccountStore
	Taxes         TaxStore
	Trucks        *TruckService
	Split         []reconcile.Share
	Now           Clock
}

func NewFinanceService(st Stores, split []reconcile.Share, now Clock) *FinanceService {
	return &FinanceService{
		Clients:       st.Clients,
		Orders:        st.Orders,
		Payments:      st.Payments,
		TruckPayments: st.TruckPayments,
		BankAccounts:  st.BankAccounts,
		Taxes:         st.Taxes,
		Trucks:        NewTruckService(st, now),
		Split:         split,
		Now:           now,
	}
}

type ShareholderQuery struct {
	Period       string
	Start        string
	End          string
	VolumePeriod string
	VolumeStart  string
	VolumeEnd    string
}

type ShareholderView struct {
	reconcile.ShareholderReport
	Shareholders []reconcile.Share `json:"shareholders"`
	Period       string            `json:"period"`
	VolumePeriod string            `json:"volume_period"`
}

// Shareholders reports returns on approved orders and how they split.
func (s *FinanceService) Shareholders(ctx context.Context, q ShareholderQuery) (*ShareholderView, error) {
	orders, err := s.Orders.List(ctx, repositories.OrderFilter{Status: models.OrderApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	now := s.Now()
	period, volume := q.Period, q.VolumePeriod
	if period == "" {
		period = "all"
	}
	if volume == "" {
		volume = "all"
	}
	rep := reconcile.Shareholders(s.Split, orders,
		reconcile.PeriodSpan(period, q.Start, q.End, now, false),
		reconcile.PeriodSpan(volume, q.VolumeStart, q.VolumeEnd, now, true),
	)
	return &ShareholderView{ShareholderReport: rep, Shareholders: s.Split, Period: period, VolumePeriod: volume}, nil
}

type TaxSummary struct {
	Records []models.TaxRecord     `json:"records"`
	Total   float64                `json:"total"`
	Trend   []reconcile.MonthTotal `json:"monthly_trend"`
}

func (s *FinanceService) TaxSummary(ctx context.Context) (*TaxSummary, error) {
	records, err := s.Taxes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tax records: %w", err)
	}
	total, trend := reconcile.TaxTrend(records)
	return &TaxSummary{Records: records, Total: total, Trend: trend}, nil
}

func (s *FinanceService) AddTax(ctx context.Context, req *models.TaxRequest) (*models.TaxRecord, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	amount, err := parseAmount(req.Amount, "amount")
	if err != nil {
		return nil, err
	}
	paid, err := timeutil.ParseDate(req.PaymentDate)
	if err != nil {
		return nil, apperr.Validation("payment_date must be YYYY-MM-DD")
	}
	t := &models.TaxRecord{
		Type:        strings.TrimSpace(req.Type),
		Amount:      models.Amount(amount),
		PaymentDate: models.NewDate(paid),
		Reference:   strings.TrimSpace(req.Reference),
		PaidBy:      strings.TrimSpace(req.PaidBy),
	}
	t.Touch(s.Now())
	if err := s.Taxes.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create tax record: %w", err)
	}
	return t, nil
}

func (s *FinanceService) ListBankAccounts(ctx context.Context) ([]models.BankAccount, error) {
	accts, err := s.BankAccounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	return accts, nil
}

func bankAccountFrom(req *models.BankAccountRequest, a *models.BankAccount) {
	a.BankName = strings.TrimSpace(req.BankName)
	a.AccountName = strings.TrimSpace(req.AccountName)
	a.AccountNumber = strings.TrimSpace(req.AccountNumber)
	a.Branch = strings.TrimSpace(req.Branch)
}

func (s *FinanceService) AddBankAccount(ctx context.Context, req *models.BankAccountRequest) (*models.BankAccount, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	a := &models.BankAccount{}
	bankAccountFrom(req, a)
	a.Touch(s.Now())
	if err := s.BankAccounts.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to create bank account: %w", err)
	}
	return a, nil
}

func (s *FinanceService) getBankAccount(ctx context.Context, id string) (*models.BankAccount, error) {
	a, err := s.BankAccounts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bank account: %w", err)
	}
	if a == nil {
		return nil, apperr.NotFound("bank account %s not found", id)
	}
	return a, nil
}

func (s *FinanceService) UpdateBankAccount(ctx context.Context, id string, req *models.BankAccountRequest) (*models.BankAccount, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	a, err := s.getBankAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	bankAccountFrom(req, a)
	a.Touch(s.Now())
	if _, err := s.BankAccounts.Update(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to update bank account: %w", err)
	}
	return a, nil
}

func (s *FinanceService) DeleteBankAccount(ctx context.Context, id string) error {
	ok, err := s.BankAccounts.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete bank account: %w", err)
	}
	if !ok {
		return apperr.NotFound("bank account %s not found", id)
	}
	return nil
}

type BankProfile struct {
	Account       *models.BankAccount `json:"account"`
	Payments      []models.Payment    `json:"payments"`
	TotalReceived float64             `json:"total_received"`
}

// BankProfile lists confirmed client payments made into the account,
// newest first, optionally between start and end (YYYY-MM-DD, inclusive).
func (s *FinanceService) BankProfile(ctx context.Context, id, start, end string) (*BankProfile, error) {
	a, err := s.getBankAccount(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.Payments.List(ctx, repositories.PaymentFilter{Status: models.PaymentConfirmed})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	span := reconcile.PeriodSpan("custom", start, end, s.Now(), false)
	received, total := reconcile.BankReceipts(a, payments, span)
	sort.SliceStable(received, func(i, j int) bool { return received[i].When().After(received[j].When()) })
	return &BankProfile{Account: a, Payments: received, TotalReceived: total}, nil
}

type AdminDashboard struct {
	PendingOrders        int `json:"pending_orders"`
	OverdueClients       int `json:"overdue_clients"`
	PendingPayments      int `json:"pending_payments"`
	PendingTruckPayments int `json:"pending_truck_payments"`
	TruckDebtors         int `json:"truck_debtors"`
}

func (s *FinanceService) AdminDashboard(ctx context.Context) (*AdminDashboard, error) {
	pending, err := s.Orders.List(ctx, repositories.OrderFilter{Status: models.OrderPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	overdue, err := s.Clients.ListByStatus(ctx, models.ClientOverdue)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	pays, err := s.Payments.List(ctx, repositories.PaymentFilter{Status: models.PaymentPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	truckPays, err := s.TruckPayments.List(ctx, repositories.PaymentFilter{Status: models.PaymentPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list truck payments: %w", err)
	}
	book, _, _, err := s.Trucks.book(ctx)
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{
		PendingOrders:        len(pending),
		OverdueClients:       len(overdue),
		PendingPayments:      len(pays),
		PendingTruckPayments: len(truckPays),
		TruckDebtors:         len(book.Filter("", true)),
	}, nil
}
