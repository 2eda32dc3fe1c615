package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/metrics"
	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/repositories"
	"fuel-backend/internal/timeutil"
)

// BDCService manages BDC accounts. Balances are derived on every read from
// deposits and payment entries; nothing here stores one.
type BDCService struct {
	BDCs BDCStore
	Now  Clock
}

func NewBDCService(st Stores, now Clock) *BDCService {
	return &BDCService{BDCs: st.BDCs, Now: now}
}

type BDCSummary struct {
	models.BDC
	reconcile.BDCBalance
}

func (s *BDCService) get(ctx context.Context, id string) (*models.BDC, error) {
	b, err := s.BDCs.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get bdc: %w", err)
	}
	if b == nil {
		return nil, apperr.NotFound("bdc %s not found", id)
	}
	return b, nil
}

// Balance derives the BDC's current balance.
func (s *BDCService) Balance(ctx context.Context, id string) (reconcile.BDCBalance, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return reconcile.BDCBalance{}, err
	}
	return s.balanceOf(ctx, b)
}

func (s *BDCService) balanceOf(ctx context.Context, b *models.BDC) (reconcile.BDCBalance, error) {
	txns, err := s.BDCs.ListTransactions(ctx, b.ID)
	if err != nil {
		return reconcile.BDCBalance{}, fmt.Errorf("failed to list bdc transactions: %w", err)
	}
	return reconcile.ComputeBDCBalance(b, txns), nil
}

// List returns every BDC by name with its derived balance.
func (s *BDCService) List(ctx context.Context) ([]BDCSummary, error) {
	bdcs, err := s.BDCs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bdcs: %w", err)
	}
	txns, err := s.BDCs.ListTransactions(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list bdc transactions: %w", err)
	}
	out := make([]BDCSummary, 0, len(bdcs))
	for i := range bdcs {
		out = append(out, BDCSummary{BDC: bdcs[i], BDCBalance: reconcile.ComputeBDCBalance(&bdcs[i], txns)})
	}
	return out, nil
}

func (s *BDCService) Add(ctx context.Context, req *models.AddBDCRequest) (*models.BDC, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	existing, err := s.BDCs.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to check bdc name: %w", err)
	}
	if existing != nil {
		return nil, apperr.Conflict("bdc %q already exists", name)
	}
	b := &models.BDC{
		Name:           name,
		Phone:          strings.TrimSpace(req.Phone),
		Location:       strings.TrimSpace(req.Location),
		RepName:        strings.TrimSpace(req.RepName),
		RepPhone:       strings.TrimSpace(req.RepPhone),
		PaymentDetails: []models.PaymentDetail{},
	}
	b.Touch(s.Now())
	if err := s.BDCs.Create(ctx, b); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("bdc %q already exists", name)
		}
		return nil, fmt.Errorf("failed to create bdc: %w", err)
	}
	return b, nil
}

// Deposit records money paid into the BDC account. The request type must
// be "add"; it is stored as a deposit.
func (s *BDCService) Deposit(ctx context.Context, id string, req *models.DepositRequest) (reconcile.BDCBalance, error) {
	amount := models.ParseAmount(req.Amount)
	if amount <= 0 || strings.ToLower(strings.TrimSpace(req.Type)) != "add" {
		return reconcile.BDCBalance{}, apperr.Validation("invalid transaction type or amount")
	}
	b, err := s.get(ctx, id)
	if err != nil {
		return reconcile.BDCBalance{}, err
	}
	now := s.Now()
	txn := &models.BDCTransaction{
		BDCID:  models.Ref(b.ID),
		Type:   models.BDCTransactionDeposit,
		Amount: models.Amount(amount),
		Note:   strings.TrimSpace(req.Note),
		Date:   models.NewDate(now),
	}
	txn.Touch(now)
	if err := s.BDCs.AddTransaction(ctx, txn); err != nil {
		return reconcile.BDCBalance{}, fmt.Errorf("failed to add bdc deposit: %w", err)
	}
	return s.balanceOf(ctx, b)
}

// RecordPayment appends a cash, from-account or credit entry to the BDC.
func (s *BDCService) RecordPayment(ctx context.Context, id string, req *models.BDCPaymentRequest) (reconcile.BDCBalance, error) {
	ptype := strings.ToLower(strings.TrimSpace(req.PaymentType))
	amount := models.ParseAmount(req.Amount)
	switch ptype {
	case models.BDCPaymentCash, models.BDCPaymentFromAccount, models.BDCPaymentCredit:
	default:
		return reconcile.BDCBalance{}, apperr.Validation("invalid payment type or amount")
	}
	if amount <= 0 {
		return reconcile.BDCBalance{}, apperr.Validation("invalid payment type or amount")
	}
	b, err := s.get(ctx, id)
	if err != nil {
		return reconcile.BDCBalance{}, err
	}
	client := strings.TrimSpace(req.ClientName)
	if client == "" {
		client = "-"
	}
	entry := &models.PaymentDetail{
		OrderID:        models.Ref(strings.TrimSpace(req.OrderID)),
		PaymentType:    ptype,
		Amount:         models.Amount(amount),
		ClientName:     client,
		Product:        strings.TrimSpace(req.Product),
		VehicleNumber:  strings.TrimSpace(req.VehicleNumber),
		DriverName:     strings.TrimSpace(req.DriverName),
		DriverPhone:    strings.TrimSpace(req.DriverPhone),
		Quantity:       models.Amount(models.ParseAmount(req.Quantity)),
		Region:         strings.TrimSpace(req.Region),
		DeliveryStatus: models.DeliveryPending,
		Date:           models.NewDate(s.Now()),
	}
	ok, err := s.BDCs.AddPaymentDetail(ctx, b.ID, entry)
	if err != nil {
		return reconcile.BDCBalance{}, fmt.Errorf("failed to add bdc payment: %w", err)
	}
	if !ok {
		return reconcile.BDCBalance{}, apperr.NotFound("bdc %s not found", id)
	}
	b.PaymentDetails = append(b.PaymentDetails, *entry)
	return s.balanceOf(ctx, b)
}

// BDCEntry is a payment entry with its position in the stored list, which
// delivery updates address it by.
type BDCEntry struct {
	Index int `json:"index"`
	models.PaymentDetail
}

type BDCProfile struct {
	BDC      *models.BDC             `json:"bdc"`
	Deposits []models.BDCTransaction `json:"transactions"`
	Payments []BDCEntry              `json:"payments"`
	reconcile.BDCBalance
}

// Profile returns the BDC with its deposits (optionally between start and
// end, YYYY-MM-DD) and payment entries, newest first.
func (s *BDCService) Profile(ctx context.Context, id, start, end string) (*BDCProfile, error) {
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	txns, err := s.BDCs.ListTransactions(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bdc transactions: %w", err)
	}

	var from, until time.Time
	if t, err := timeutil.ParseDate(start); err == nil {
		from = t
	}
	if t, err := timeutil.ParseDate(end); err == nil {
		until = timeutil.EndOfDay(t)
	}
	deposits := []models.BDCTransaction{}
	for i := range txns {
		when := txns[i].When()
		if !from.IsZero() && when.Before(from) {
			continue
		}
		if !until.IsZero() && when.After(until) {
			continue
		}
		deposits = append(deposits, txns[i])
	}
	sort.SliceStable(deposits, func(i, j int) bool { return deposits[i].When().After(deposits[j].When()) })

	entries := make([]BDCEntry, 0, len(b.PaymentDetails))
	for i, pd := range b.PaymentDetails {
		entries = append(entries, BDCEntry{Index: i, PaymentDetail: pd})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Date.After(entries[j].Date.Time) })

	return &BDCProfile{
		BDC:        b,
		Deposits:   deposits,
		Payments:   entries,
		BDCBalance: reconcile.ComputeBDCBalance(b, txns),
	}, nil
}

// UpdateDelivery sets the delivery status of one payment entry and of the
// order it references, together.
func (s *BDCService) UpdateDelivery(ctx context.Context, id string, index int, status string) (*models.DeliveryUpdate, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperr.Validation("missing index or status")
	}
	b, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(b.PaymentDetails) {
		return nil, apperr.Validation("invalid payment index %d", index)
	}
	res, err := s.BDCs.SetEntryDelivery(ctx, b.ID, index, status, s.Now())
	if err != nil {
		metrics.DualWriteFailures.WithLabelValues("bdc_delivery").Inc()
		log.Error().Err(err).Str("component", "bdc").Str("bdc_id", id).Int("index", index).Msg("bdc delivery update rolled back")
		return nil, apperr.PartialWrite("bdc entry and order delivery status were not updated", err)
	}
	if res == nil {
		return nil, apperr.NotFound("bdc %s not found", id)
	}
	return res, nil
}
