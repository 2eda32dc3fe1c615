package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/metrics"
	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/repositories"
)

// ProofUploader stores a payment proof file and returns its public URL.
type ProofUploader interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error)
}

// Proof is an uploaded proof-of-payment file.
type Proof struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type PaymentService struct {
	Clients       ClientStore
	Orders        OrderStore
	Payments      PaymentStore
	TruckPayments PaymentStore
	Proofs        ProofUploader
	Now           Clock
}

func NewPaymentService(st Stores, proofs ProofUploader, now Clock) *PaymentService {
	return &PaymentService{
		Clients:       st.Clients,
		Orders:        st.Orders,
		Payments:      st.Payments,
		TruckPayments: st.TruckPayments,
		Proofs:        proofs,
		Now:           now,
	}
}

func (s *PaymentService) storeProof(ctx context.Context, c *models.Client, proof *Proof) (string, error) {
	if s.Proofs == nil {
		return "", apperr.Validation("proof uploads are not configured; provide proof_url")
	}
	key := fmt.Sprintf("proofs/%s/%s%s", c.ClientCode, uuid.NewString(), strings.ToLower(path.Ext(proof.Filename)))
	url, err := s.Proofs.Upload(ctx, key, proof.Body, proof.Size, proof.ContentType)
	if err != nil {
		return "", fmt.Errorf("failed to upload payment proof: %w", err)
	}
	return url, nil
}

// Submit records a pending payment from the client. Order payments must
// name one of the client's orders; truck payments go to the truck ledger.
func (s *PaymentService) Submit(ctx context.Context, c *models.Client, req *models.SubmitPaymentRequest, proof *Proof) (*models.Payment, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	amount, err := parsePositive(req.Amount, "amount")
	if err != nil {
		return nil, err
	}
	proofURL := strings.TrimSpace(req.ProofURL)
	if proofURL == "" && proof == nil {
		return nil, apperr.Validation("proof of payment is required")
	}

	kind := strings.ToLower(strings.TrimSpace(req.PaymentType))
	if kind == "" {
		kind = models.PaymentForOrder
	}
	if kind != models.PaymentForOrder && kind != models.PaymentForTruck {
		return nil, apperr.Validation("payment_type must be order or truck")
	}

	now := s.Now()
	p := &models.Payment{
		ClientID:     models.Ref(c.ID),
		Amount:       models.Amount(amount),
		Status:       models.PaymentPending,
		Date:         models.NewDate(now),
		BankName:     strings.TrimSpace(req.BankName),
		AccountLast4: strings.TrimSpace(req.AccountLast4),
	}
	p.Touch(now)

	store := s.TruckPayments
	if kind == models.PaymentForOrder {
		store = s.Payments
		ref := strings.TrimSpace(req.OrderID)
		if ref == "" {
			return nil, apperr.Validation("please select an order to pay for")
		}
		o, err := s.Orders.GetByRef(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("failed to get order: %w", err)
		}
		if o == nil || !reconcile.KeysOf(c).Has(o.ClientID) {
			return nil, apperr.NotFound("order %s not found for your account", ref)
		}
		p.OrderID = models.Ref(o.ID)
		p.OrderRef = models.Ref(o.OrderCode)
	}

	if proofURL == "" {
		if proofURL, err = s.storeProof(ctx, c, proof); err != nil {
			return nil, err
		}
	}
	p.ProofURL = proofURL

	if err := store.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	log.Info().Str("component", "payments").
		Str("client_code", c.ClientCode).
		Str("kind", kind).
		Float64("amount", amount).
		Msg("payment submitted")
	return p, nil
}

// PaymentView is a payment with the client it came from and its ledger.
type PaymentView struct {
	models.Payment
	Kind       string `json:"kind"`
	ClientName string `json:"client_name"`
	ClientCode string `json:"client_code"`
}

func (s *PaymentService) views(ctx context.Context, f repositories.PaymentFilter) ([]PaymentView, error) {
	orderPays, err := s.Payments.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	truckPays, err := s.TruckPayments.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to list truck payments: %w", err)
	}
	clients, err := s.Clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	dir := reconcile.NewDirectory(clients)

	out := make([]PaymentView, 0, len(orderPays)+len(truckPays))
	add := func(ps []models.Payment, kind string) {
		for i := range ps {
			v := PaymentView{Payment: ps[i], Kind: kind}
			if c := dir.Lookup(ps[i].ClientID); c != nil {
				v.ClientName, v.ClientCode = c.Name, c.ClientCode
			}
			out = append(out, v)
		}
	}
	add(orderPays, models.PaymentForOrder)
	add(truckPays, models.PaymentForTruck)
	sort.SliceStable(out, func(i, j int) bool { return out[i].When().After(out[j].When()) })
	return out, nil
}

// ListPending returns order and truck payments awaiting confirmation,
// newest first.
func (s *PaymentService) ListPending(ctx context.Context) ([]PaymentView, error) {
	return s.views(ctx, repositories.PaymentFilter{Status: models.PaymentPending})
}

// History returns every payment the client made, newest first.
func (s *PaymentService) History(ctx context.Context, c *models.Client) ([]PaymentView, error) {
	return s.views(ctx, repositories.PaymentFilter{Clients: clientFilter(c)})
}

// Confirm marks an order payment confirmed. Confirming twice is a no-op.
func (s *PaymentService) Confirm(ctx context.Context, id, by string) (*models.Payment, error) {
	return confirmPayment(ctx, s.Payments, models.PaymentForOrder, id, by, s.Now)
}

func confirmPayment(ctx context.Context, store PaymentStore, kind, id, by string, now Clock) (*models.Payment, error) {
	p, err := store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if p == nil {
		return nil, apperr.NotFound("payment %s not found", id)
	}
	if p.IsConfirmed() {
		return p, nil
	}
	at := now()
	changed, err := store.Confirm(ctx, p.ID, by, at)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm payment: %w", err)
	}
	if changed {
		metrics.PaymentsConfirmed.WithLabelValues(kind).Inc()
		log.Info().Str("component", "payments").Str("payment_id", p.ID).Str("kind", kind).Str("by", by).Msg("payment confirmed")
	}
	p.Status = models.PaymentConfirmed
	p.ConfirmedBy = by
	p.ConfirmedAt = models.NewDate(at)
	return p, nil
}
