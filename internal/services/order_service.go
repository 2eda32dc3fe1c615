package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
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

const (
	orderCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	orderCodeLength   = 5
	orderCodeAttempts = 10
)

// PriceSource looks up the current prices of a product by name.
type PriceSource interface {
	Price(ctx context.Context, name string) (*models.Product, error)
}

type OrderService struct {
	Clients ClientStore
	Orders  OrderStore
	BDCs    BDCStore
	Trucks  TruckStore
	Prices  PriceSource
	Now     Clock
	// NewCode generates order short codes; tests replace it.
	NewCode func() string
}

func NewOrderService(st Stores, prices PriceSource, now Clock) *OrderService {
	return &OrderService{
		Clients: st.Clients,
		Orders:  st.Orders,
		BDCs:    st.BDCs,
		Trucks:  st.Trucks,
		Prices:  prices,
		Now:     now,
		NewCode: randomOrderCode,
	}
}

func randomOrderCode() string {
	b := make([]byte, orderCodeLength)
	for i := range b {
		b[i] = orderCodeAlphabet[rand.IntN(len(orderCodeAlphabet))]
	}
	return string(b)
}

func parseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(strings.ReplaceAll(raw, ",", "")))
	if err != nil {
		return 0, apperr.Validation("quantity must be a whole number")
	}
	if q <= 0 {
		return 0, apperr.Validation("quantity must be greater than zero")
	}
	return q, nil
}

// Submit places a pending order for the client. When the vehicle is a
// registered truck, a pending truck order is created with it.
func (s *OrderService) Submit(ctx context.Context, c *models.Client, req *models.SubmitOrderRequest) (*models.Order, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	qty, err := parseQuantity(req.Quantity)
	if err != nil {
		return nil, err
	}
	now := s.Now()

	o := &models.Order{
		ClientID:      models.Ref(c.ID),
		Product:       strings.TrimSpace(req.Product),
		Quantity:      models.Amount(qty),
		Region:        strings.TrimSpace(req.Region),
		VehicleNumber: strings.TrimSpace(req.VehicleNumber),
		DriverName:    strings.TrimSpace(req.DriverName),
		DriverPhone:   strings.TrimSpace(req.DriverPhone),
		Status:        models.OrderPending,
		Date:          models.NewDate(now),
	}
	o.Touch(now)

	if s.Prices != nil {
		p, err := s.Prices.Price(ctx, o.Product)
		switch {
		case err != nil && !apperr.Is(err, apperr.KindNotFound):
			return nil, err
		case p != nil:
			pp, sp := p.PPrice, p.SPrice
			o.ProductPPrice, o.ProductSPrice = &pp, &sp
		}
	}

	truck, err := s.Trucks.GetTruckByNumber(ctx, o.VehicleNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to look up truck: %w", err)
	}

	for attempt := 0; attempt < orderCodeAttempts; attempt++ {
		o.ID = ""
		o.OrderCode = s.NewCode()
		if truck == nil {
			err = s.Orders.Create(ctx, o)
		} else {
			err = s.Orders.CreateWithTruckOrder(ctx, o, truckOrderFor(truck, c, o, now))
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			break
		}
		log.Debug().Str("component", "orders").Str("code", o.OrderCode).Msg("order code collision, retrying")
	}
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("could not allocate a unique order code")
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Info().Str("component", "orders").
		Str("order_code", o.OrderCode).
		Str("client_code", c.ClientCode).
		Bool("truck", truck != nil).
		Msg("order submitted")
	return o, nil
}

func truckOrderFor(t *models.Truck, c *models.Client, o *models.Order, now time.Time) *models.TruckOrder {
	driver, phone := t.DriverName, t.DriverPhone
	if driver == "" {
		driver = o.DriverName
	}
	if phone == "" {
		phone = o.DriverPhone
	}
	to := &models.TruckOrder{
		TruckID:     models.Ref(t.ID),
		TruckNumber: t.TruckNumber,
		DriverName:  driver,
		DriverPhone: phone,
		ClientID:    models.Ref(c.ID),
		ClientName:  c.Name,
		ClientPhone: c.Phone,
		OrderCode:   o.OrderCode,
		Destination: o.Region,
		Status:      models.TruckOrderPending,
	}
	to.Touch(now)
	return to
}

type PendingOrder struct {
	models.Order
	ClientName string   `json:"client_name"`
	ClientCode string   `json:"client_code"`
	Margin     *float64 `json:"snapshot_margin,omitempty"`
	Returns    *float64 `json:"snapshot_returns,omitempty"`
}

// ListPending returns pending orders newest first with their client and
// the margin implied by the price snapshot.
func (s *OrderService) ListPending(ctx context.Context) ([]PendingOrder, error) {
	orders, err := s.Orders.List(ctx, repositories.OrderFilter{Status: models.OrderPending})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	clients, err := s.Clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	dir := reconcile.NewDirectory(clients)
	newestFirst(orders)

	out := make([]PendingOrder, 0, len(orders))
	for i := range orders {
		po := PendingOrder{Order: orders[i]}
		if c := dir.Lookup(orders[i].ClientID); c != nil {
			po.ClientName, po.ClientCode = c.Name, c.ClientCode
		}
		if sp, pp := orders[i].ProductSPrice, orders[i].ProductPPrice; sp != nil && pp != nil {
			m := reconcile.Round2(sp.Float() - pp.Float())
			r := reconcile.Round2(m * orders[i].Quantity.Float())
			po.Margin, po.Returns = &m, &r
		}
		out = append(out, po)
	}
	return out, nil
}

func (s *OrderService) findBDC(ctx context.Context, ref string) (*models.BDC, error) {
	ref = strings.TrimSpace(ref)
	var (
		b   *models.BDC
		err error
	)
	if models.IsInternalID(ref) {
		b, err = s.BDCs.Get(ctx, ref)
	}
	if err == nil && b == nil {
		b, err = s.BDCs.GetByName(ctx, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bdc: %w", err)
	}
	if b == nil {
		return nil, apperr.NotFound("bdc %q not found", ref)
	}
	return b, nil
}

// Approve prices a pending order and marks it approved. A BDC payment type
// records what was paid to the BDC for the product as an entry on the BDC,
// saved together with the order. The entry is not embedded in the order:
// embedded entries count as client payments there.
func (s *OrderService) Approve(ctx context.Context, id string, req *models.ApproveOrderRequest) (*models.Order, error) {
	o, err := s.Orders.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order %s not found", id)
	}
	if o.IsApproved() {
		return nil, apperr.Conflict("order %s is already approved", o.OrderCode)
	}

	mode := strings.ToLower(strings.TrimSpace(req.OrderType))
	if mode == "" {
		mode = models.OrderTypeCombo
	}
	if strings.TrimSpace(req.OMC) == "" || strings.TrimSpace(req.Depot) == "" {
		return nil, apperr.Validation("omc and depot are required")
	}

	in := reconcile.PriceInput{Mode: mode, Quantity: o.Quantity.Float()}
	prices := []struct {
		raw   string
		field string
		dst   **float64
	}{
		{req.PBDC, "p_bdc_omc", &in.PBDC},
		{req.SBDC, "s_bdc_omc", &in.SBDC},
		{req.PTax, "p_tax", &in.PTax},
		{req.STax, "s_tax", &in.STax},
	}
	for _, p := range prices {
		if *p.dst, err = parseOptional(p.raw, p.field); err != nil {
			return nil, err
		}
	}
	pricing, err := reconcile.PriceOrder(in)
	if err != nil {
		return nil, err
	}

	var bdc *models.BDC
	if mode != models.OrderTypeSTax {
		if strings.TrimSpace(req.BDC) == "" {
			return nil, apperr.Validation("bdc is required for %s orders", mode)
		}
		if bdc, err = s.findBDC(ctx, req.BDC); err != nil {
			return nil, err
		}
	}

	var due models.Date
	if d := strings.TrimSpace(req.DueDate); d != "" {
		t, err := timeutil.ParseDate(d)
		if err != nil {
			return nil, apperr.Validation("due_date must be YYYY-MM-DD")
		}
		due = models.NewDate(t)
	}

	now := s.Now()
	o.OrderType = pricing.Mode
	o.OMC = strings.TrimSpace(req.OMC)
	o.Depot = strings.TrimSpace(req.Depot)
	o.Shareholder = strPtr(req.Shareholder)
	o.PBDC, o.SBDC = amountPtr(in.PBDC), amountPtr(in.SBDC)
	o.PTax, o.STax = amountPtr(in.PTax), amountPtr(in.STax)
	o.TotalDebt = models.Amount(pricing.TotalDebt)
	o.MarginPrice = amountPtr(pricing.MarginPrice)
	o.MarginTax = amountPtr(pricing.MarginTax)
	o.Margin = amountPtr(pricing.Margin)
	o.ReturnsSBDC = models.Amount(pricing.ReturnsSBDC)
	o.ReturnsSTax = models.Amount(pricing.ReturnsSTax)
	o.ReturnsTotal = models.Amount(pricing.ReturnsTotal)
	if pricing.Margin != nil {
		o.Returns = models.Amount(reconcile.Round2(*pricing.Margin * o.Quantity.Float()))
	}
	o.DueDate = due
	if bdc != nil {
		o.BDCID, o.BDCName = models.Ref(bdc.ID), bdc.Name
	}
	o.Status = models.OrderApproved
	o.DeliveryStatus = models.DeliveryPending
	o.Touch(now)

	var entry *models.PaymentDetail
	ptype := strings.ToLower(strings.TrimSpace(req.PaymentType))
	if mode != models.OrderTypeSTax && ptype != "" {
		switch ptype {
		case models.BDCPaymentCash, models.BDCPaymentFromAccount, models.BDCPaymentCredit:
		default:
			return nil, apperr.Validation("payment_type must be cash, from account or credit")
		}
		if in.PBDC == nil {
			return nil, apperr.Validation("P-BDC is required to compute payment amount")
		}
		clientName := "-"
		if c, err := s.Clients.Get(ctx, o.ClientID.String()); err == nil && c != nil {
			clientName = c.Name
		}
		entry = &models.PaymentDetail{
			OrderID:        models.Ref(o.ID),
			PaymentType:    strings.TrimSpace(req.PaymentType),
			Amount:         models.Amount(reconcile.Round2(o.Quantity.Float() * *in.PBDC)),
			ClientName:     clientName,
			Product:        o.Product,
			VehicleNumber:  o.VehicleNumber,
			DriverName:     o.DriverName,
			DriverPhone:    o.DriverPhone,
			Quantity:       o.Quantity,
			Region:         o.Region,
			DeliveryStatus: models.DeliveryPending,
			Shareholder:    o.Shareholder,
			Date:           models.NewDate(now),
		}
	}

	if err := s.Orders.ApplyPricing(ctx, o, entry); err != nil {
		if entry != nil {
			metrics.DualWriteFailures.WithLabelValues("approve_order").Inc()
			return nil, apperr.PartialWrite("order approval and bdc payment entry were not saved", err)
		}
		return nil, fmt.Errorf("failed to approve order: %w", err)
	}
	metrics.OrdersApproved.Inc()
	log.Info().Str("component", "orders").
		Str("order_code", o.OrderCode).
		Str("mode", pricing.Mode).
		Float64("total_debt", pricing.TotalDebt).
		Msg("order approved")
	return o, nil
}
