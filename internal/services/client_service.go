package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/metrics"
	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/repositories"
)

const clientLookupLimit = 20

type ClientService struct {
	Clients  ClientStore
	Orders   OrderStore
	Payments PaymentStore
	Now      Clock
}

func NewClientService(st Stores, now Clock) *ClientService {
	return &ClientService{Clients: st.Clients, Orders: st.Orders, Payments: st.Payments, Now: now}
}

// Resolve finds a client by id, code or name fragment.
func (s *ClientService) Resolve(ctx context.Context, token string) (*models.Client, error) {
	return resolveClient(ctx, s.Clients, token)
}

// Get looks a client up by internal id only.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	c, err := s.Clients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("client %s not found", id)
	}
	return c, nil
}

// Account finds the client a portal token acts for, by internal id or
// exact client code. Name fragments are not accepted.
func (s *ClientService) Account(ctx context.Context, ref string) (*models.Client, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperr.Validation("client is required")
	}
	c, err := s.Clients.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if c == nil {
		if c, err = s.Clients.GetByCode(ctx, ref); err != nil {
			return nil, fmt.Errorf("failed to get client by code: %w", err)
		}
	}
	if c == nil {
		return nil, apperr.NotFound("client %s not found", ref)
	}
	return c, nil
}

// clientCodePrefix is TT, the two-digit year and the last three digits of
// the phone number.
func clientCodePrefix(phone string, year int) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if len(digits) > 3 {
		digits = digits[len(digits)-3:]
	}
	digits = strings.Repeat("0", 3-len(digits)) + digits
	return fmt.Sprintf("TT%02d%s", year%100, digits)
}

func (s *ClientService) Register(ctx context.Context, req *models.RegisterClientRequest, createdBy string) (*models.Client, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	now := s.Now()

	prefix := clientCodePrefix(req.Phone, now.Year())
	n, err := s.Clients.CountCodePrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to count client codes: %w", err)
	}
	code := fmt.Sprintf("%s%04d", prefix, n+1)

	image := strings.TrimSpace(req.ImageURL)
	if image == "" {
		image = models.DefaultClientImage
	}
	c := &models.Client{
		ClientCode:   code,
		Name:         strings.TrimSpace(req.Name),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Location:     strings.TrimSpace(req.Location),
		IDType:       req.IDType,
		IDNumber:     strings.TrimSpace(req.IDNumber),
		NextOfKin:    strings.TrimSpace(req.NextOfKin),
		NextOfKinTel: strings.TrimSpace(req.NextOfKinTel),
		Relationship: req.Relationship,
		ImageURL:     image,
		Status:       models.ClientActive,
		CreatedBy:    createdBy,
	}
	c.Touch(now)
	if err := s.Clients.Create(ctx, c); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperr.Conflict("a client with code %s already exists", code)
		}
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	log.Info().Str("component", "clients").Str("client_code", code).Msg("client registered")
	return c, nil
}

// Lookup returns up to twenty clients whose name or code contains q.
func (s *ClientService) Lookup(ctx context.Context, q string) ([]models.Client, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return []models.Client{}, nil
	}
	cs, err := s.Clients.Search(ctx, q, clientLookupLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	return cs, nil
}

func (s *ClientService) UpdateTag(ctx context.Context, code string, req *models.UpdateTagRequest) (*models.Client, error) {
	if err := checkRequest(req); err != nil {
		return nil, err
	}
	c, err := s.Clients.GetByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFound("client %q not found", code)
	}
	color := strings.TrimSpace(req.Color)
	if color == "" {
		color = models.DefaultTagColor
	}
	c.Tag = &models.ClientTag{Label: strings.TrimSpace(req.Label), Color: color}
	c.Touch(s.Now())
	ok, err := s.Clients.Update(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}
	if !ok {
		return nil, apperr.NotFound("client %q not found", code)
	}
	return c, nil
}

type SweepResult struct {
	Checked  int      `json:"checked"`
	Overdue  []string `json:"marked_overdue"`
	Restored []string `json:"restored_active"`
}

// SweepOverdue flags active clients holding an unpaid order past its due
// date, and returns overdue clients with nothing past due to active.
func (s *ClientService) SweepOverdue(ctx context.Context) (*SweepResult, error) {
	now := s.Now()
	clients, err := s.Clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	orders, err := s.Orders.List(ctx, repositories.OrderFilter{Status: models.OrderApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	payments, err := s.Payments.List(ctx, repositories.PaymentFilter{Status: models.PaymentConfirmed})
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}

	res := &SweepResult{Overdue: []string{}, Restored: []string{}}
	for i := range clients {
		c := &clients[i]
		if c.Status != models.ClientActive && c.Status != models.ClientOverdue {
			continue
		}
		res.Checked++

		pastDue := false
		out := reconcile.ComputeOutstanding(reconcile.KeysOf(c), orders, payments, reconcile.Scope{})
		for _, ob := range out.Orders {
			if !ob.DueDate.IsZero() && ob.DueDate.Before(now) && ob.AmountLeft > 0 {
				pastDue = true
				break
			}
		}

		next := c.Status
		switch {
		case c.Status == models.ClientActive && pastDue:
			next = models.ClientOverdue
		case c.Status == models.ClientOverdue && !pastDue:
			next = models.ClientActive
		}
		if next == c.Status {
			continue
		}
		if err := s.Clients.SetStatus(ctx, c.ID, next); err != nil {
			return res, fmt.Errorf("failed to set status of client %s: %w", c.ClientCode, err)
		}
		metrics.OverdueSweeps.WithLabelValues(next).Inc()
		if next == models.ClientOverdue {
			res.Overdue = append(res.Overdue, c.ClientCode)
		} else {
			res.Restored = append(res.Restored, c.ClientCode)
		}
	}
	log.Info().Str("component", "clients").
		Int("checked", res.Checked).
		Int("overdue", len(res.Overdue)).
		Int("restored", len(res.Restored)).
		Msg("overdue sweep finished")
	return res, nil
}

type ClientDashboard struct {
	Client       *models.Client `json:"client"`
	OrderCount   int            `json:"order_count"`
	TotalDebt    float64        `json:"total_debt"`
	TotalPaid    float64        `json:"total_paid"`
	AmountLeft   float64        `json:"amount_left"`
	RecentOrders []models.Order `json:"recent_orders"`
}

func newestFirst(orders []models.Order) {
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].When().After(orders[j].When()) })
}

func (s *ClientService) Dashboard(ctx context.Context, c *models.Client) (*ClientDashboard, error) {
	orders, payments, err := clientBooks(ctx, s.Orders, s.Payments, c)
	if err != nil {
		return nil, err
	}
	out := reconcile.ComputeOutstanding(reconcile.KeysOf(c), orders, payments, reconcile.Scope{})

	newestFirst(orders)
	recent := orders
	if len(recent) > 5 {
		recent = recent[:5]
	}
	return &ClientDashboard{
		Client:       c,
		OrderCount:   len(orders),
		TotalDebt:    out.TotalDebt,
		TotalPaid:    out.TotalPaid,
		AmountLeft:   out.AmountLeft,
		RecentOrders: recent,
	}, nil
}

type OrderHistory struct {
	Orders       []models.Order          `json:"orders"`
	LatestOrder  *reconcile.OrderBalance `json:"latest_order"`
	LatestPaid   float64                 `json:"latest_paid"`
	LatestAmount float64                 `json:"latest_amount_left"`
}

// OrderHistory lists every order of the client, newest first, with what
// is paid and left on the latest approved one.
func (s *ClientService) OrderHistory(ctx context.Context, c *models.Client) (*OrderHistory, error) {
	orders, payments, err := clientBooks(ctx, s.Orders, s.Payments, c)
	if err != nil {
		return nil, err
	}
	newestFirst(orders)

	h := &OrderHistory{Orders: orders}
	for i := range orders {
		if !orders[i].IsApproved() {
			continue
		}
		out := reconcile.ComputeOutstanding(reconcile.KeysOf(c), orders, payments, reconcile.Scope{OrderRef: orders[i].ID})
		if len(out.Orders) == 1 {
			h.LatestOrder = &out.Orders[0]
			h.LatestPaid = out.TotalPaid
			h.LatestAmount = out.AmountLeft
		}
		break
	}
	return h, nil
}

type DebtList struct {
	Orders     []reconcile.OrderBalance `json:"orders"`
	GrandTotal float64                  `json:"grand_total"`
}

// OrdersWithDebt lists the client's approved orders that still have an
// amount left, newest first.
func (s *ClientService) OrdersWithDebt(ctx context.Context, c *models.Client) (*DebtList, error) {
	orders, payments, err := clientBooks(ctx, s.Orders, s.Payments, c)
	if err != nil {
		return nil, err
	}
	out := reconcile.ComputeOutstanding(reconcile.KeysOf(c), orders, payments, reconcile.Scope{})

	list := &DebtList{Orders: []reconcile.OrderBalance{}}
	for _, ob := range out.Orders {
		if ob.AmountLeft > 0 {
			list.Orders = append(list.Orders, ob)
			list.GrandTotal += ob.AmountLeft
		}
	}
	sort.SliceStable(list.Orders, func(i, j int) bool { return list.Orders[i].Date.After(list.Orders[j].Date) })
	list.GrandTotal = reconcile.Round2(list.GrandTotal)
	return list, nil
}
