package services

import (
	"context"
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
)

type DeliveryService struct {
	Clients ClientStore
	Orders  OrderStore
	Now     Clock
}

func NewDeliveryService(st Stores, now Clock) *DeliveryService {
	return &DeliveryService{Clients: st.Clients, Orders: st.Orders, Now: now}
}

type DeliveryFilter struct {
	Status string
	Region string
	BDC    string
}

type Delivery struct {
	OrderID        string    `json:"order_id"`
	OrderCode      string    `json:"order_code"`
	BDCName        string    `json:"bdc_name"`
	ClientName     string    `json:"client_name"`
	Product        string    `json:"product"`
	VehicleNumber  string    `json:"vehicle_number"`
	DriverName     string    `json:"driver_name"`
	DriverPhone    string    `json:"driver_phone"`
	Quantity       float64   `json:"quantity"`
	Region         string    `json:"region"`
	DeliveryStatus string    `json:"delivery_status"`
	Date           time.Time `json:"date"`
	DeliveredDate  time.Time `json:"delivered_date"`
}

type DeliveryBoard struct {
	Deliveries []Delivery `json:"deliveries"`
	Pending    int        `json:"pending"`
	Delivered  int        `json:"delivered"`
	Regions    []string   `json:"regions"`
	BDCs       []string   `json:"bdcs"`
}

func distinctSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// List returns approved orders with their delivery state, newest first.
func (s *DeliveryService) List(ctx context.Context, f DeliveryFilter) (*DeliveryBoard, error) {
	orders, err := s.Orders.List(ctx, repositories.OrderFilter{
		Status:         models.OrderApproved,
		DeliveryStatus: strings.TrimSpace(f.Status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	clients, err := s.Clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	dir := reconcile.NewDirectory(clients)
	newestFirst(orders)

	board := &DeliveryBoard{Deliveries: []Delivery{}}
	regions, bdcs := map[string]struct{}{}, map[string]struct{}{}
	for i := range orders {
		o := &orders[i]
		if f.Region != "" && o.Region != f.Region {
			continue
		}
		if f.BDC != "" && o.BDCName != f.BDC {
			continue
		}
		status := strings.ToLower(o.DeliveryStatus)
		if status == "" {
			status = models.DeliveryPending
		}
		if status == models.DeliveryDelivered {
			board.Delivered++
		} else {
			board.Pending++
		}
		name := "Unknown"
		if c := dir.Lookup(o.ClientID); c != nil {
			name = c.Name
		}
		bdcName := o.BDCName
		if bdcName == "" {
			bdcName = "Unknown BDC"
		}
		board.Deliveries = append(board.Deliveries, Delivery{
			OrderID:        o.ID,
			OrderCode:      o.OrderCode,
			BDCName:        bdcName,
			ClientName:     name,
			Product:        o.Product,
			VehicleNumber:  o.VehicleNumber,
			DriverName:     o.DriverName,
			DriverPhone:    o.DriverPhone,
			Quantity:       o.Quantity.Float(),
			Region:         o.Region,
			DeliveryStatus: status,
			Date:           o.When(),
			DeliveredDate:  o.DeliveredDate.Time,
		})
		if o.Region != "" {
			regions[o.Region] = struct{}{}
		}
		bdcs[bdcName] = struct{}{}
	}
	board.Regions = distinctSorted(regions)
	board.BDCs = distinctSorted(bdcs)
	return board, nil
}

// UpdateStatus records a delivery status on the order and on the BDC
// payment entry that mirrors it, as one write.
func (s *DeliveryService) UpdateStatus(ctx context.Context, orderID, status string) (*models.DeliveryUpdate, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, apperr.Validation("status cannot be empty")
	}
	res, err := s.Orders.SetDeliveryStatus(ctx, orderID, status, s.Now())
	if err != nil {
		metrics.DualWriteFailures.WithLabelValues("delivery_status").Inc()
		log.Error().Err(err).Str("component", "deliveries").Str("order_id", orderID).Msg("delivery status update rolled back")
		return nil, apperr.PartialWrite("order and bdc delivery status were not updated", err)
	}
	if res == nil {
		return nil, apperr.NotFound("order %s not found", orderID)
	}
	return res, nil
}

// History returns the order's delivery events, newest first.
func (s *DeliveryService) History(ctx context.Context, orderID string) ([]models.DeliveryEvent, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if o == nil {
		return nil, apperr.NotFound("order %s not found", orderID)
	}
	history := append([]models.DeliveryEvent{}, o.DeliveryHistory...)
	sort.SliceStable(history, func(i, j int) bool { return history[i].Timestamp.After(history[j].Timestamp.Time) })
	return history, nil
}
