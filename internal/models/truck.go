package models

import "time"

// Truck order statuses
const (
	TruckOrderPending   = "pending"
	TruckOrderEnroute   = "enroute"
	TruckOrderDelivered = "Delivered"
)

type Truck struct {
	Document
	TruckNumber string `json:"truck_number"`
	Product     string `json:"product,omitempty"`
	Capacity    string `json:"capacity,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
}

type TruckExpense struct {
	Document
	OrderID     Ref    `json:"order_id"`
	TruckNumber string `json:"truck_number,omitempty"`
	Label       string `json:"label"`
	Amount      Amount `json:"amount"`
}

// TruckOrder is a haulage job billed to a client. Orders placed through
// the portal on a registered truck also carry the fuel order's id and
// short code.
type TruckOrder struct {
	Document
	TruckID     Ref            `json:"truck_id"`
	TruckNumber string         `json:"truck_number"`
	DriverName  string         `json:"driver_name,omitempty"`
	DriverPhone string         `json:"driver_phone,omitempty"`
	ClientID    Ref            `json:"client_id"`
	ClientName  string         `json:"client_name,omitempty"`
	ClientPhone string         `json:"client_phone,omitempty"`
	OrderRef    Ref            `json:"order_ref,omitempty"`
	OrderCode   string         `json:"order_id,omitempty"`
	Destination string         `json:"destination"`
	TotalDebt   Amount         `json:"total_debt"`
	Status      string         `json:"status"`
	StartedAt   Date           `json:"started_at"`
	DeliveredAt Date           `json:"delivered_at"`
	Expenses    []TruckExpense `json:"expenses,omitempty"`
}

func (o *TruckOrder) When() time.Time { return o.CreatedAt.Time }

type AddTruckRequest struct {
	TruckNumber string `json:"truck_number" validate:"required"`
	Product     string `json:"product"`
	Capacity    string `json:"capacity"`
	DriverName  string `json:"driver_name"`
	DriverPhone string `json:"driver_phone"`
}

type InitiateTruckOrderRequest struct {
	TruckID     string `json:"truck_id" validate:"required"`
	Destination string `json:"destination" validate:"required"`
	TotalDebt   string `json:"total_debt" validate:"required"`
	ClientID    string `json:"client_id"`
	ClientName  string `json:"client_name"`
	ClientPhone string `json:"client_phone"`
}

type TruckExpenseRequest struct {
	Label  string `json:"label" validate:"required"`
	Amount string `json:"amount" validate:"required"`
}
