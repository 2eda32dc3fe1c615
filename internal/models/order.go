package models

import "time"

// Order statuses
const (
	OrderPending  = "pending"
	OrderApproved = "approved"
)

// Delivery statuses
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
)

// Pricing modes
const (
	OrderTypeSBDC  = "s_bdc"
	OrderTypeSTax  = "s_tax"
	OrderTypeCombo = "combo"
)

// PaymentDetail is a payment entry recorded on a BDC. Older orders embed
// client payments in the same shape.
type PaymentDetail struct {
	OrderID        Ref     `json:"order_id"`
	PaymentType    string  `json:"payment_type"`
	Amount         Amount  `json:"amount"`
	ClientName     string  `json:"client_name,omitempty"`
	Product        string  `json:"product,omitempty"`
	VehicleNumber  string  `json:"vehicle_number,omitempty"`
	DriverName     string  `json:"driver_name,omitempty"`
	DriverPhone    string  `json:"driver_phone,omitempty"`
	Quantity       Amount  `json:"quantity,omitempty"`
	Region         string  `json:"region,omitempty"`
	DeliveryStatus string  `json:"delivery_status,omitempty"`
	Shareholder    *string `json:"shareholder,omitempty"`
	Date           Date    `json:"date"`
}

type DeliveryEvent struct {
	Status    string `json:"status"`
	Timestamp Date   `json:"timestamp"`
}

type Order struct {
	Document
	OrderCode     string `json:"order_id"`
	ClientID      Ref    `json:"client_id"`
	Product       string `json:"product"`
	Quantity      Amount `json:"quantity"`
	Region        string `json:"region"`
	VehicleNumber string `json:"vehicle_number"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
	Status        string `json:"status"`
	Date          Date   `json:"date"`

	ProductPPrice *Amount `json:"product_p_price,omitempty"`
	ProductSPrice *Amount `json:"product_s_price,omitempty"`

	OMC          string  `json:"omc,omitempty"`
	Depot        string  `json:"depot,omitempty"`
	Shareholder  *string `json:"shareholder,omitempty"`
	OrderType    string  `json:"order_type,omitempty"`
	PBDC         *Amount `json:"p_bdc_omc,omitempty"`
	SBDC         *Amount `json:"s_bdc_omc,omitempty"`
	PTax         *Amount `json:"p_tax,omitempty"`
	STax         *Amount `json:"s_tax,omitempty"`
	TotalDebt    Amount  `json:"total_debt"`
	MarginPrice  *Amount `json:"margin_price,omitempty"`
	MarginTax    *Amount `json:"margin_tax,omitempty"`
	Margin       *Amount `json:"margin,omitempty"`
	ReturnsSBDC  Amount  `json:"returns_sbdc,omitempty"`
	ReturnsSTax  Amount  `json:"returns_stax,omitempty"`
	ReturnsTotal Amount  `json:"returns_total,omitempty"`
	Returns      Amount  `json:"returns,omitempty"`
	DueDate      Date    `json:"due_date"`
	BDCID        Ref     `json:"bdc_id,omitempty"`
	BDCName      string  `json:"bdc_name,omitempty"`

	PaymentDetails  []PaymentDetail `json:"payment_details,omitempty"`
	DeliveryStatus  string          `json:"delivery_status,omitempty"`
	DeliveredDate   Date            `json:"delivered_date"`
	DeliveryHistory []DeliveryEvent `json:"delivery_history,omitempty"`
}

// When is the order's business date: its date field, else its creation time.
func (o *Order) When() time.Time {
	if !o.Date.IsZero() {
		return o.Date.Time
	}
	return o.CreatedAt.Time
}

func (o *Order) IsApproved() bool { return o.Status == OrderApproved }

// EmbeddedPaid sums the legacy payment entries carried on the order.
func (o *Order) EmbeddedPaid() float64 {
	total := 0.0
	for _, pd := range o.PaymentDetails {
		total += pd.Amount.Float()
	}
	return total
}

// SubmitOrderRequest is what a client sends from the portal
type SubmitOrderRequest struct {
	Product       string `json:"product" validate:"required"`
	Quantity      string `json:"quantity" validate:"required"`
	Region        string `json:"region" validate:"required"`
	VehicleNumber string `json:"vehicle_number" validate:"required"`
	DriverName    string `json:"driver_name" validate:"required"`
	DriverPhone   string `json:"driver_phone" validate:"required"`
}

// ApproveOrderRequest prices a pending order. Prices are strings so that
// "blank" and "0" stay distinguishable.
type ApproveOrderRequest struct {
	OrderType   string `json:"order_type"`
	OMC         string `json:"omc"`
	Depot       string `json:"depot"`
	BDC         string `json:"bdc"`
	Shareholder string `json:"shareholder"`
	PBDC        string `json:"p_bdc_omc"`
	SBDC        string `json:"s_bdc_omc"`
	PTax        string `json:"p_tax"`
	STax        string `json:"s_tax"`
	DueDate     string `json:"due_date"`
	PaymentType string `json:"payment_type"`
}

type DeliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// DeliveryUpdate reports which records a delivery status change touched.
type DeliveryUpdate struct {
	OrderUpdated bool   `json:"order_updated"`
	BDCUpdated   bool   `json:"bdc_updated"`
	Status       string `json:"status"`
}
