package models

import "time"

// BDC payment entry types. Cash never moves the derived balance.
const (
	BDCPaymentCash        = "cash"
	BDCPaymentFromAccount = "from account"
	BDCPaymentCredit      = "credit"
)

const BDCTransactionDeposit = "deposit"

// BDC is a bulk distribution company. It deliberately has no balance
// field: the balance is derived from deposits and payment entries.
type BDC struct {
	Document
	Name           string          `json:"name"`
	Phone          string          `json:"phone"`
	Location       string          `json:"location"`
	RepName        string          `json:"rep_name"`
	RepPhone       string          `json:"rep_phone"`
	PaymentDetails []PaymentDetail `json:"payment_details,omitempty"`
}

// BDCTransaction is a deposit into a BDC account.
type BDCTransaction struct {
	Document
	BDCID  Ref    `json:"bdc_id"`
	Type   string `json:"type"`
	Amount Amount `json:"amount"`
	Note   string `json:"note,omitempty"`
	Date   Date   `json:"date"`
}

func (t *BDCTransaction) When() time.Time {
	if !t.Date.IsZero() {
		return t.Date.Time
	}
	return t.CreatedAt.Time
}

type AddBDCRequest struct {
	Name     string `json:"name" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Location string `json:"location" validate:"required"`
	RepName  string `json:"rep_name" validate:"required"`
	RepPhone string `json:"rep_phone" validate:"required"`
}

type DepositRequest struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
	Note   string `json:"note"`
}

// BDCPaymentRequest records a manual payment entry against a BDC. The
// delivery fields are optional.
type BDCPaymentRequest struct {
	PaymentType   string `json:"payment_type"`
	Amount        string `json:"amount"`
	OrderID       string `json:"order_id"`
	ClientName    string `json:"client_name"`
	Product       string `json:"product"`
	VehicleNumber string `json:"vehicle_number"`
	DriverName    string `json:"driver_name"`
	DriverPhone   string `json:"driver_phone"`
	Quantity      string `json:"quantity"`
	Region        string `json:"region"`
}
