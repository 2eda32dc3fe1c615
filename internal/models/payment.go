package models

import "time"

// Payment statuses
const (
	PaymentPending   = "pending"
	PaymentConfirmed = "confirmed"
)

// Payment is a client remittance against an order, or against the
// client's trucking balance when stored with the truck payments.
type Payment struct {
	Document
	ClientID     Ref    `json:"client_id"`
	OrderID      Ref    `json:"order_id,omitempty"`
	OrderRef     Ref    `json:"order_ref,omitempty"`
	Amount       Amount `json:"amount"`
	Status       string `json:"status"`
	Date         Date   `json:"date"`
	BankName     string `json:"bank_name,omitempty"`
	AccountLast4 string `json:"account_last4,omitempty"`
	ProofURL     string `json:"proof_url,omitempty"`
	Note         string `json:"note,omitempty"`
	ConfirmedBy  string `json:"confirmed_by,omitempty"`
	ConfirmedAt  Date   `json:"confirmed_at"`
}

func (p *Payment) IsConfirmed() bool { return p.Status == PaymentConfirmed }

func (p *Payment) When() time.Time {
	if !p.Date.IsZero() {
		return p.Date.Time
	}
	return p.CreatedAt.Time
}

// Kinds of client payment
const (
	PaymentForOrder = "order"
	PaymentForTruck = "truck"
)

type SubmitPaymentRequest struct {
	PaymentType  string `json:"payment_type"`
	Amount       string `json:"amount" validate:"required"`
	BankName     string `json:"bank_name" validate:"required"`
	AccountLast4 string `json:"account_last4" validate:"required"`
	ProofURL     string `json:"proof_url"`
	OrderID      string `json:"order_id"`
}
