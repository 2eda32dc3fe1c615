package models

type BankAccount struct {
	Document
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	Branch        string `json:"branch,omitempty"`
}

// Last4 is the tail of the account number payments are matched on.
func (a *BankAccount) Last4() string {
	n := a.AccountNumber
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

type BankAccountRequest struct {
	BankName      string `json:"bank_name" validate:"required"`
	AccountName   string `json:"account_name" validate:"required"`
	AccountNumber string `json:"account_number" validate:"required,min=4"`
	Branch        string `json:"branch"`
}

type PricePoint struct {
	PPrice Amount `json:"p_price"`
	SPrice Amount `json:"s_price"`
	Date   Date   `json:"date"`
}

type Product struct {
	Document
	Name         string       `json:"name"`
	PPrice       Amount       `json:"p_price"`
	SPrice       Amount       `json:"s_price"`
	PriceHistory []PricePoint `json:"price_history,omitempty"`
}

type ProductRequest struct {
	Name   string `json:"name" validate:"required"`
	PPrice string `json:"p_price" validate:"required"`
	SPrice string `json:"s_price" validate:"required"`
}

type TaxRecord struct {
	Document
	Type        string `json:"type"`
	Amount      Amount `json:"amount"`
	PaymentDate Date   `json:"payment_date"`
	Reference   string `json:"reference,omitempty"`
	PaidBy      string `json:"paid_by,omitempty"`
}

type TaxRequest struct {
	Type        string `json:"type" validate:"required"`
	Amount      string `json:"amount" validate:"required"`
	PaymentDate string `json:"payment_date" validate:"required"`
	Reference   string `json:"reference"`
	PaidBy      string `json:"paid_by"`
}
