package reconcile

import (
	"fuel-backend/internal/models"
)

// BDCBalance is always derived from its inputs; nothing stores it.
type BDCBalance struct {
	DepositsTotal    float64 `json:"deposits_total"`
	FromAccountTotal float64 `json:"from_account_total"`
	CreditTotal      float64 `json:"credit_total"`
	Balance          float64 `json:"balance"`
}

// ComputeBDCBalance derives a BDC's balance: deposits recorded for it minus
// the "from account" and "credit" payment entries it carries. Cash entries
// and transactions for other BDCs do not move it.
func ComputeBDCBalance(bdc *models.BDC, txns []models.BDCTransaction) BDCBalance {
	id := models.NormalizeRef(bdc.ID)

	var deposits, fromAccount, credit float64
	for i := range txns {
		if txns[i].BDCID.Key() != id || lowerTrim(txns[i].Type) != models.BDCTransactionDeposit {
			continue
		}
		deposits += txns[i].Amount.Float()
	}
	for _, pd := range bdc.PaymentDetails {
		switch lowerTrim(pd.PaymentType) {
		case models.BDCPaymentFromAccount:
			fromAccount += pd.Amount.Float()
		case models.BDCPaymentCredit:
			credit += pd.Amount.Float()
		}
	}

	return BDCBalance{
		DepositsTotal:    Round2(deposits),
		FromAccountTotal: Round2(fromAccount),
		CreditTotal:      Round2(credit),
		Balance:          Round2(deposits - (fromAccount + credit)),
	}
}
