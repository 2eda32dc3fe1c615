package reconcile

import (
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/timeutil"
)

// Scope narrows an outstanding computation. The zero Scope covers every
// approved order of the client.
type Scope struct {
	// OrderRef limits the computation to one order, by id or short code.
	OrderRef string
	Window   timeutil.Window
	// StandaloneOnly ignores payment entries embedded in orders. Legacy
	// approvals stored the BDC supplier payment there, which is not client
	// money.
	StandaloneOnly bool
}

// Paid sources
const (
	SourcePayments = "payments"
	SourceEmbedded = "embedded"
)

type OrderBalance struct {
	ID         string    `json:"id"`
	OrderCode  string    `json:"order_id"`
	Product    string    `json:"product"`
	Date       time.Time `json:"date"`
	DueDate    time.Time `json:"due_date"`
	TotalDebt  float64   `json:"total_debt"`
	Paid       float64   `json:"paid"`
	AmountLeft float64   `json:"amount_left"`
	PaidFrom   string    `json:"paid_from,omitempty"`
}

type Outstanding struct {
	TotalDebt  float64        `json:"total_debt"`
	TotalPaid  float64        `json:"total_paid"`
	AmountLeft float64        `json:"amount_left"`
	Orders     []OrderBalance `json:"orders"`
}

func (s Scope) includes(o *models.Order) bool {
	if s.OrderRef != "" {
		ref := models.NormalizeRef(s.OrderRef)
		if ref != models.NormalizeRef(o.ID) && ref != models.NormalizeRef(o.OrderCode) {
			return false
		}
	}
	return s.Window.Contains(o.When())
}

// ComputeOutstanding reconciles the client's approved orders against its
// confirmed payments. Orders and payments belonging to other clients may be
// passed in and are ignored. An order with no confirmed standalone payment
// falls back to the payment entries embedded in it unless the scope is
// StandaloneOnly.
func ComputeOutstanding(keys ClientKeys, orders []models.Order, payments []models.Payment, scope Scope) Outstanding {
	own := make([]models.Order, 0, len(orders))
	for i := range orders {
		if orders[i].IsApproved() && keys.Has(orders[i].ClientID) {
			own = append(own, orders[i])
		}
	}
	byOrder := attribute(keys, own, payments)

	var debt, paid float64
	result := Outstanding{Orders: []OrderBalance{}}
	for i := range own {
		o := &own[i]
		if !scope.includes(o) {
			continue
		}
		ob := OrderBalance{
			ID:        o.ID,
			OrderCode: o.OrderCode,
			Product:   o.Product,
			Date:      o.When(),
			DueDate:   o.DueDate.Time,
		}
		orderDebt := o.TotalDebt.Float()
		orderPaid := 0.0
		if matched := byOrder[i]; len(matched) > 0 {
			for _, j := range matched {
				orderPaid += payments[j].Amount.Float()
			}
			ob.PaidFrom = SourcePayments
		} else if len(o.PaymentDetails) > 0 && !scope.StandaloneOnly {
			orderPaid = o.EmbeddedPaid()
			ob.PaidFrom = SourceEmbedded
		}
		debt += orderDebt
		paid += orderPaid

		ob.TotalDebt = Round2(orderDebt)
		ob.Paid = Round2(orderPaid)
		ob.AmountLeft = Round2(clamp0(orderDebt - orderPaid))
		result.Orders = append(result.Orders, ob)
	}

	result.TotalDebt = Round2(debt)
	result.TotalPaid = Round2(paid)
	result.AmountLeft = Round2(clamp0(debt - paid))
	return result
}
