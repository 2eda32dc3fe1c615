// Package ledger builds running-balance client statements on top of the
// reconciliation rules.
package ledger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/reconcile"
	"fuel-backend/internal/timeutil"
)

// Row kinds
const (
	KindOpening = "opening"
	KindOrder   = "order"
	KindPayment = "payment"
)

// DefaultCategories are the product columns a statement splits orders into.
var DefaultCategories = []string{"PMS", "AGO"}

type Cell struct {
	Volume float64 `json:"volume"`
	Price  float64 `json:"price"`
	Amount float64 `json:"amount"`
}

type Row struct {
	Date        time.Time `json:"date"`
	DateLabel   string    `json:"date_label"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	// Cells lines up with Statement.Categories; only the matched
	// category of an order row is filled.
	Cells   []Cell  `json:"cells"`
	Total   float64 `json:"total"`
	Paid    float64 `json:"paid"`
	Balance float64 `json:"balance"`
}

type Totals struct {
	Cells     []Cell  `json:"cells"`
	TotalDebt float64 `json:"total_debt"`
	TotalPaid float64 `json:"total_paid"`
	Closing   float64 `json:"closing"`
}

type Statement struct {
	CompanyName    string          `json:"company_name,omitempty"`
	ClientID       string          `json:"client_id"`
	ClientCode     string          `json:"client_code"`
	ClientName     string          `json:"client_name"`
	ClientPhone    string          `json:"client_phone"`
	Period         string          `json:"period"`
	Window         timeutil.Window `json:"window"`
	Categories     []string        `json:"categories"`
	OpeningBalance float64         `json:"opening_balance"`
	Rows           []Row           `json:"rows"`
	Totals         Totals          `json:"totals"`
}

type Input struct {
	Client      *models.Client
	Window      timeutil.Window
	Orders      []models.Order
	Payments    []models.Payment
	Categories  []string
	CompanyName string
}

type event struct {
	when    time.Time
	kind    string
	order   *models.Order
	payment *models.Payment
}

// Build lays out the client's statement for the window: a "Balance b/f"
// row carrying everything before the window, then every approved order and
// confirmed payment inside it in date order with the running balance. An
// unbounded window is treated as the calendar month of now.
func Build(in Input, now time.Time) *Statement {
	w := in.Window
	if !w.Bounded() {
		w = timeutil.MonthWindow(now)
	}
	cats := in.Categories
	if len(cats) == 0 {
		cats = DefaultCategories
	}

	c := in.Client
	keys := reconcile.KeysOf(c)

	var own []models.Order
	for i := range in.Orders {
		if in.Orders[i].IsApproved() && keys.Has(in.Orders[i].ClientID) {
			own = append(own, in.Orders[i])
		}
	}
	paidFor := reconcile.PaymentsFor(keys, own, in.Payments)

	var events []event
	var priorDebt, priorPaid float64
	for i := range own {
		o := &own[i]
		when := o.When()
		switch {
		case when.IsZero():
			continue
		case when.Before(w.Start):
			priorDebt += o.TotalDebt.Float()
		case !when.After(w.End):
			events = append(events, event{when: when, kind: KindOrder, order: o})
		}
	}
	for i := range paidFor {
		p := &paidFor[i]
		when := p.When()
		switch {
		case when.IsZero():
			continue
		case when.Before(w.Start):
			priorPaid += p.Amount.Float()
		case !when.After(w.End):
			events = append(events, event{when: when, kind: KindPayment, payment: p})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].when.Before(events[j].when) })

	opening := reconcile.Round2(priorDebt - priorPaid)
	st := &Statement{
		CompanyName:    in.CompanyName,
		ClientID:       c.ID,
		ClientCode:     c.ClientCode,
		ClientName:     c.Name,
		ClientPhone:    c.Phone,
		Period:         w.Label(),
		Window:         w,
		Categories:     cats,
		OpeningBalance: opening,
		Totals:         Totals{Cells: make([]Cell, len(cats))},
	}
	st.Rows = append(st.Rows, Row{
		Date:        w.Start,
		DateLabel:   w.Start.Format(timeutil.StatementLayout),
		Kind:        KindOpening,
		Description: "Balance b/f",
		Cells:       make([]Cell, len(cats)),
		Total:       opening,
		Balance:     opening,
	})

	running := opening
	for _, ev := range events {
		row := Row{
			Date:      ev.when,
			DateLabel: ev.when.Format(timeutil.StatementLayout),
			Kind:      ev.kind,
			Cells:     make([]Cell, len(cats)),
		}
		if ev.kind == KindOrder {
			amt := reconcile.Round2(ev.order.TotalDebt.Float())
			qty := ev.order.Quantity.Float()
			row.Description = orderDescription(ev.order)
			row.Total = amt
			running += amt
			if ci := categoryIndex(cats, ev.order.Product); ci >= 0 {
				row.Cells[ci] = Cell{Volume: qty, Amount: amt}
				if qty > 0 {
					row.Cells[ci].Price = reconcile.Round2(amt / qty)
				}
				st.Totals.Cells[ci].Volume += qty
				st.Totals.Cells[ci].Amount += amt
			}
			st.Totals.TotalDebt += amt
		} else {
			amt := reconcile.Round2(ev.payment.Amount.Float())
			row.Description = paymentDescription(ev.payment)
			row.Paid = amt
			running -= amt
			st.Totals.TotalPaid += amt
		}
		row.Balance = reconcile.Round2(running)
		st.Rows = append(st.Rows, row)
	}

	for i := range st.Totals.Cells {
		st.Totals.Cells[i].Amount = reconcile.Round2(st.Totals.Cells[i].Amount)
	}
	st.Totals.TotalDebt = reconcile.Round2(st.Totals.TotalDebt)
	st.Totals.TotalPaid = reconcile.Round2(st.Totals.TotalPaid)
	st.Totals.Closing = reconcile.Round2(running)
	return st
}

// categoryIndex returns the first category whose name appears in the
// product, ignoring case, or -1.
func categoryIndex(cats []string, product string) int {
	up := strings.ToUpper(product)
	for i, c := range cats {
		if c != "" && strings.Contains(up, strings.ToUpper(c)) {
			return i
		}
	}
	return -1
}

func orderDescription(o *models.Order) string {
	desc := fmt.Sprintf("%s - %s / %s", strings.TrimSpace(o.Depot), strings.TrimSpace(o.OrderCode), strings.TrimSpace(o.Region))
	return strings.Trim(desc, " -/")
}

func paymentDescription(p *models.Payment) string {
	switch {
	case strings.TrimSpace(p.BankName) != "":
		return "Payment - " + strings.TrimSpace(p.BankName)
	case strings.TrimSpace(p.Note) != "":
		return "Payment - " + strings.TrimSpace(p.Note)
	}
	return "Payment"
}
