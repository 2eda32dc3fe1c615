package reconcile

import (
	"sort"
	"strings"

	"fuel-backend/internal/models"
)

type TruckDebtor struct {
	ClientID     string  `json:"client_id"`
	ClientName   string  `json:"client_name"`
	ClientPhone  string  `json:"client_phone"`
	OrderCount   int     `json:"order_count"`
	TotalDebt    float64 `json:"total_debt"`
	TotalPaid    float64 `json:"total_paid"`
	AmountLeft   float64 `json:"amount_left"`
	TotalExpense float64 `json:"total_expense"`
	Settled      float64 `json:"settled_amount"`
}

// TruckBook reconciles haulage debt per client. Truck orders, confirmed
// truck payments and expenses are grouped by the client they reference,
// with references resolved through the client directory when possible.
type TruckBook struct {
	Debtors      []TruckDebtor
	byClient     map[string]int
	TotalDebt    float64
	TotalPaid    float64
	TotalExpense float64
	OrderCount   int
}

func expenseTotals(orders []models.TruckOrder, expenses []models.TruckExpense) map[string]float64 {
	fromCollection := map[string]float64{}
	for i := range expenses {
		fromCollection[expenses[i].OrderID.Key()] += expenses[i].Amount.Float()
	}
	out := make(map[string]float64, len(orders))
	for i := range orders {
		key := models.NormalizeRef(orders[i].ID)
		if total, ok := fromCollection[key]; ok {
			out[key] = total
			continue
		}
		// orders recorded before the expense collection existed
		embedded := 0.0
		for _, e := range orders[i].Expenses {
			embedded += e.Amount.Float()
		}
		out[key] = embedded
	}
	return out
}

func NewTruckBook(clients []models.Client, orders []models.TruckOrder, payments []models.Payment, expenses []models.TruckExpense) *TruckBook {
	dir := NewDirectory(clients)
	canonical := func(ref models.Ref) string {
		if c := dir.Lookup(ref); c != nil {
			return models.NormalizeRef(c.ID)
		}
		return ref.Key()
	}

	book := &TruckBook{byClient: map[string]int{}, OrderCount: len(orders)}
	expenseBy := expenseTotals(orders, expenses)

	for i := range orders {
		o := &orders[i]
		key := canonical(o.ClientID)
		pos, ok := book.byClient[key]
		if !ok {
			row := TruckDebtor{ClientID: key, ClientName: o.ClientName, ClientPhone: o.ClientPhone}
			if c := dir.Lookup(o.ClientID); c != nil {
				row.ClientID = c.ID
				row.ClientName = c.Name
				row.ClientPhone = c.Phone
			}
			book.Debtors = append(book.Debtors, row)
			pos = len(book.Debtors) - 1
			book.byClient[key] = pos
		}
		row := &book.Debtors[pos]
		row.OrderCount++
		row.TotalDebt += o.TotalDebt.Float()
		row.TotalExpense += expenseBy[models.NormalizeRef(o.ID)]
		book.TotalDebt += o.TotalDebt.Float()
	}

	for i := range payments {
		p := &payments[i]
		if !p.IsConfirmed() {
			continue
		}
		book.TotalPaid += p.Amount.Float()
		if pos, ok := book.byClient[canonical(p.ClientID)]; ok {
			book.Debtors[pos].TotalPaid += p.Amount.Float()
		}
	}
	for i := range expenses {
		book.TotalExpense += expenses[i].Amount.Float()
	}

	for i := range book.Debtors {
		row := &book.Debtors[i]
		row.AmountLeft = Round2(clamp0(row.TotalDebt - row.TotalPaid))
		row.Settled = Round2(row.TotalDebt - row.TotalExpense)
		row.TotalDebt = Round2(row.TotalDebt)
		row.TotalPaid = Round2(row.TotalPaid)
		row.TotalExpense = Round2(row.TotalExpense)
	}
	sort.SliceStable(book.Debtors, func(i, j int) bool {
		return book.Debtors[i].AmountLeft > book.Debtors[j].AmountLeft
	})
	for i := range book.Debtors {
		book.byClient[models.NormalizeRef(book.Debtors[i].ClientID)] = i
	}
	return book
}

// Filter keeps debtors whose name contains search (case-insensitive) or
// whose phone contains it, optionally only those with money left to pay.
func (b *TruckBook) Filter(search string, unpaidOnly bool) []TruckDebtor {
	search = lowerTrim(search)
	out := []TruckDebtor{}
	for _, d := range b.Debtors {
		if search != "" && !strings.Contains(strings.ToLower(d.ClientName), search) && !strings.Contains(d.ClientPhone, search) {
			continue
		}
		if unpaidOnly && d.AmountLeft <= 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// For returns the row of the client a payment or order references.
func (b *TruckBook) For(clients *Directory, ref models.Ref) (TruckDebtor, bool) {
	key := ref.Key()
	if c := clients.Lookup(ref); c != nil {
		key = models.NormalizeRef(c.ID)
	}
	pos, ok := b.byClient[key]
	if !ok {
		return TruckDebtor{}, false
	}
	return b.Debtors[pos], true
}

type TruckSummary struct {
	OrderCount           int     `json:"total_orders"`
	TotalDebt            float64 `json:"total_debt"`
	TotalPaid            float64 `json:"total_paid"`
	TotalExpense         float64 `json:"total_expense"`
	TotalSettled         float64 `json:"total_settled"`
	CollectionEfficiency float64 `json:"collection_efficiency"`
}

func (b *TruckBook) Summary() TruckSummary {
	eff := 0.0
	if b.TotalDebt > 0 {
		eff = b.TotalPaid / b.TotalDebt * 100
	}
	return TruckSummary{
		OrderCount:           b.OrderCount,
		TotalDebt:            Round2(b.TotalDebt),
		TotalPaid:            Round2(b.TotalPaid),
		TotalExpense:         Round2(b.TotalExpense),
		TotalSettled:         Round2(b.TotalDebt - b.TotalExpense),
		CollectionEfficiency: Round2(eff),
	}
}
