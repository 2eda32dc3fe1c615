package reconcile

import (
	"strings"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/timeutil"
)

// Span is a half-open [From, Until) filter; zero ends are open.
type Span struct {
	From  time.Time
	Until time.Time
}

func (s Span) Contains(t time.Time) bool {
	if s.From.IsZero() && s.Until.IsZero() {
		return true
	}
	if t.IsZero() {
		return false
	}
	if !s.From.IsZero() && t.Before(s.From) {
		return false
	}
	if !s.Until.IsZero() && !t.Before(s.Until) {
		return false
	}
	return true
}

// PeriodSpan resolves the report period filters: week (last seven days),
// month (since the first of the month), today (since midnight, only when
// allowToday), custom (start through end inclusive) and anything else as
// all time. A custom period with an unreadable date is all time.
func PeriodSpan(period, start, end string, now time.Time, allowToday bool) Span {
	switch lowerTrim(period) {
	case "week":
		return Span{From: now.AddDate(0, 0, -7)}
	case "month":
		return Span{From: timeutil.StartOfMonth(now)}
	case "today":
		if allowToday {
			return Span{From: timeutil.StartOfDay(now)}
		}
	case "custom":
		s, errS := timeutil.ParseDate(start)
		e, errE := timeutil.ParseDate(end)
		if errS == nil && errE == nil {
			return Span{From: s, Until: e.AddDate(0, 0, 1)}
		}
	}
	return Span{}
}

type Share struct {
	Name  string  `json:"name" mapstructure:"name"`
	Share float64 `json:"share" mapstructure:"share"`
}

type Contribution struct {
	Orders              int     `json:"orders"`
	Quantity            float64 `json:"quantity"`
	Returns             float64 `json:"returns"`
	PercentageOfReturns float64 `json:"percentage_of_returns"`
}

type ShareholderReport struct {
	TotalOrders   int                     `json:"total_orders"`
	TotalQuantity float64                 `json:"total_quantity"`
	TotalReturns  float64                 `json:"total_returns"`
	Contributions map[string]Contribution `json:"contributions"`
	SharedReturns map[string]float64      `json:"shared_returns"`
	Volume        map[string]float64      `json:"volume_data"`
}

func orderReturns(o *models.Order) float64 {
	margin := 0.0
	if o.Margin != nil {
		margin = o.Margin.Float()
	}
	return Round2(margin * o.Quantity.Float())
}

func shareholderOf(o *models.Order) string {
	if o.Shareholder == nil {
		return ""
	}
	return strings.TrimSpace(*o.Shareholder)
}

// Shareholders splits returns on approved orders. Returns per order are
// margin times quantity; each shareholder's contribution counts the orders
// they brought in, and the pooled returns are shared by the configured
// split. Volume is computed over its own period.
func Shareholders(split []Share, orders []models.Order, returnsSpan, volumeSpan Span) ShareholderReport {
	rep := ShareholderReport{
		Contributions: map[string]Contribution{},
		SharedReturns: map[string]float64{},
		Volume:        map[string]float64{},
	}
	for _, s := range split {
		rep.Contributions[s.Name] = Contribution{}
		rep.Volume[s.Name] = 0
	}

	for i := range orders {
		o := &orders[i]
		if !o.IsApproved() {
			continue
		}
		name := shareholderOf(o)
		if volumeSpan.Contains(o.Date.Time) {
			if _, ok := rep.Volume[name]; ok {
				rep.Volume[name] += o.Quantity.Float()
			}
		}
		if !returnsSpan.Contains(o.Date.Time) {
			continue
		}
		r := orderReturns(o)
		rep.TotalOrders++
		rep.TotalQuantity += o.Quantity.Float()
		rep.TotalReturns += r
		if c, ok := rep.Contributions[name]; ok {
			c.Orders++
			c.Quantity += o.Quantity.Float()
			c.Returns += r
			rep.Contributions[name] = c
		}
	}

	rep.TotalReturns = Round2(rep.TotalReturns)
	for _, s := range split {
		c := rep.Contributions[s.Name]
		c.Returns = Round2(c.Returns)
		if rep.TotalReturns != 0 {
			c.PercentageOfReturns = Round2(c.Returns / rep.TotalReturns * 100)
		}
		rep.Contributions[s.Name] = c
		rep.SharedReturns[s.Name] = Round2(s.Share * rep.TotalReturns)
	}
	return rep
}

type MonthTotal struct {
	Month  string  `json:"month"`
	Amount float64 `json:"amount"`
}

// TaxTrend totals tax payments and buckets them by calendar month,
// January to December, across all years. Undated records count toward the
// total only.
func TaxTrend(records []models.TaxRecord) (float64, []MonthTotal) {
	trend := make([]MonthTotal, 12)
	for m := time.January; m <= time.December; m++ {
		trend[m-1].Month = m.String()
	}
	total := 0.0
	for i := range records {
		amt := records[i].Amount.Float()
		total += amt
		if d := records[i].PaymentDate.Time; !d.IsZero() {
			trend[d.Month()-1].Amount += amt
		}
	}
	for i := range trend {
		trend[i].Amount = Round2(trend[i].Amount)
	}
	return Round2(total), trend
}

// BankReceipts selects confirmed payments made into the account, matched on
// bank name (case-insensitive) and the last four digits of the number.
func BankReceipts(acct *models.BankAccount, payments []models.Payment, span Span) ([]models.Payment, float64) {
	bank := lowerTrim(acct.BankName)
	last4 := acct.Last4()
	out := []models.Payment{}
	total := 0.0
	for i := range payments {
		p := &payments[i]
		if !p.IsConfirmed() || lowerTrim(p.BankName) != bank || strings.TrimSpace(p.AccountLast4) != last4 {
			continue
		}
		if !span.Contains(p.When()) {
			continue
		}
		out = append(out, *p)
		total += p.Amount.Float()
	}
	return out, Round2(total)
}
