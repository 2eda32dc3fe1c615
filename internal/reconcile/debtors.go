package reconcile

import (
	"sort"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/timeutil"
)

// Directory resolves any stored client reference to the client record.
type Directory struct {
	clients []models.Client
	byKey   map[string]int
}

func NewDirectory(clients []models.Client) *Directory {
	d := &Directory{clients: clients, byKey: make(map[string]int, len(clients)*2)}
	for i := range clients {
		for _, k := range clients[i].Keys() {
			if k == "" {
				continue
			}
			if _, taken := d.byKey[k]; !taken {
				d.byKey[k] = i
			}
		}
	}
	return d
}

// Lookup returns the client a reference points at, or nil.
func (d *Directory) Lookup(ref models.Ref) *models.Client {
	if i, ok := d.byKey[ref.Key()]; ok {
		return &d.clients[i]
	}
	return nil
}

type DebtorRow struct {
	ClientID        string    `json:"client_id"`
	ClientCode      string    `json:"client_code"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	OrderCount      int       `json:"order_count"`
	TotalDebt       float64   `json:"total_debt"`
	TotalPaid       float64   `json:"total_paid"`
	AmountLeft      float64   `json:"amount_left"`
	LatestDueDate   string    `json:"latest_due_date"`
	OldestOrderDate time.Time `json:"oldest_order_date"`
	DebtAge         string    `json:"debt_age"`
	TagLabel        string    `json:"tag"`
	TagColor        string    `json:"tag_color"`
}

// groupByClient buckets approved orders in the window and all payments by
// the canonical id of the client they reference. Records pointing at no
// known client are dropped.
func groupByClient(dir *Directory, orders []models.Order, payments []models.Payment, w timeutil.Window) (map[string][]models.Order, map[string][]models.Payment, []string) {
	ordersBy := map[string][]models.Order{}
	paymentsBy := map[string][]models.Payment{}
	var order []string
	for i := range orders {
		o := &orders[i]
		if !o.IsApproved() || !w.Contains(o.When()) {
			continue
		}
		c := dir.Lookup(o.ClientID)
		if c == nil {
			continue
		}
		if _, seen := ordersBy[c.ID]; !seen {
			order = append(order, c.ID)
		}
		ordersBy[c.ID] = append(ordersBy[c.ID], *o)
	}
	for j := range payments {
		if c := dir.Lookup(payments[j].ClientID); c != nil {
			paymentsBy[c.ID] = append(paymentsBy[c.ID], payments[j])
		}
	}
	return ordersBy, paymentsBy, order
}

// Debtors lists clients with money left to pay on approved orders dated
// inside the window, largest balance first. When only is non-nil the list is
// restricted to that client.
func Debtors(clients []models.Client, orders []models.Order, payments []models.Payment, w timeutil.Window, only *models.Client, now time.Time) []DebtorRow {
	dir := NewDirectory(clients)
	ordersBy, paymentsBy, ids := groupByClient(dir, orders, payments, w)

	rows := []DebtorRow{}
	for _, id := range ids {
		c := dir.Lookup(models.Ref(id))
		if only != nil && models.NormalizeRef(only.ID) != models.NormalizeRef(c.ID) {
			continue
		}
		group := ordersBy[id]
		out := ComputeOutstanding(KeysOf(c), group, paymentsBy[id], Scope{StandaloneOnly: true})
		if out.AmountLeft <= 0 {
			continue
		}

		var latestDue, oldest time.Time
		for i := range group {
			if due := group[i].DueDate.Time; !due.IsZero() && due.After(latestDue) {
				latestDue = due
			}
			if when := group[i].When(); !when.IsZero() && (oldest.IsZero() || when.Before(oldest)) {
				oldest = when
			}
		}

		rows = append(rows, DebtorRow{
			ClientID:        c.ID,
			ClientCode:      c.ClientCode,
			Name:            c.Name,
			Phone:           c.Phone,
			OrderCount:      len(group),
			TotalDebt:       out.TotalDebt,
			TotalPaid:       out.TotalPaid,
			AmountLeft:      out.AmountLeft,
			LatestDueDate:   timeutil.FormatDate(latestDue, "-"),
			OldestOrderDate: oldest,
			DebtAge:         timeutil.DebtAge(oldest, now),
			TagLabel:        c.TagLabel(),
			TagColor:        c.TagColor(),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].AmountLeft > rows[j].AmountLeft })
	return rows
}

type DebtorDetail struct {
	ClientID   string           `json:"client_id"`
	ClientCode string           `json:"client_code"`
	Name       string           `json:"name"`
	Order      *models.Order    `json:"latest_order"`
	Payments   []models.Payment `json:"payments"`
	TotalDebt  float64          `json:"total_debt"`
	TotalPaid  float64          `json:"total_paid"`
	AmountLeft float64          `json:"amount_left"`
}

// LatestOrderDetail pairs the client's most recent approved order in the
// window with the confirmed payments made against it, oldest first. It
// returns nil when the client has no such order.
func LatestOrderDetail(c *models.Client, orders []models.Order, payments []models.Payment, w timeutil.Window) *DebtorDetail {
	keys := KeysOf(c)
	var latest *models.Order
	for i := range orders {
		o := &orders[i]
		if !o.IsApproved() || !keys.Has(o.ClientID) || !w.Contains(o.When()) {
			continue
		}
		if latest == nil || o.When().After(latest.When()) {
			latest = o
		}
	}
	if latest == nil {
		return nil
	}

	matched := MatchPayments(keys, latest, payments)
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].When().Before(matched[j].When()) })

	out := ComputeOutstanding(keys, []models.Order{*latest}, matched, Scope{StandaloneOnly: true})
	order := *latest
	return &DebtorDetail{
		ClientID:   c.ID,
		ClientCode: c.ClientCode,
		Name:       c.Name,
		Order:      &order,
		Payments:   matched,
		TotalDebt:  out.TotalDebt,
		TotalPaid:  out.TotalPaid,
		AmountLeft: out.AmountLeft,
	}
}

// YearsRange lists every year from the earliest to the latest dated order,
// or just the current year when no order carries a date.
func YearsRange(orders []models.Order, now time.Time) []int {
	minY, maxY := 0, 0
	for i := range orders {
		when := orders[i].When()
		if when.IsZero() {
			continue
		}
		y := when.Year()
		if minY == 0 || y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}
	}
	if minY == 0 {
		return []int{now.Year()}
	}
	years := make([]int, 0, maxY-minY+1)
	for y := minY; y <= maxY; y++ {
		years = append(years, y)
	}
	return years
}
