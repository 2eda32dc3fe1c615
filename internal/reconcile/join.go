package reconcile

import (
	"sort"

	"fuel-backend/internal/models"
)

// ClientKeys is the set of normalized identifiers a single client is
// known by across collections.
type ClientKeys map[string]struct{}

func KeysOf(c *models.Client) ClientKeys {
	keys := ClientKeys{}
	for _, k := range c.Keys() {
		if k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

// KeysFor builds a key set from raw references.
func KeysFor(refs ...string) ClientKeys {
	keys := ClientKeys{}
	for _, r := range refs {
		if k := models.NormalizeRef(r); k != "" {
			keys[k] = struct{}{}
		}
	}
	return keys
}

func (k ClientKeys) Has(ref models.Ref) bool {
	_, ok := k[ref.Key()]
	return ok
}

// orderIndex resolves a payment's order link to one order. Orders are
// reachable by internal id and by short code; a payment may carry either
// in either of its two link fields.
type orderIndex struct {
	byKey map[string]int
}

func newOrderIndex(orders []models.Order) *orderIndex {
	idx := &orderIndex{byKey: make(map[string]int, len(orders)*2)}
	for i := range orders {
		for _, k := range []string{models.NormalizeRef(orders[i].ID), models.NormalizeRef(orders[i].OrderCode)} {
			if k == "" {
				continue
			}
			if _, taken := idx.byKey[k]; !taken {
				idx.byKey[k] = i
			}
		}
	}
	return idx
}

// match returns the position of the order p pays for, checking order_id
// before order_ref, or -1.
func (idx *orderIndex) match(p *models.Payment) int {
	for _, ref := range []models.Ref{p.OrderID, p.OrderRef} {
		if ref.IsZero() {
			continue
		}
		if i, ok := idx.byKey[ref.Key()]; ok {
			return i
		}
	}
	return -1
}

// attribute maps each confirmed payment of the client to the order it pays
// for. A payment lands on at most one order and is counted once.
func attribute(keys ClientKeys, orders []models.Order, payments []models.Payment) map[int][]int {
	idx := newOrderIndex(orders)
	out := make(map[int][]int)
	for j := range payments {
		p := &payments[j]
		if !p.IsConfirmed() || !keys.Has(p.ClientID) {
			continue
		}
		if i := idx.match(p); i >= 0 {
			out[i] = append(out[i], j)
		}
	}
	return out
}

// PaymentsFor returns the client's confirmed payments that pay for one of
// the orders, each once, in their original order.
func PaymentsFor(keys ClientKeys, orders []models.Order, payments []models.Payment) []models.Payment {
	var idx []int
	for _, js := range attribute(keys, orders, payments) {
		idx = append(idx, js...)
	}
	sort.Ints(idx)
	out := make([]models.Payment, 0, len(idx))
	for _, j := range idx {
		out = append(out, payments[j])
	}
	return out
}

// MatchPayments returns the confirmed payments of the client that pay
// for order o, in their original order.
func MatchPayments(keys ClientKeys, o *models.Order, payments []models.Payment) []models.Payment {
	return PaymentsFor(keys, []models.Order{*o}, payments)
}
