// Package reconcile computes balances from orders, payments and expenses as
// they are stored, tolerating the mixed identifier and number shapes of
// older records. Everything here is pure: callers fetch, reconcile computes.
package reconcile

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Round2 rounds half away from zero to two decimal places. Sums are kept at
// full precision and only rounded when presented.
func Round2(f float64) float64 {
	r, _ := decimal.NewFromFloat(f).Round(2).Float64()
	return r
}

func clamp0(f float64) float64 {
	if f < 0 {
		return 0
	}
	return f
}

func lowerTrim(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// PageInfo describes one page of a longer list.
type PageInfo struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Paginate returns the 1-based page of items. Pages past the end are empty.
func Paginate[T any](items []T, page, size int) ([]T, PageInfo) {
	if size <= 0 {
		size = 10
	}
	if page < 1 {
		page = 1
	}
	info := PageInfo{Page: page, PageSize: size, Total: len(items)}
	info.TotalPages = (len(items) + size - 1) / size
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}, info
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], info
}
