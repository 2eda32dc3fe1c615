package reconcile

import (
	"strings"

	"fuel-backend/internal/apperr"
)

// PriceInput holds per-litre prices as entered; nil means "not given".
type PriceInput struct {
	Mode     string
	Quantity float64
	PBDC     *float64
	SBDC     *float64
	PTax     *float64
	STax     *float64
}

type Pricing struct {
	Mode         string   `json:"order_type"`
	TotalDebt    float64  `json:"total_debt"`
	MarginPrice  *float64 `json:"margin_price,omitempty"`
	MarginTax    *float64 `json:"margin_tax,omitempty"`
	Margin       *float64 `json:"margin,omitempty"`
	ReturnsSBDC  float64  `json:"returns_sbdc"`
	ReturnsSTax  float64  `json:"returns_stax"`
	ReturnsTotal float64  `json:"returns_total"`
}

func nz(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func roundPtr(f float64) *float64 {
	r := Round2(f)
	return &r
}

// PriceOrder turns an order's quantity and the entered prices into its debt,
// margins and returns. Mode is s_bdc, s_tax or combo; blank means combo.
func PriceOrder(in PriceInput) (Pricing, error) {
	mode := strings.ToLower(strings.TrimSpace(in.Mode))
	if mode == "" {
		mode = "combo"
	}
	switch mode {
	case "s_bdc":
		if in.SBDC == nil {
			return Pricing{}, apperr.Validation("S-BDC is required for S-BDC type")
		}
	case "s_tax":
		if in.STax == nil {
			return Pricing{}, apperr.Validation("S-Tax is required for S-Tax type")
		}
	case "combo":
		if in.SBDC == nil || in.STax == nil {
			return Pricing{}, apperr.Validation("S-BDC and S-Tax are required for Combo type")
		}
	default:
		return Pricing{}, apperr.Validation("invalid order type %q", in.Mode)
	}

	q := in.Quantity
	p := Pricing{Mode: mode}
	if in.SBDC != nil && in.PBDC != nil {
		p.MarginPrice = roundPtr(*in.SBDC - *in.PBDC)
	}
	if in.STax != nil && in.PTax != nil {
		p.MarginTax = roundPtr(*in.STax - *in.PTax)
	}

	switch mode {
	case "s_bdc":
		p.TotalDebt = Round2(nz(in.SBDC) * q)
		p.Margin = p.MarginPrice
	case "s_tax":
		p.TotalDebt = Round2(nz(in.STax) * q)
		p.Margin = p.MarginTax
	default:
		p.TotalDebt = Round2((nz(in.SBDC) + nz(in.STax)) * q)
		p.Margin = p.MarginPrice
	}

	sbdc := nz(in.SBDC) * q
	stax := nz(in.STax) * q
	p.ReturnsSBDC = Round2(sbdc)
	p.ReturnsSTax = Round2(stax)
	p.ReturnsTotal = Round2(sbdc + stax)
	return p, nil
}
