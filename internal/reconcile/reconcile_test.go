package reconcile

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/timeutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientOID = "65a1b2c3d4e5f60718293a4b"

var now = time.Date(2024, time.March, 28, 12, 0, 0, 0, time.UTC)

func march(day int) models.Date {
	return models.NewDate(time.Date(2024, time.March, day, 9, 0, 0, 0, time.UTC))
}

func approvedOrder(id, code string, debt float64, day int) models.Order {
	return models.Order{
		Document:  models.Document{ID: id},
		OrderCode: code,
		ClientID:  models.Ref(clientOID),
		Status:    models.OrderApproved,
		TotalDebt: models.Amount(debt),
		Date:      march(day),
	}
}

func payment(id string, amount float64, status string) models.Payment {
	return models.Payment{
		Document: models.Document{ID: id},
		ClientID: models.Ref(clientOID),
		Amount:   models.Amount(amount),
		Status:   status,
		Date:     march(20),
	}
}

func clientKeys() ClientKeys { return KeysFor(clientOID, "TT24001") }

func TestComputeOutstanding_EndToEnd(t *testing.T) {
	orders := []models.Order{
		approvedOrder("ord-500", "AB12C", 500, 3),
		approvedOrder("ord-300", "ZX98Q", 300, 10),
	}
	p := payment("pay-1", 200, models.PaymentConfirmed)
	p.OrderID = "AB12C"

	out := ComputeOutstanding(clientKeys(), orders, []models.Payment{p}, Scope{})

	assert.Equal(t, 800.0, out.TotalDebt)
	assert.Equal(t, 200.0, out.TotalPaid)
	assert.Equal(t, 600.0, out.AmountLeft)
	require.Len(t, out.Orders, 2)
	assert.Equal(t, 300.0, out.Orders[0].AmountLeft)
	assert.Equal(t, SourcePayments, out.Orders[0].PaidFrom)
}

func TestComputeOutstanding_ClampsAtZero(t *testing.T) {
	for _, tc := range []struct{ debt, paid float64 }{
		{0, 0}, {100, 0}, {100, 40}, {100, 100}, {100, 250.75}, {0, 10},
	} {
		t.Run(fmt.Sprintf("%v-%v", tc.debt, tc.paid), func(t *testing.T) {
			p := payment("pay", tc.paid, models.PaymentConfirmed)
			p.OrderRef = "ord-1"
			out := ComputeOutstanding(clientKeys(), []models.Order{approvedOrder("ord-1", "AAAAA", tc.debt, 1)}, []models.Payment{p}, Scope{})

			want := tc.debt - tc.paid
			if want < 0 {
				want = 0
			}
			assert.Equal(t, Round2(want), out.AmountLeft)
			assert.GreaterOrEqual(t, out.AmountLeft, 0.0)
		})
	}
}

func TestComputeOutstanding_PendingNeverCounts(t *testing.T) {
	orders := []models.Order{approvedOrder("ord-1", "AB12C", 1000, 1)}
	p := payment("pay-1", 250, models.PaymentPending)
	p.OrderID = "ord-1"

	before := ComputeOutstanding(clientKeys(), orders, []models.Payment{p}, Scope{})
	assert.Zero(t, before.TotalPaid)

	p.Status = models.PaymentConfirmed
	after := ComputeOutstanding(clientKeys(), orders, []models.Payment{p}, Scope{})
	assert.Equal(t, before.TotalPaid+250, after.TotalPaid)
}

func TestComputeOutstanding_FourWayJoin(t *testing.T) {
	orders := []models.Order{approvedOrder("ord-1", "AB12C", 1000, 1)}

	links := map[string]func(*models.Payment){
		"order_id=internal":  func(p *models.Payment) { p.OrderID = "ord-1" },
		"order_id=code":      func(p *models.Payment) { p.OrderID = "AB12C" },
		"order_ref=code":     func(p *models.Payment) { p.OrderRef = "AB12C" },
		"order_ref=internal": func(p *models.Payment) { p.OrderRef = "ord-1" },
	}
	var all []models.Payment
	for name, link := range links {
		t.Run(name, func(t *testing.T) {
			p := payment("pay-"+name, 100, models.PaymentConfirmed)
			link(&p)
			all = append(all, p)
			out := ComputeOutstanding(clientKeys(), orders, []models.Payment{p}, Scope{})
			assert.Equal(t, 100.0, out.TotalPaid)
		})
	}

	out := ComputeOutstanding(clientKeys(), orders, all, Scope{})
	assert.Equal(t, 400.0, out.TotalPaid)

	t.Run("both fields set counts once", func(t *testing.T) {
		p := payment("pay-both", 100, models.PaymentConfirmed)
		p.OrderID = "ord-1"
		p.OrderRef = "AB12C"
		out := ComputeOutstanding(clientKeys(), orders, []models.Payment{p}, Scope{})
		assert.Equal(t, 100.0, out.TotalPaid)
	})
}

func TestComputeOutstanding_ClientRefShapes(t *testing.T) {
	var legacy models.Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"ord-9","order_id":"QQ111","status":"approved","total_debt":"1,200","client_id":{"$oid":"65A1B2C3D4E5F60718293A4B"}}`), &legacy))
	byCode := approvedOrder("ord-8", "QQ222", 300, 2)
	byCode.ClientID = "TT24001"
	other := approvedOrder("ord-7", "QQ333", 999, 2)
	other.ClientID = "someone-else"

	var p models.Payment
	require.NoError(t, json.Unmarshal([]byte(`{"id":"pay-9","status":"confirmed","amount":200,"order_ref":"QQ111","client_id":"65a1b2c3d4e5f60718293a4b"}`), &p))

	out := ComputeOutstanding(clientKeys(), []models.Order{legacy, byCode, other}, []models.Payment{p}, Scope{})
	assert.Equal(t, 1500.0, out.TotalDebt)
	assert.Equal(t, 200.0, out.TotalPaid)
	assert.Equal(t, 1300.0, out.AmountLeft)
}

func TestComputeOutstanding_OtherClientsPaymentIgnored(t *testing.T) {
	orders := []models.Order{approvedOrder("ord-1", "AB12C", 1000, 1)}
	p := payment("pay-1", 300, models.PaymentConfirmed)
	p.OrderID = "AB12C"
	p.ClientID = "someone-else"

	out := ComputeOutstanding(clientKeys(), orders, []models.Payment{p}, Scope{})
	assert.Zero(t, out.TotalPaid)
}

func TestComputeOutstanding_EmbeddedFallback(t *testing.T) {
	legacy := approvedOrder("ord-1", "AB12C", 1000, 1)
	legacy.PaymentDetails = []models.PaymentDetail{{Amount: 150}, {Amount: 50}}
	current := approvedOrder("ord-2", "CD34E", 500, 2)
	current.PaymentDetails = []models.PaymentDetail{{Amount: 500}}
	p := payment("pay-1", 100, models.PaymentConfirmed)
	p.OrderID = "ord-2"

	out := ComputeOutstanding(clientKeys(), []models.Order{legacy, current}, []models.Payment{p}, Scope{})

	require.Len(t, out.Orders, 2)
	assert.Equal(t, 200.0, out.Orders[0].Paid)
	assert.Equal(t, SourceEmbedded, out.Orders[0].PaidFrom)
	assert.Equal(t, 100.0, out.Orders[1].Paid, "standalone payments win over embedded entries")
	assert.Equal(t, 300.0, out.TotalPaid)
	assert.Equal(t, 1200.0, out.AmountLeft)
}

func TestComputeOutstanding_StandaloneOnlyIgnoresEmbedded(t *testing.T) {
	legacy := approvedOrder("ord-1", "AB12C", 1000, 1)
	legacy.PaymentDetails = []models.PaymentDetail{{PaymentType: "from account", Amount: 900}}

	out := ComputeOutstanding(clientKeys(), []models.Order{legacy}, nil, Scope{StandaloneOnly: true})

	require.Len(t, out.Orders, 1)
	assert.Equal(t, 0.0, out.Orders[0].Paid)
	assert.Empty(t, out.Orders[0].PaidFrom)
	assert.Equal(t, 1000.0, out.AmountLeft)
}

func TestComputeOutstanding_Scope(t *testing.T) {
	orders := []models.Order{
		approvedOrder("ord-1", "AB12C", 1000, 1),
		approvedOrder("ord-2", "CD34E", 500, 20),
		{Document: models.Document{ID: "ord-3"}, ClientID: models.Ref(clientOID), Status: models.OrderPending, TotalDebt: 700},
		{Document: models.Document{ID: "ord-4"}, ClientID: models.Ref(clientOID), Status: models.OrderApproved, TotalDebt: 50},
	}

	t.Run("single order by code", func(t *testing.T) {
		out := ComputeOutstanding(clientKeys(), orders, nil, Scope{OrderRef: "CD34E"})
		assert.Equal(t, 500.0, out.TotalDebt)
	})
	t.Run("window excludes undated and out of range", func(t *testing.T) {
		w := timeutil.Window{Start: march(15).Time, End: march(31).Time}
		out := ComputeOutstanding(clientKeys(), orders, nil, Scope{Window: w})
		assert.Equal(t, 500.0, out.TotalDebt)
	})
	t.Run("unbounded includes undated, never pending", func(t *testing.T) {
		out := ComputeOutstanding(clientKeys(), orders, nil, Scope{})
		assert.Equal(t, 1550.0, out.TotalDebt)
	})
}

func TestComputeOutstanding_MalformedRecordsDegrade(t *testing.T) {
	var bad models.Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":"ord-x","status":"approved","client_id":"`+clientOID+`","total_debt":"lots","date":"whenever"}`), &bad))
	good := approvedOrder("ord-1", "AB12C", 400, 1)

	out := ComputeOutstanding(clientKeys(), []models.Order{bad, good}, nil, Scope{})
	assert.Equal(t, 400.0, out.TotalDebt)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 1000.1, Round2(1000.1))
	assert.Equal(t, 0.3, Round2(0.1+0.2))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}

	page, info := Paginate(items, 2, 10)
	assert.Equal(t, []int{11, 12}, page)
	assert.Equal(t, 2, info.TotalPages)

	page, _ = Paginate(items, 5, 10)
	assert.Empty(t, page)

	page, info = Paginate(items, 0, 0)
	assert.Len(t, page, 10)
	assert.Equal(t, 1, info.Page)
}

func TestPriceOrder(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	t.Run("combo is the default", func(t *testing.T) {
		p, err := PriceOrder(PriceInput{Quantity: 1000, PBDC: f(10), SBDC: f(10.5), PTax: f(1), STax: f(1.2)})
		require.NoError(t, err)
		assert.Equal(t, "combo", p.Mode)
		assert.Equal(t, 11700.0, p.TotalDebt)
		assert.Equal(t, 0.5, *p.MarginPrice)
		assert.Equal(t, 0.2, *p.MarginTax)
		assert.Equal(t, 0.5, *p.Margin)
		assert.Equal(t, 10500.0, p.ReturnsSBDC)
		assert.Equal(t, 1200.0, p.ReturnsSTax)
		assert.Equal(t, 11700.0, p.ReturnsTotal)
	})

	t.Run("s_tax uses the tax margin", func(t *testing.T) {
		p, err := PriceOrder(PriceInput{Mode: "s_tax", Quantity: 100, PTax: f(1), STax: f(1.5)})
		require.NoError(t, err)
		assert.Equal(t, 150.0, p.TotalDebt)
		assert.Equal(t, 0.5, *p.Margin)
		assert.Nil(t, p.MarginPrice)
	})

	t.Run("s_bdc without purchase price has no margin", func(t *testing.T) {
		p, err := PriceOrder(PriceInput{Mode: "s_bdc", Quantity: 100, SBDC: f(11)})
		require.NoError(t, err)
		assert.Equal(t, 1100.0, p.TotalDebt)
		assert.Nil(t, p.Margin)
	})

	for name, in := range map[string]PriceInput{
		"s_bdc needs S-BDC":     {Mode: "s_bdc", STax: f(1)},
		"s_tax needs S-Tax":     {Mode: "s_tax", SBDC: f(1)},
		"combo needs both":      {Mode: "combo", SBDC: f(1)},
		"unknown mode rejected": {Mode: "barter", SBDC: f(1), STax: f(1)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := PriceOrder(in)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}
