package services_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories/memstore"
	"fuel-backend/internal/services"

	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

type fixture struct {
	db  *memstore.DB
	st  services.Stores
	now time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memstore.New()
	return &fixture{
		db: db,
		st: services.Stores{
			Clients:       db.Clients(),
			Orders:        db.Orders(),
			Payments:      db.Payments(),
			TruckPayments: db.TruckPayments(),
			BDCs:          db.BDCs(),
			Trucks:        db.Trucks(),
			BankAccounts:  db.BankAccounts(),
			Products:      db.Products(),
			Taxes:         db.Taxes(),
		},
		now: time.Date(2024, time.March, 28, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) clock() time.Time { return f.now }

func (f *fixture) register(t *testing.T, name, phone string) *models.Client {
	t.Helper()
	c, err := services.NewClientService(f.st, f.clock).Register(ctx, &models.RegisterClientRequest{
		Name:         name,
		Phone:        phone,
		IDType:       "Ghana Card",
		IDNumber:     "GHA-000000000-0",
		NextOfKin:    "Ama Mensah",
		NextOfKinTel: "0201111111",
		Relationship: "Sister",
	}, "admin")
	require.NoError(t, err)
	return c
}

// approved stores an approved order for c directly.
func (f *fixture) approved(t *testing.T, c *models.Client, code string, debt float64, date, due time.Time) *models.Order {
	t.Helper()
	o := &models.Order{
		OrderCode: code,
		ClientID:  models.Ref(c.ID),
		Product:   "PMS",
		Quantity:  1000,
		Status:    models.OrderApproved,
		TotalDebt: models.Amount(debt),
		Date:      models.NewDate(date),
		DueDate:   models.NewDate(due),
	}
	o.Touch(date)
	require.NoError(t, f.st.Orders.Create(ctx, o))
	return o
}

// confirmedPayment stores a confirmed order payment for c directly.
func (f *fixture) confirmedPayment(t *testing.T, c *models.Client, orderRef string, amount float64, date time.Time) *models.Payment {
	t.Helper()
	p := &models.Payment{
		ClientID: models.Ref(c.ID),
		OrderID:  models.Ref(orderRef),
		Amount:   models.Amount(amount),
		Status:   models.PaymentConfirmed,
		Date:     models.NewDate(date),
	}
	p.Touch(date)
	require.NoError(t, f.st.Payments.Create(ctx, p))
	return p
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 9, 0, 0, 0, time.UTC)
}

// codes returns a generator handing out the given codes in order.
func codes(list ...string) func() string {
	i := 0
	return func() string {
		c := list[i%len(list)]
		i++
		return c
	}
}

type memCache struct {
	data        map[string][]byte
	hits        int
	invalidated []string
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool) {
	v, ok := c.data[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) {
	c.data[key] = data
}

func (c *memCache) InvalidatePattern(_ context.Context, pattern string) {
	c.invalidated = append(c.invalidated, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
}

type recordingUploader struct {
	keys []string
	body []byte
}

func (u *recordingUploader) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	u.keys = append(u.keys, key)
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	u.body = buf.Bytes()
	return "https://proofs.example.com/" + key, nil
}
