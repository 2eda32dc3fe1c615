package repositories_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-backend/internal/database"
	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

const clientOID = "65a1b2c3d4e5f60718293a4b"

// testPool connects to FUEL_TEST_DSN and rebuilds the schema from the
// embedded migrations. Tests are skipped when no database is configured.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("FUEL_TEST_DSN")
	if dsn == "" {
		t.Skip("FUEL_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	reset, err := database.ResetScript()
	require.NoError(t, err)
	_, err = pool.Exec(ctx, reset)
	require.NoError(t, err)
	_, err = database.NewMigrator(pool).RunMigrations(ctx)
	require.NoError(t, err)
	return pool
}

// seed stores a raw document, the way older records were written.
func seed(t *testing.T, pool *pgxpool.Pool, table, id, doc string) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO `+table+` (id, doc) VALUES ($1, $2::jsonb)`, id, doc)
	require.NoError(t, err)
}

func ids[T any, P interface {
	*T
	GetID() string
}](docs []T) []string {
	out := make([]string, 0, len(docs))
	for i := range docs {
		out = append(out, P(&docs[i]).GetID())
	}
	return out
}

func TestOrderRepository_ClientRefShapes(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	seed(t, pool, repositories.TableOrders, "ord-1", `{"order_id":"AAAAA","status":"approved","client_id":{"$oid":"65A1B2C3D4E5F60718293A4B"}}`)
	seed(t, pool, repositories.TableOrders, "ord-2", `{"order_id":"BBBBB","status":"pending","client_id":"65a1b2c3d4e5f60718293a4b"}`)
	seed(t, pool, repositories.TableOrders, "ord-3", `{"order_id":"CCCCC","status":"approved","client_id":" tt24001 "}`)
	seed(t, pool, repositories.TableOrders, "ord-4", `{"order_id":"DDDDD","status":"approved","client_id":"TT24002"}`)

	repo := repositories.NewOrderRepository(pool)
	keys := repositories.ClientFilter{clientOID, "TT24001"}

	orders, err := repo.List(ctx, repositories.OrderFilter{Clients: keys})
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1", "ord-2", "ord-3"}, ids(orders))
	assert.Equal(t, "65A1B2C3D4E5F60718293A4B", orders[0].ClientID.String())

	approved, err := repo.List(ctx, repositories.OrderFilter{Status: models.OrderApproved, Clients: keys})
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1", "ord-3"}, ids(approved))

	everyone, err := repo.List(ctx, repositories.OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, everyone, 4)

	byCode, err := repo.GetByRef(ctx, " BBBBB ")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, "ord-2", byCode.ID)

	byID, err := repo.GetByRef(ctx, "ORD-3")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "CCCCC", byID.OrderCode)

	missing, err := repo.GetByRef(ctx, "ZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPaymentRepository_ClientRefShapes(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	seed(t, pool, repositories.TablePayments, "pay-1", `{"status":"confirmed","amount":"GHS 1,200","client_id":{"$oid":"65a1b2c3d4e5f60718293a4b"}}`)
	seed(t, pool, repositories.TablePayments, "pay-2", `{"status":"pending","amount":50,"client_id":"TT24001"}`)
	seed(t, pool, repositories.TablePayments, "pay-3", `{"status":"confirmed","amount":75,"client_id":"TT24009"}`)

	repo := repositories.NewPaymentRepository(pool)
	pays, err := repo.List(ctx, repositories.PaymentFilter{Status: models.PaymentConfirmed, Clients: repositories.ClientFilter{"TT24001", clientOID}})
	require.NoError(t, err)
	require.Len(t, pays, 1)
	assert.Equal(t, "pay-1", pays[0].ID)
	assert.Equal(t, 1200.0, pays[0].Amount.Float())

	ok, err := repo.Confirm(ctx, "PAY-2", "esi", time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Confirm(ctx, "pay-2", "esi", time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "second confirmation is a no-op")
}

func TestBDCRepository_ListTransactionsUnwrapsOID(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	seed(t, pool, repositories.TableBDCTransactions, "tx-1", `{"bdc_id":{"$oid":"BDC-1"},"type":"deposit","amount":"1,000"}`)
	seed(t, pool, repositories.TableBDCTransactions, "tx-2", `{"bdc_id":"bdc-1","type":"deposit","amount":500}`)
	seed(t, pool, repositories.TableBDCTransactions, "tx-3", `{"bdc_id":"bdc-2","type":"deposit","amount":1}`)

	repo := repositories.NewBDCRepository(pool)
	txs, err := repo.ListTransactions(ctx, "bdc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-1", "tx-2"}, ids(txs))
	assert.Equal(t, 1000.0, txs[0].Amount.Float())

	all, err := repo.ListTransactions(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestBDCRepository_SetEntryDelivery(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	at := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)

	seed(t, pool, repositories.TableOrders, "ord-1", `{"order_id":"AAAAA","status":"approved","client_id":"TT24001"}`)
	seed(t, pool, repositories.TableBDCs, "bdc-1", `{"name":"Star BDC","payment_details":[
		{"order_id":{"$oid":"ord-1"},"payment_type":"from account","amount":900},
		{"order_id":"ZZZZZ","payment_type":"credit","amount":100}
	]}`)

	bdcs := repositories.NewBDCRepository(pool)
	orders := repositories.NewOrderRepository(pool)

	res, err := bdcs.SetEntryDelivery(ctx, "BDC-1", 0, models.DeliveryDelivered, at)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.BDCUpdated)
	assert.True(t, res.OrderUpdated)

	o, err := orders.Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, o.DeliveryStatus)
	assert.False(t, o.DeliveredDate.IsZero())

	b, err := bdcs.Get(ctx, "bdc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, b.PaymentDetails[0].DeliveryStatus)
	assert.Equal(t, 900.0, b.PaymentDetails[0].Amount.Float())

	res, err = bdcs.SetEntryDelivery(ctx, "bdc-1", 1, models.DeliveryPending, at)
	require.NoError(t, err)
	assert.True(t, res.BDCUpdated)
	assert.False(t, res.OrderUpdated, "entry names no known order")

	_, err = bdcs.SetEntryDelivery(ctx, "bdc-1", 5, models.DeliveryPending, at)
	assert.Error(t, err)

	res, err = bdcs.SetEntryDelivery(ctx, "bdc-9", 0, models.DeliveryPending, at)
	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestOrderRepository_SetDeliveryStatusMirrorsBDC(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	at := time.Date(2024, time.March, 21, 8, 0, 0, 0, time.UTC)

	seed(t, pool, repositories.TableOrders, "ord-1", `{"order_id":"AAAAA","status":"approved","client_id":"TT24001"}`)
	seed(t, pool, repositories.TableBDCs, "bdc-1", `{"name":"Star BDC","payment_details":[{"order_id":{"$oid":"aaaaa"},"amount":900}]}`)

	res, err := repositories.NewOrderRepository(pool).SetDeliveryStatus(ctx, "ord-1", models.DeliveryDelivered, at)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.OrderUpdated)
	assert.True(t, res.BDCUpdated)

	b, err := repositories.NewBDCRepository(pool).Get(ctx, "bdc-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, b.PaymentDetails[0].DeliveryStatus)

	o, err := repositories.NewOrderRepository(pool).Get(ctx, "ord-1")
	require.NoError(t, err)
	require.Len(t, o.DeliveryHistory, 1)
	assert.Equal(t, models.DeliveryDelivered, o.DeliveryHistory[0].Status)
}

func TestOrderRepository_ApplyPricingIsAtomic(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()

	orders := repositories.NewOrderRepository(pool)
	bdcs := repositories.NewBDCRepository(pool)

	bdc := &models.BDC{Name: "Star BDC"}
	require.NoError(t, bdcs.Create(ctx, bdc))
	o := &models.Order{OrderCode: "AAAAA", ClientID: models.Ref("TT24001"), Status: models.OrderPending}
	require.NoError(t, orders.Create(ctx, o))

	o.Status = models.OrderApproved
	o.TotalDebt = 1000
	o.BDCID = models.Ref(bdc.ID)
	entry := &models.PaymentDetail{OrderID: models.Ref(o.ID), PaymentType: "from account", Amount: 900}
	require.NoError(t, orders.ApplyPricing(ctx, o, entry))

	saved, err := orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderApproved, saved.Status)
	assert.Equal(t, 1000.0, saved.TotalDebt.Float())
	got, err := bdcs.Get(ctx, bdc.ID)
	require.NoError(t, err)
	require.Len(t, got.PaymentDetails, 1)
	assert.Equal(t, o.ID, got.PaymentDetails[0].OrderID.String())

	other := &models.Order{OrderCode: "BBBBB", ClientID: models.Ref("TT24001"), Status: models.OrderPending}
	require.NoError(t, orders.Create(ctx, other))
	other.Status = models.OrderApproved
	other.BDCID = "no-such-bdc"
	assert.Error(t, orders.ApplyPricing(ctx, other, entry))

	unchanged, err := orders.Get(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, unchanged.Status, "order write rolls back with the bdc write")
}

func TestClientRepository_CodeLookupIgnoresCase(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	repo := repositories.NewClientRepository(pool)

	c := &models.Client{ClientCode: "TT244560001", Name: "Ama Mensah", Status: models.ClientActive}
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByCode(ctx, " tt244560001 ")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.ID)

	dup := &models.Client{ClientCode: "tt244560001", Name: "Copy"}
	assert.ErrorIs(t, repo.Create(ctx, dup), repositories.ErrDuplicate)

	n, err := repo.CountCodePrefix(ctx, "TT24456")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
