package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fuel-backend/internal/models"
	"fuel-backend/internal/repositories"
)

func orderIDs(orders []models.Order) []string {
	out := make([]string, 0, len(orders))
	for i := range orders {
		out = append(out, orders[i].ID)
	}
	return out
}

func TestMatchesRefIgnoresCase(t *testing.T) {
	keys := repositories.ClientFilter{"65a1b2c3d4e5f60718293a4b", "TT24001"}

	assert.True(t, matchesRef("65A1B2C3D4E5F60718293A4B", keys))
	assert.True(t, matchesRef(" tt24001 ", keys))
	assert.True(t, matchesRef("TT24001", repositories.ClientFilter{" tt24001"}))
	assert.False(t, matchesRef("TT24002", keys))
	assert.True(t, matchesRef("anything", nil), "empty filter matches all")
}

func TestOrders_ClientRefShapes(t *testing.T) {
	db := New()
	ctx := context.Background()
	db.PutRaw(repositories.TableOrders, "ord-1", []byte(`{"order_id":"AAAAA","status":"approved","client_id":{"$oid":"65A1B2C3D4E5F60718293A4B"}}`))
	db.PutRaw(repositories.TableOrders, "ord-2", []byte(`{"order_id":"BBBBB","status":"pending","client_id":"65a1b2c3d4e5f60718293a4b"}`))
	db.PutRaw(repositories.TableOrders, "ord-3", []byte(`{"order_id":"CCCCC","status":"approved","client_id":" tt24001 "}`))
	db.PutRaw(repositories.TableOrders, "ord-4", []byte(`{"order_id":"DDDDD","status":"approved","client_id":"TT24002"}`))

	repo := db.Orders()
	keys := repositories.ClientFilter{"65a1b2c3d4e5f60718293a4b", "TT24001"}

	orders, err := repo.List(ctx, repositories.OrderFilter{Clients: keys})
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1", "ord-2", "ord-3"}, orderIDs(orders))

	approved, err := repo.List(ctx, repositories.OrderFilter{Status: models.OrderApproved, Clients: keys})
	require.NoError(t, err)
	assert.Equal(t, []string{"ord-1", "ord-3"}, orderIDs(approved))

	byCode, err := repo.GetByRef(ctx, " BBBBB ")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, "ord-2", byCode.ID)

	byID, err := repo.GetByRef(ctx, "ORD-3")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "CCCCC", byID.OrderCode)
}

func TestBDCs_TransactionsAndEntryDelivery(t *testing.T) {
	db := New()
	ctx := context.Background()
	at := time.Date(2024, time.March, 20, 10, 0, 0, 0, time.UTC)

	db.PutRaw(repositories.TableBDCTransactions, "tx-1", []byte(`{"bdc_id":{"$oid":"BDC-1"},"type":"deposit","amount":"1,000"}`))
	db.PutRaw(repositories.TableBDCTransactions, "tx-2", []byte(`{"bdc_id":"bdc-1","type":"deposit","amount":500}`))
	db.PutRaw(repositories.TableBDCTransactions, "tx-3", []byte(`{"bdc_id":"bdc-2","type":"deposit","amount":1}`))
	db.PutRaw(repositories.TableOrders, "ord-1", []byte(`{"order_id":"AAAAA","status":"approved","client_id":"TT24001"}`))
	db.PutRaw(repositories.TableBDCs, "bdc-1", []byte(`{"name":"Star BDC","payment_details":[{"order_id":{"$oid":"ord-1"},"amount":900}]}`))

	bdcs := db.BDCs()
	txs, err := bdcs.ListTransactions(ctx, "bdc-1")
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, 1000.0, txs[0].Amount.Float())

	res, err := bdcs.SetEntryDelivery(ctx, "BDC-1", 0, models.DeliveryDelivered, at)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.True(t, res.OrderUpdated)

	o, err := db.Orders().Get(ctx, "ord-1")
	require.NoError(t, err)
	assert.Equal(t, models.DeliveryDelivered, o.DeliveryStatus)
}

func TestOrders_ApplyPricingLeavesOrderOnMissingBDC(t *testing.T) {
	db := New()
	ctx := context.Background()
	repo := db.Orders()

	o := &models.Order{OrderCode: "AAAAA", ClientID: "TT24001", Status: models.OrderPending}
	require.NoError(t, repo.Create(ctx, o))

	o.Status = models.OrderApproved
	o.BDCID = "no-such-bdc"
	err := repo.ApplyPricing(ctx, o, &models.PaymentDetail{OrderID: models.Ref(o.ID), Amount: 900})
	assert.Error(t, err)

	saved, err := repo.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, saved.Status)
}
