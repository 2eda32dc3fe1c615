package services_test

import (
	"testing"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTruckService_ExternalClientLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := services.NewTruckService(f.st, f.clock)

	truck, err := svc.AddTruck(ctx, &models.AddTruckRequest{TruckNumber: "gt 1234-20", DriverName: "Yaw", DriverPhone: "0240000000"})
	require.NoError(t, err)
	assert.Equal(t, "GT 1234-20", truck.TruckNumber)

	_, err = svc.AddTruck(ctx, &models.AddTruckRequest{TruckNumber: "GT 1234-20"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	o, err := svc.Initiate(ctx, &models.InitiateTruckOrderRequest{
		TruckID:     truck.ID,
		Destination: "Tamale",
		TotalDebt:   "5000",
		ClientName:  "Northern Haulage",
		ClientPhone: "0209876543",
	})
	require.NoError(t, err)
	assert.Equal(t, models.TruckOrderPending, o.Status)
	require.False(t, o.ClientID.IsZero())

	client, err := f.st.Clients.Get(ctx, o.ClientID.String())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.Equal(t, models.ClientExternal, client.Status)

	started, err := svc.Start(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TruckOrderEnroute, started.Status)
	assert.False(t, started.StartedAt.IsZero())

	done, err := svc.Complete(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TruckOrderDelivered, done.Status)

	_, err = svc.AddExpense(ctx, o.ID, &models.TruckExpenseRequest{Label: "Fuel", Amount: "500"})
	require.NoError(t, err)

	pay, err := services.NewPaymentService(f.st, nil, f.clock).Submit(ctx, client, &models.SubmitPaymentRequest{
		PaymentType:  "truck",
		Amount:       "2000",
		BankName:     "GCB",
		AccountLast4: "4050",
		ProofURL:     "https://example.com/slip.jpg",
	}, nil)
	require.NoError(t, err)

	page, err := svc.Debtors(ctx, "", true, 1)
	require.NoError(t, err)
	require.Len(t, page.Debtors, 1)
	assert.Equal(t, 5000.0, page.Debtors[0].AmountLeft, "pending payments do not count")

	_, err = svc.ConfirmTruckPayment(ctx, pay.ID, "admin")
	require.NoError(t, err)

	page, err = svc.Debtors(ctx, "northern", true, 1)
	require.NoError(t, err)
	require.Len(t, page.Debtors, 1)
	d := page.Debtors[0]
	assert.Equal(t, "Northern Haulage", d.ClientName)
	assert.Equal(t, 2000.0, d.TotalPaid)
	assert.Equal(t, 3000.0, d.AmountLeft)
	assert.Equal(t, 500.0, d.TotalExpense)
	assert.Equal(t, 4500.0, d.Settled)
	assert.Equal(t, 1, page.Total)

	summary, err := svc.Summary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, summary.TotalDebt)
	assert.Equal(t, 2000.0, summary.TotalPaid)
	assert.Equal(t, 500.0, summary.TotalExpense)

	mine, err := svc.ExternalOrders(ctx, client)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Tamale", mine[0].Destination)
}

func TestTruckService_InitiateNeedsAClient(t *testing.T) {
	f := newFixture(t)
	svc := services.NewTruckService(f.st, f.clock)
	truck, err := svc.AddTruck(ctx, &models.AddTruckRequest{TruckNumber: "GT 1"})
	require.NoError(t, err)

	_, err = svc.Initiate(ctx, &models.InitiateTruckOrderRequest{TruckID: truck.ID, Destination: "Tamale", TotalDebt: "100"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Initiate(ctx, &models.InitiateTruckOrderRequest{TruckID: "missing", Destination: "Tamale", TotalDebt: "100", ClientName: "A", ClientPhone: "1"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Start(ctx, "missing")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
