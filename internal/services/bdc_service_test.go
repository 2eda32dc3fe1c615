package services_test

import (
	"testing"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBDCService_BalanceIsDerived(t *testing.T) {
	f := newFixture(t)
	b := addBDC(t, f, "Petrosol")
	svc := services.NewBDCService(f.st, f.clock)

	bal, err := svc.Deposit(ctx, b.ID, &models.DepositRequest{Amount: "5000", Type: "add"})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, bal.Balance)

	bal, err = svc.RecordPayment(ctx, b.ID, &models.BDCPaymentRequest{PaymentType: "cash", Amount: "1000"})
	require.NoError(t, err)
	assert.Equal(t, 5000.0, bal.Balance, "cash does not move the balance")

	bal, err = svc.RecordPayment(ctx, b.ID, &models.BDCPaymentRequest{PaymentType: "Credit", Amount: "2000"})
	require.NoError(t, err)
	assert.Equal(t, 2000.0, bal.CreditTotal)
	assert.Equal(t, 3000.0, bal.Balance)

	f.now = f.now.AddDate(0, 0, 1)
	bal, err = svc.RecordPayment(ctx, b.ID, &models.BDCPaymentRequest{PaymentType: "from account", Amount: "500"})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, bal.Balance)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 2500.0, list[0].Balance)
	assert.Equal(t, "Petrosol", list[0].Name)

	profile, err := svc.Profile(ctx, b.ID, "", "")
	require.NoError(t, err)
	require.Len(t, profile.Payments, 3)
	assert.Equal(t, 2, profile.Payments[0].Index, "newest entry first")
	require.Len(t, profile.Deposits, 1)
	assert.Equal(t, 2500.0, profile.Balance)

	profile, err = svc.Profile(ctx, b.ID, "2024-03-29", "2024-03-31")
	require.NoError(t, err)
	assert.Empty(t, profile.Deposits)
	profile, err = svc.Profile(ctx, b.ID, "2024-03-28", "2024-03-28")
	require.NoError(t, err)
	assert.Len(t, profile.Deposits, 1, "end date is inclusive")
}

func TestBDCService_Validation(t *testing.T) {
	f := newFixture(t)
	b := addBDC(t, f, "Petrosol")
	svc := services.NewBDCService(f.st, f.clock)

	_, err := svc.Add(ctx, &models.AddBDCRequest{Name: "PETROSOL", Phone: "1", Location: "x", RepName: "y", RepPhone: "2"})
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Add(ctx, &models.AddBDCRequest{Name: "Other"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Deposit(ctx, b.ID, &models.DepositRequest{Amount: "100", Type: "withdraw"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Deposit(ctx, b.ID, &models.DepositRequest{Amount: "-5", Type: "add"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.RecordPayment(ctx, b.ID, &models.BDCPaymentRequest{PaymentType: "cheque", Amount: "10"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = svc.Deposit(ctx, "missing", &models.DepositRequest{Amount: "100", Type: "add"})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.UpdateDelivery(ctx, b.ID, 3, "delivered")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestBDCService_UpdateDeliveryMirrorsOrder(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Kwame Asante", "0244123456")
	b := addBDC(t, f, "Petrosol")
	o := f.approved(t, c, "AB12C", 500, day(3, 3), day(4, 3))
	svc := services.NewBDCService(f.st, f.clock)

	_, err := svc.RecordPayment(ctx, b.ID, &models.BDCPaymentRequest{PaymentType: "cash", Amount: "400", OrderID: o.ID})
	require.NoError(t, err)

	res, err := svc.UpdateDelivery(ctx, b.ID, 0, "delivered")
	require.NoError(t, err)
	assert.True(t, res.BDCUpdated)
	assert.True(t, res.OrderUpdated)

	stored, err := f.st.Orders.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, "delivered", stored.DeliveryStatus)
	assert.False(t, stored.DeliveredDate.IsZero())
}
