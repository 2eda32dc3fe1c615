package services_test

import (
	"strings"
	"testing"

	"fuel-backend/internal/apperr"
	"fuel-backend/internal/models"
	"fuel-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paymentRequest(orderRef string) *models.SubmitPaymentRequest {
	return &models.SubmitPaymentRequest{
		Amount:       "200",
		BankName:     "GCB",
		AccountLast4: "4050",
		ProofURL:     "https://example.com/slip.jpg",
		OrderID:      orderRef,
	}
}

func TestPaymentService_SubmitConfirmReducesBalance(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Kwame Asante", "0244123456")
	o := f.approved(t, c, "AB12C", 500, day(3, 3), day(4, 3))
	svc := services.NewPaymentService(f.st, nil, f.clock)

	p, err := svc.Submit(ctx, c, paymentRequest("AB12C"), nil)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Equal(t, o.ID, p.OrderID.String())
	assert.Equal(t, "AB12C", p.OrderRef.String())

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, c.ClientCode, pending[0].ClientCode)
	assert.Equal(t, models.PaymentForOrder, pending[0].Kind)

	dash, err := services.NewClientService(f.st, f.clock).Dashboard(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 500.0, dash.AmountLeft)

	confirmed, err := svc.Confirm(ctx, p.ID, "admin")
	require.NoError(t, err)
	assert.True(t, confirmed.IsConfirmed())
	assert.Equal(t, "admin", confirmed.ConfirmedBy)

	again, err := svc.Confirm(ctx, p.ID, "someone else")
	require.NoError(t, err)
	assert.Equal(t, "admin", again.ConfirmedBy)

	dash, err = services.NewClientService(f.st, f.clock).Dashboard(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 200.0, dash.TotalPaid)
	assert.Equal(t, 300.0, dash.AmountLeft)

	_, err = svc.Confirm(ctx, "missing", "admin")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestPaymentService_SubmitChecksOrderOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, "Kwame Asante", "0244123456")
	other := f.register(t, "Yaw Boateng", "0244999888")
	f.approved(t, owner, "AB12C", 500, day(3, 3), day(4, 3))
	svc := services.NewPaymentService(f.st, nil, f.clock)

	_, err := svc.Submit(ctx, other, paymentRequest("AB12C"), nil)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Submit(ctx, owner, paymentRequest(""), nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req := paymentRequest("AB12C")
	req.PaymentType = "cheque"
	_, err = svc.Submit(ctx, owner, req, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	req = paymentRequest("AB12C")
	req.Amount = "0"
	_, err = svc.Submit(ctx, owner, req, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestPaymentService_SubmitUploadsProof(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Kwame Asante", "0244123456")
	f.approved(t, c, "AB12C", 500, day(3, 3), day(4, 3))

	req := paymentRequest("AB12C")
	req.ProofURL = ""
	proof := &services.Proof{Filename: "Slip.JPG", ContentType: "image/jpeg", Size: 4, Body: strings.NewReader("jpeg")}

	_, err := services.NewPaymentService(f.st, nil, f.clock).Submit(ctx, c, req, proof)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "no uploader configured")

	up := &recordingUploader{}
	p, err := services.NewPaymentService(f.st, up, f.clock).Submit(ctx, c, req, proof)
	require.NoError(t, err)
	require.Len(t, up.keys, 1)
	assert.True(t, strings.HasPrefix(up.keys[0], "proofs/"+c.ClientCode+"/"))
	assert.True(t, strings.HasSuffix(up.keys[0], ".jpg"))
	assert.Equal(t, "jpeg", string(up.body))
	assert.Equal(t, "https://proofs.example.com/"+up.keys[0], p.ProofURL)

	_, err = services.NewPaymentService(f.st, up, f.clock).Submit(ctx, c, req, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation), "proof required")
}

func TestPaymentService_HistoryMergesLedgers(t *testing.T) {
	f := newFixture(t)
	c := f.register(t, "Kwame Asante", "0244123456")
	f.approved(t, c, "AB12C", 500, day(3, 3), day(4, 3))
	svc := services.NewPaymentService(f.st, nil, f.clock)

	_, err := svc.Submit(ctx, c, paymentRequest("AB12C"), nil)
	require.NoError(t, err)
	f.now = f.now.Add(1)
	truckReq := paymentRequest("")
	truckReq.PaymentType = "truck"
	_, err = svc.Submit(ctx, c, truckReq, nil)
	require.NoError(t, err)

	history, err := svc.History(ctx, c)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, models.PaymentForTruck, history[0].Kind)
	assert.Equal(t, models.PaymentForOrder, history[1].Kind)
}
