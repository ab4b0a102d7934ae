package payment

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"medbook/models"
	"medbook/services/booking"
	"medbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// fakeBookings implements the calls the payment service makes; anything
// else panics through the nil embedded interface.
type fakeBookings struct {
	booking.BookingService
	payable *models.BookingView
	due     int64
	paid    []string
}

func (f *fakeBookings) Payable(_ context.Context, actor models.Actor, id string) (*models.BookingView, error) {
	if f.payable == nil || f.payable.ID != id || f.payable.UserID != actor.UserID {
		return nil, utils.NewAppError(utils.CodeNotFound, "Booking not found")
	}
	return f.payable, nil
}

func (f *fakeBookings) MarkPaid(_ context.Context, id string, receipt models.PaymentReceipt) (*models.Booking, error) {
	if receipt.Amount != f.due {
		return nil, booking.ErrAmountMismatch
	}
	f.paid = append(f.paid, id+"|"+receipt.Method+"|"+receipt.Reference)
	return &models.Booking{ID: id, Status: models.BookingPaid}, nil
}

func testSigner() *VNPaySigner {
	return NewVNPaySigner(VNPayConfig{
		TmnCode:    "MEDBOOK1",
		HashSecret: "vnpay-secret",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "https://medbook.example/payment/return",
	})
}

func TestVNPayURLIsSignedAndVerifiable(t *testing.T) {
	signer := testSigner()
	created := time.Date(2030, 1, 1, 1, 0, 0, 0, time.UTC)

	link, err := signer.PaymentURL(VNPayOrder{TxnRef: "b-1", Amount: 200000, OrderInfo: "Payment for booking ABC", ClientIP: "10.0.0.1", Created: created})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(link, "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html?"))

	u, err := url.Parse(link)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "20000000", q.Get("vnp_Amount"))
	assert.Equal(t, "20300101080000", q.Get("vnp_CreateDate"), "GMT+7")
	assert.Equal(t, "20300101081500", q.Get("vnp_ExpireDate"))
	assert.True(t, signer.Verify(q))

	q.Set("vnp_Amount", "100")
	assert.False(t, signer.Verify(q), "tampered amount")

	q.Del("vnp_SecureHash")
	assert.False(t, signer.Verify(q))
}

func TestVNPayNotConfigured(t *testing.T) {
	_, err := NewVNPaySigner(VNPayConfig{}).PaymentURL(VNPayOrder{TxnRef: "b-1", Amount: 1})
	assert.Error(t, err)
}

// signedReturn builds the query VNPay would send back to the return URL.
func signedReturn(signer *VNPaySigner, bookingID, code string) url.Values {
	return signedReturnFor(signer, bookingID, code, "20000000")
}

func signedReturnFor(signer *VNPaySigner, bookingID, code, vnpAmount string) url.Values {
	params := url.Values{}
	params.Set("vnp_TxnRef", bookingID)
	params.Set("vnp_ResponseCode", code)
	params.Set("vnp_TransactionNo", "14000001")
	params.Set("vnp_Amount", vnpAmount)
	params.Set("vnp_SecureHash", signer.sign(canonicalQuery(params)))
	return params
}

func TestVNPayReturn(t *testing.T) {
	utils.Logger = zap.NewNop()
	ctx := context.Background()
	signer := testSigner()

	t.Run("success marks paid", func(t *testing.T) {
		bookings := &fakeBookings{due: 200000}
		svc := NewPaymentService(bookings, signer, nil)
		res, err := svc.VNPayReturn(ctx, signedReturn(signer, "b-1", "00"))
		require.NoError(t, err)
		assert.True(t, res.Paid)
		assert.Equal(t, []string{"b-1|vnpay|14000001"}, bookings.paid)
	})

	t.Run("failure code leaves booking alone", func(t *testing.T) {
		bookings := &fakeBookings{due: 200000}
		svc := NewPaymentService(bookings, signer, nil)
		res, err := svc.VNPayReturn(ctx, signedReturn(signer, "b-1", "24"))
		require.NoError(t, err)
		assert.False(t, res.Paid)
		assert.Equal(t, "24", res.Code)
		assert.Empty(t, bookings.paid)
	})

	t.Run("wrong amount is refused", func(t *testing.T) {
		bookings := &fakeBookings{due: 900000}
		svc := NewPaymentService(bookings, signer, nil)
		_, err := svc.VNPayReturn(ctx, signedReturn(signer, "b-1", "00"))
		assert.ErrorIs(t, err, booking.ErrAmountMismatch)
		assert.Empty(t, bookings.paid)

		_, err = svc.VNPayReturn(ctx, signedReturnFor(signer, "b-1", "00", "90000050"))
		assert.ErrorIs(t, err, booking.ErrAmountMismatch, "fractional dong")
		assert.Empty(t, bookings.paid)
	})

	t.Run("bad signature", func(t *testing.T) {
		bookings := &fakeBookings{due: 200000}
		svc := NewPaymentService(bookings, signer, nil)
		params := signedReturn(signer, "b-1", "00")
		params.Set("vnp_TxnRef", "b-2")
		_, err := svc.VNPayReturn(ctx, params)
		assert.Equal(t, errInvalidSignature, err)
		assert.Empty(t, bookings.paid)
	})
}

func TestVNPayLinkChecksAmount(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "u-1", Role: models.RolePatient}
	bookings := &fakeBookings{payable: &models.BookingView{Booking: models.Booking{ID: "b-1", UserID: "u-1", Amount: 200000, PaymentCode: "ABC"}}}
	svc := NewPaymentService(bookings, testSigner(), nil)

	_, err := svc.VNPayLink(ctx, actor, "b-1", 1000, "10.0.0.1")
	require.Error(t, err)

	link, err := svc.VNPayLink(ctx, actor, "b-1", 200000, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentVNPay, link.Provider)
	assert.Equal(t, "ABC", link.Reference)
	assert.Contains(t, link.PaymentURL, "vnp_TxnRef=b-1")

	_, err = svc.VNPayLink(ctx, models.Actor{UserID: "u-2"}, "b-1", 0, "10.0.0.1")
	assert.Error(t, err)
}

func TestStripeLinkUsesCheckoutSession(t *testing.T) {
	ctx := context.Background()
	actor := models.Actor{UserID: "u-1", Role: models.RolePatient}
	bookings := &fakeBookings{payable: &models.BookingView{
		Booking:  models.Booking{ID: "b-1", UserID: "u-1", Amount: 300000},
		Schedule: &models.Schedule{DateSchedule: "2030-01-10", StartTime: "09:00", EndTime: "10:00"},
	}}

	var got *stripe.CheckoutSessionParams
	gw := NewStripeGateway(StripeConfig{SuccessURL: "https://medbook.example/ok", CancelURL: "https://medbook.example/cancel"},
		func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			got = params
			return &stripe.CheckoutSession{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil
		})
	svc := NewPaymentService(bookings, testSigner(), gw)

	link, err := svc.StripeLink(ctx, actor, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/c/cs_1", link.PaymentURL)
	assert.Equal(t, "cs_1", link.Reference)

	require.NotNil(t, got)
	assert.Equal(t, "b-1", *got.ClientReferenceID)
	assert.Equal(t, int64(300000), *got.LineItems[0].PriceData.UnitAmount)
	assert.Equal(t, "Appointment 2030-01-10 09:00-10:00", *got.LineItems[0].PriceData.ProductData.Name)
	assert.Equal(t, "https://medbook.example/ok?bookingId=b-1", *got.SuccessURL)
}

func stripeEvent(t *testing.T, secret, eventType, paymentStatus string, amountTotal int64) ([]byte, string) {
	t.Helper()
	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2023-10-16","type":"` + eventType + `",` +
		`"data":{"object":{"id":"cs_1","object":"checkout.session","client_reference_id":"b-1","payment_status":"` + paymentStatus + `",` +
		`"amount_total":` + strconv.FormatInt(amountTotal, 10) + `,"currency":"vnd"}}}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{Payload: payload, Secret: secret})
	return signed.Payload, signed.Header
}

func TestStripeWebhook(t *testing.T) {
	utils.Logger = zap.NewNop()
	ctx := context.Background()
	const secret = "whsec_test"

	t.Run("completed checkout marks paid", func(t *testing.T) {
		bookings := &fakeBookings{due: 300000}
		svc := NewPaymentService(bookings, testSigner(), NewStripeGateway(StripeConfig{WebhookSecret: secret}, nil))
		payload, header := stripeEvent(t, secret, "checkout.session.completed", "paid", 300000)
		res, err := svc.StripeWebhook(ctx, payload, header)
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, "b-1", res.BookingID)
		assert.Equal(t, []string{"b-1|stripe|cs_1"}, bookings.paid)
	})

	t.Run("checkout for another amount is refused", func(t *testing.T) {
		bookings := &fakeBookings{due: 900000}
		svc := NewPaymentService(bookings, testSigner(), NewStripeGateway(StripeConfig{WebhookSecret: secret}, nil))
		payload, header := stripeEvent(t, secret, "checkout.session.completed", "paid", 300000)
		_, err := svc.StripeWebhook(ctx, payload, header)
		assert.ErrorIs(t, err, booking.ErrAmountMismatch)
		assert.Empty(t, bookings.paid)
	})

	t.Run("unpaid and other events are ignored", func(t *testing.T) {
		bookings := &fakeBookings{}
		svc := NewPaymentService(bookings, testSigner(), NewStripeGateway(StripeConfig{WebhookSecret: secret}, nil))

		payload, header := stripeEvent(t, secret, "checkout.session.completed", "unpaid", 300000)
		res, err := svc.StripeWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Nil(t, res)

		payload, header = stripeEvent(t, secret, "checkout.session.expired", "unpaid", 300000)
		res, err = svc.StripeWebhook(ctx, payload, header)
		require.NoError(t, err)
		assert.Nil(t, res)
		assert.Empty(t, bookings.paid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		bookings := &fakeBookings{}
		svc := NewPaymentService(bookings, testSigner(), NewStripeGateway(StripeConfig{WebhookSecret: secret}, nil))
		payload, header := stripeEvent(t, "whsec_other", "checkout.session.completed", "paid", 300000)
		_, err := svc.StripeWebhook(ctx, payload, header)
		assert.Equal(t, errInvalidSignature, err)
		assert.Empty(t, bookings.paid)
	})
}
