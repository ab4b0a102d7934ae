package payment

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"medbook/models"
	"medbook/services/booking"
	"medbook/utils"

	"go.uber.org/zap"
)

// PaymentService turns pending bookings into gateway redirects and applies
// gateway confirmations.
type PaymentService interface {
	VNPayLink(ctx context.Context, actor models.Actor, bookingID string, amount int64, clientIP string) (*models.PaymentLink, error)
	VNPayReturn(ctx context.Context, params url.Values) (*models.PaymentResult, error)
	StripeLink(ctx context.Context, actor models.Actor, bookingID string) (*models.PaymentLink, error)
	StripeWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentResult, error)
}

type DefaultPaymentService struct {
	Bookings booking.BookingService
	VNPay    *VNPaySigner
	Stripe   *StripeGateway
	Now      func() time.Time
}

func NewPaymentService(bookings booking.BookingService, vnpay *VNPaySigner, stripeGw *StripeGateway) *DefaultPaymentService {
	return &DefaultPaymentService{Bookings: bookings, VNPay: vnpay, Stripe: stripeGw, Now: time.Now}
}

var errInvalidSignature = utils.NewAppError(utils.CodeInvalid, "Invalid payment signature")

// VNPayLink signs a VNPay URL for a pending booking of the caller. A
// non-zero amount must equal the booking amount.
func (s *DefaultPaymentService) VNPayLink(ctx context.Context, actor models.Actor, bookingID string, amount int64, clientIP string) (*models.PaymentLink, error) {
	b, err := s.Bookings.Payable(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if amount != 0 && amount != b.Amount {
		return nil, utils.NewAppError(utils.CodeInvalid, "Amount does not match the booking")
	}

	link, err := s.VNPay.PaymentURL(VNPayOrder{
		TxnRef:    b.ID,
		Amount:    b.Amount,
		OrderInfo: "Payment for booking " + b.PaymentCode,
		ClientIP:  clientIP,
		Created:   s.Now(),
	})
	if err != nil {
		return nil, utils.NewAppError(utils.CodeUnavailable, "VNPay is not available")
	}
	return &models.PaymentLink{PaymentURL: link, Provider: models.PaymentVNPay, Reference: b.PaymentCode}, nil
}

// VNPayReturn verifies the redirect VNPay sends the browser back with.
// Only response code 00 marks the booking paid.
func (s *DefaultPaymentService) VNPayReturn(ctx context.Context, params url.Values) (*models.PaymentResult, error) {
	if !s.VNPay.Verify(params) {
		return nil, errInvalidSignature
	}
	result := &models.PaymentResult{
		BookingID: params.Get("vnp_TxnRef"),
		Code:      params.Get("vnp_ResponseCode"),
	}
	if result.Code != VNPaySuccessCode {
		utils.GetLogger().Info("VNPay payment not completed",
			zap.String("bookingId", result.BookingID), zap.String("code", result.Code))
		return result, nil
	}

	// vnp_Amount is in hundredths of a dong.
	paid, err := strconv.ParseInt(params.Get("vnp_Amount"), 10, 64)
	if err != nil || paid%100 != 0 {
		return nil, booking.ErrAmountMismatch
	}
	receipt := models.PaymentReceipt{
		Method:    models.PaymentVNPay,
		Reference: params.Get("vnp_TransactionNo"),
		Amount:    paid / 100,
	}
	if _, err := s.Bookings.MarkPaid(ctx, result.BookingID, receipt); err != nil {
		return nil, err
	}
	result.Paid = true
	return result, nil
}

func (s *DefaultPaymentService) StripeLink(ctx context.Context, actor models.Actor, bookingID string) (*models.PaymentLink, error) {
	b, err := s.Bookings.Payable(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	description := "Medical appointment"
	if b.Schedule != nil {
		description = fmt.Sprintf("Appointment %s %s-%s", b.Schedule.DateSchedule, b.Schedule.StartTime, b.Schedule.EndTime)
	}
	cs, err := s.Stripe.Checkout(b.ID, description, b.Amount)
	if err != nil {
		utils.GetLogger().Error("Stripe checkout failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, utils.NewAppError(utils.CodeUnavailable, "Stripe is not available")
	}
	return &models.PaymentLink{PaymentURL: cs.URL, Provider: models.PaymentStripe, Reference: cs.ID}, nil
}

// StripeWebhook marks the booking of a completed checkout as paid. Events
// it does not handle come back as a nil result.
func (s *DefaultPaymentService) StripeWebhook(ctx context.Context, payload []byte, signature string) (*models.PaymentResult, error) {
	cs, err := s.Stripe.CompletedCheckout(payload, signature)
	if err != nil {
		utils.GetLogger().Warn("Rejected stripe webhook", zap.Error(err))
		return nil, errInvalidSignature
	}
	if cs == nil {
		return nil, nil
	}
	bookingID := cs.ClientReferenceID
	if bookingID == "" {
		bookingID = cs.Metadata["booking_id"]
	}
	if bookingID == "" {
		return nil, errors.New("checkout session carries no booking reference")
	}
	receipt := models.PaymentReceipt{Method: models.PaymentStripe, Reference: cs.ID, Amount: cs.AmountTotal}
	if _, err := s.Bookings.MarkPaid(ctx, bookingID, receipt); err != nil {
		return nil, err
	}
	return &models.PaymentResult{BookingID: bookingID, Paid: true}, nil
}
