package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"medbook/middleware"
	"medbook/services/booking"
	"medbook/services/payment"
	"medbook/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Stripe rejects webhook bodies above this size.
const maxWebhookBody = 65536

type PaymentHandler struct {
	Service payment.PaymentService
}

func NewPaymentHandler(svc payment.PaymentService) *PaymentHandler {
	return &PaymentHandler{Service: svc}
}

// VNPayLinkHandler handles GET /payment/vn-pay?bookingId=&amount=.
func (h *PaymentHandler) VNPayLinkHandler(c *gin.Context) {
	bookingID := c.Query("bookingId")
	if bookingID == "" {
		utils.JSONError(c, http.StatusBadRequest, "bookingId is required")
		return
	}
	var amount int64
	if raw := c.Query("amount"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 0 {
			utils.JSONError(c, http.StatusBadRequest, "amount must be a positive integer")
			return
		}
		amount = n
	}
	link, err := h.Service.VNPayLink(c.Request.Context(), middleware.ActorFrom(c), bookingID, amount, c.ClientIP())
	if err != nil {
		utils.RespondError(c, err, "Failed to create payment link")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", link)
}

// VNPayReturnHandler handles GET /payment/vn-pay/return, the browser redirect.
func (h *PaymentHandler) VNPayReturnHandler(c *gin.Context) {
	res, err := h.Service.VNPayReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		utils.RespondError(c, err, "Failed to verify payment")
		return
	}
	message := "Payment was not completed"
	if res.Paid {
		message = "Payment successful"
	}
	utils.JSONOK(c, http.StatusOK, message, res)
}

// VNPayIPNHandler handles GET /payment/vn-pay/ipn, the server to server
// notification. VNPay expects its own RspCode body and always a 200.
func (h *PaymentHandler) VNPayIPNHandler(c *gin.Context) {
	logger := getLogger(c)
	res, err := h.Service.VNPayReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		var appErr *utils.AppError
		code, msg := "99", "Unknown error"
		if errors.Is(err, booking.ErrAmountMismatch) {
			code, msg = "04", "Invalid amount"
		} else if errors.As(err, &appErr) {
			switch appErr.Code {
			case utils.CodeInvalid:
				code, msg = "97", "Invalid signature"
			case utils.CodeNotFound:
				code, msg = "01", "Order not found"
			case utils.CodeInvalidState, utils.CodeConflict:
				code, msg = "02", "Order already confirmed"
			}
		}
		logger.Warn("VNPay IPN rejected", zap.String("rspCode", code), zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"RspCode": code, "Message": msg})
		return
	}
	logger.Info("VNPay IPN processed", zap.String("bookingId", res.BookingID), zap.Bool("paid", res.Paid))
	c.JSON(http.StatusOK, gin.H{"RspCode": "00", "Message": "Confirm Success"})
}

// StripeLinkHandler handles GET /payment/stripe?bookingId=.
func (h *PaymentHandler) StripeLinkHandler(c *gin.Context) {
	bookingID := c.Query("bookingId")
	if bookingID == "" {
		utils.JSONError(c, http.StatusBadRequest, "bookingId is required")
		return
	}
	link, err := h.Service.StripeLink(c.Request.Context(), middleware.ActorFrom(c), bookingID)
	if err != nil {
		utils.RespondError(c, err, "Failed to create payment link")
		return
	}
	utils.JSONOK(c, http.StatusOK, "", link)
}

// StripeWebhookHandler handles POST /payment/stripe/webhook.
func (h *PaymentHandler) StripeWebhookHandler(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, "Failed to read request body")
		return
	}
	res, err := h.Service.StripeWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.RespondError(c, err, "Failed to process webhook")
		return
	}
	if res == nil {
		utils.JSONOK(c, http.StatusOK, "Event ignored", nil)
		return
	}
	getLogger(c).Info("Stripe checkout completed", zap.String("bookingId", res.BookingID))
	utils.JSONOK(c, http.StatusOK, "Payment recorded", res)
}
