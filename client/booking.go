package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"medbook/models"
	"medbook/utils"
	"medbook/validation"
)

// Gating errors, returned before any request is sent.
var (
	ErrNotBookable      = errors.New("schedule is not available for booking")
	ErrRefundNotAllowed = errors.New("only paid bookings can be refunded")
	ErrDeleteNotAllowed = errors.New("paid bookings cannot be deleted")
	ErrNotLoggedIn      = errors.New("please log in first")
)

// PaymentHandoff is what the booking screen hands to the payment screen.
type PaymentHandoff struct {
	BookingID   string
	Amount      int64
	PaymentCode string
	Schedule    models.Schedule
	Doctor      models.DoctorView
}

// createdBooking is decoded leniently: some servers send numeric ids.
type createdBooking struct {
	ID          ID     `json:"id"`
	Amount      int64  `json:"amount"`
	PaymentCode string `json:"payment_code"`
}

// DefaultLocation is the clinic zone used unless WithLocation says otherwise.
func DefaultLocation() *time.Location {
	if loc, err := time.LoadLocation("Asia/Ho_Chi_Minh"); err == nil {
		return loc
	}
	return time.FixedZone("ICT", 7*60*60)
}

// Bookable applies the server's bookable rule at the client's clock.
func (c *Client) Bookable(s models.Schedule) bool {
	return s.Bookable(c.now(), c.loc)
}

// Book reserves a seat on schedule for the logged-in patient and returns
// the hand-off for the payment step.
func (c *Client) Book(ctx context.Context, schedule models.Schedule, doctor models.DoctorView, paymentMethod string) (*PaymentHandoff, error) {
	if !c.Bookable(schedule) {
		return nil, ErrNotBookable
	}
	s, err := c.Session(models.RolePatient)
	if err != nil {
		return nil, ErrNotLoggedIn
	}
	req := models.CreateBookingRequest{
		ScheduleID:    schedule.ID,
		UserID:        s.UserID,
		PaymentMethod: paymentMethod,
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	var created createdBooking
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/bookings", role: models.RolePatient, body: req}, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, &APIError{StatusCode: http.StatusOK, Message: DefaultErrorMessage}
	}
	amount := created.Amount
	if amount == 0 {
		amount = schedule.Price
	}
	return &PaymentHandoff{
		BookingID:   created.ID.String(),
		Amount:      amount,
		PaymentCode: created.PaymentCode,
		Schedule:    schedule,
		Doctor:      doctor,
	}, nil
}

// MyBookings lists the patient's bookings, paged by the server.
func (c *Client) MyBookings(ctx context.Context, status string, page, limit int) (utils.Page[models.BookingView], error) {
	s, err := c.Session(models.RolePatient)
	if err != nil {
		return utils.Page[models.BookingView]{}, ErrNotLoggedIn
	}
	q := url.Values{}
	setIf(q, "status", status)
	setPage(q, page, limit)
	var res utils.Page[models.BookingView]
	_, err = c.do(ctx, request{method: http.MethodGet, path: "/bookings/user/" + url.PathEscape(s.UserID), query: q, role: models.RolePatient}, &res)
	return res, err
}

// PageBookings pages an already fetched list locally, optionally by status.
func PageBookings(rows []models.BookingView, status string, page, limit int) utils.Page[models.BookingView] {
	var keep func(models.BookingView) bool
	if status != "" {
		keep = func(b models.BookingView) bool { return b.Status == status }
	}
	return utils.Paginate(rows, page, limit, keep)
}

func (c *Client) detailRequest(method, bookingID string, body any) (request, error) {
	s, err := c.Session(models.RolePatient)
	if err != nil {
		return request{}, ErrNotLoggedIn
	}
	return request{
		method: method,
		path:   "/bookings/user/" + url.PathEscape(s.UserID) + "/detail",
		query:  url.Values{"bookingId": {bookingID}},
		role:   models.RolePatient,
		body:   body,
	}, nil
}

// Booking fetches one of the patient's bookings.
func (c *Client) Booking(ctx context.Context, bookingID string) (*models.BookingView, error) {
	req, err := c.detailRequest(http.MethodGet, bookingID, nil)
	if err != nil {
		return nil, err
	}
	var b models.BookingView
	if _, err := c.do(ctx, req, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ChangeSchedule moves a booking to another schedule of the same doctor.
func (c *Client) ChangeSchedule(ctx context.Context, b models.Booking, schedule models.Schedule) (*models.BookingView, error) {
	if !c.Bookable(schedule) {
		return nil, ErrNotBookable
	}
	req, err := c.detailRequest(http.MethodPut, b.ID, models.UpdateBookingRequest{ScheduleID: schedule.ID})
	if err != nil {
		return nil, err
	}
	var out models.BookingView
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RequestRefund asks for a refund of a paid booking.
func (c *Client) RequestRefund(ctx context.Context, b models.Booking, refund models.RefundRequest) (*models.BookingView, error) {
	if !b.CanRequestRefund() {
		return nil, ErrRefundNotAllowed
	}
	if err := validation.Struct(refund); err != nil {
		return nil, err
	}
	req, err := c.detailRequest(http.MethodPut, b.ID, models.UpdateBookingRequest{
		BankName:      refund.BankName,
		AccountNumber: refund.AccountNumber,
		AccountHolder: refund.AccountHolder,
		Reason:        refund.Reason,
	})
	if err != nil {
		return nil, err
	}
	var out models.BookingView
	if _, err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteBooking removes a booking that is not paid.
func (c *Client) DeleteBooking(ctx context.Context, b models.Booking) error {
	if !b.CanDelete() {
		return ErrDeleteNotAllowed
	}
	_, err := c.do(ctx, request{method: http.MethodDelete, path: "/bookings/" + url.PathEscape(b.ID), role: models.RolePatient}, nil)
	return err
}

// VNPayURL returns the VNPay redirect for the hand-off.
func (c *Client) VNPayURL(ctx context.Context, h PaymentHandoff) (string, error) {
	q := url.Values{"bookingId": {h.BookingID}}
	if h.Amount > 0 {
		q.Set("amount", strconv.FormatInt(h.Amount, 10))
	}
	var link models.PaymentLink
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/payment/vn-pay", query: q, role: models.RolePatient}, &link); err != nil {
		return "", err
	}
	return link.PaymentURL, nil
}

// StripeURL returns the Stripe Checkout page for the hand-off.
func (c *Client) StripeURL(ctx context.Context, h PaymentHandoff) (string, error) {
	var link models.PaymentLink
	q := url.Values{"bookingId": {h.BookingID}}
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/payment/stripe", query: q, role: models.RolePatient}, &link); err != nil {
		return "", err
	}
	return link.PaymentURL, nil
}
