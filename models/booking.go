package models

import "time"

// Booking statuses. "Wait Refund" keeps the spelling the front-end renders.
const (
	BookingPending    = "pending"
	BookingPaid       = "paid"
	BookingRejected   = "rejected"
	BookingWaitRefund = "Wait Refund"
	BookingRefunded   = "refunded"
)

// Payment methods.
const (
	PaymentVNPay  = "vnpay"
	PaymentStripe = "stripe"
	PaymentCash   = "cash"
)

// RefundDetails are the bank coordinates a patient supplies with a refund request.
type RefundDetails struct {
	BankName      string `bson:"bank_name" json:"bank_name"`
	AccountNumber string `bson:"account_number" json:"account_number"`
	AccountHolder string `bson:"account_holder" json:"account_holder"`
}

// Booking is a patient's reservation of one seat in a schedule.
type Booking struct {
	ID            string         `bson:"id" json:"id"`
	ScheduleID    string         `bson:"schedule_id" json:"schedule_id"`
	UserID        string         `bson:"user_id" json:"user_id"`
	Amount        int64          `bson:"amount" json:"amount"`
	Status        string         `bson:"status" json:"status"`
	PaymentMethod string         `bson:"payment_method" json:"payment_method"`
	PaymentCode   string         `bson:"payment_code" json:"payment_code"`
	ChangeCount   int            `bson:"change_count" json:"change_count"`
	Reason        string         `bson:"reason,omitempty" json:"reason,omitempty"`
	Refund        *RefundDetails `bson:"refund,omitempty" json:"refund,omitempty"`
	PaidAt        *time.Time     `bson:"paid_at,omitempty" json:"paid_at,omitempty"`
	CreatedAt     time.Time      `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `bson:"updated_at" json:"updated_at"`
}

// CanRequestRefund is true only for paid bookings.
func (b Booking) CanRequestRefund() bool {
	return b.Status == BookingPaid
}

// CanDelete is true for every status except paid.
func (b Booking) CanDelete() bool {
	return b.Status != BookingPaid
}

// HoldsSeat reports whether the booking currently occupies a seat in its schedule.
func (b Booking) HoldsSeat() bool {
	return b.Status != BookingRejected && b.Status != BookingRefunded
}

// CanChangeSchedule is true for pending or paid bookings below the change limit.
func (b Booking) CanChangeSchedule(maxChanges int) bool {
	if b.Status != BookingPending && b.Status != BookingPaid {
		return false
	}
	return b.ChangeCount < maxChanges
}

// BookingView is a booking with its schedule, doctor and patient resolved.
type BookingView struct {
	Booking
	Schedule *Schedule   `json:"schedule,omitempty"`
	Doctor   *DoctorView `json:"doctor,omitempty"`
	User     *User       `json:"user,omitempty"`
}

// CreateBookingRequest mirrors what the booking screen posts. Only
// ScheduleID and PaymentMethod are trusted; the rest is computed server-side.
type CreateBookingRequest struct {
	ScheduleID    string `json:"schedule_id" validate:"required"`
	UserID        string `json:"user_id,omitempty"`
	PaymentMethod string `json:"payment_method" validate:"omitempty,oneof=vnpay stripe cash"`
	PaymentCode   string `json:"payment_code,omitempty"`
	Amount        int64  `json:"amount,omitempty"`
	Status        string `json:"status,omitempty"`
}

// UpdateBookingRequest is the body of PUT .../detail. It is either a
// schedule change (ScheduleID set) or a refund request (bank fields set).
type UpdateBookingRequest struct {
	ScheduleID    string `json:"schedule_id,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	AccountHolder string `json:"account_holder,omitempty"`
	Reason        string `json:"reason,omitempty" validate:"max=1000"`
}

// IsScheduleChange reports whether the body asks to move the booking.
func (r UpdateBookingRequest) IsScheduleChange() bool {
	return r.ScheduleID != ""
}

// IsRefundRequest reports whether the body carries refund bank details.
func (r UpdateBookingRequest) IsRefundRequest() bool {
	return r.BankName != "" || r.AccountNumber != "" || r.AccountHolder != ""
}

// RefundRequest is the validated form of a refund body.
type RefundRequest struct {
	BankName      string `json:"bank_name" validate:"required,max=120"`
	AccountNumber string `json:"account_number" validate:"required,numeric,min=6,max=30"`
	AccountHolder string `json:"account_holder" validate:"required,max=120"`
	Reason        string `json:"reason,omitempty" validate:"max=1000"`
}

// BookingStatusRequest is an admin status transition.
type BookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid rejected 'Wait Refund' refunded"`
	Reason string `json:"reason,omitempty" validate:"max=1000"`
}

// BookingFilter narrows a booking listing. A nil id slice means no
// restriction; a non-nil empty slice matches nothing.
type BookingFilter struct {
	UserID      string
	UserIDs     []string
	ScheduleIDs []string
	Status      string
}

var bookingTransitions = map[string][]string{
	BookingPending:    {BookingPaid, BookingRejected},
	BookingPaid:       {BookingWaitRefund},
	BookingWaitRefund: {BookingRefunded, BookingPaid},
}

// CanTransition reports whether a booking may move from one status to another.
func CanTransition(from, to string) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
