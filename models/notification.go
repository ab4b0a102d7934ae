package models

// Notification types pushed to patients.
const (
	NotifyBookingPaid     = "booking_paid"
	NotifyBookingRejected = "booking_rejected"
	NotifyBookingRefunded = "booking_refunded"
	NotifyBookingMoved    = "booking_moved"
	NotifyReminder        = "booking_reminder"
)

type Notification struct {
	UserID string            `json:"userId"`
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Body   string            `json:"body"`
	Data   map[string]string `json:"data"`
}
