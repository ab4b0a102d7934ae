package notification

import (
	"fmt"

	"medbook/models"
)

// ForBooking builds the patient-facing message for a booking event.
func ForBooking(kind string, b models.Booking, sc *models.Schedule) models.Notification {
	when := ""
	if sc != nil {
		when = fmt.Sprintf(" on %s at %s", sc.DateSchedule, sc.StartTime)
	}

	n := models.Notification{
		UserID: b.UserID,
		Type:   kind,
		Data:   map[string]string{"bookingId": b.ID, "status": b.Status},
	}
	switch kind {
	case models.NotifyBookingPaid:
		n.Title = "Booking confirmed"
		n.Body = "Your payment was received. See you" + when + "."
	case models.NotifyBookingRejected:
		n.Title = "Booking cancelled"
		n.Body = "Your booking" + when + " was cancelled."
		if b.Reason != "" {
			n.Body += " Reason: " + b.Reason
		}
	case models.NotifyBookingRefunded:
		n.Title = "Refund completed"
		n.Body = fmt.Sprintf("We refunded %d VND for your booking.", b.Amount)
	case models.NotifyBookingMoved:
		n.Title = "Appointment moved"
		n.Body = "Your appointment is now" + when + "."
	case models.NotifyReminder:
		n.Title = "Appointment reminder"
		n.Body = "You have an appointment" + when + "."
	}
	return n
}
