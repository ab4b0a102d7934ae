package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/database/repository"
	"medbook/models"
	"medbook/services/notification"
	"medbook/services/tasks"
	"medbook/utils"

	"go.uber.org/zap"
)

// reasonExpired is stored on bookings rejected by the payment window.
const reasonExpired = "Payment window expired"

// SetStatus applies a back-office status change.
func (s *DefaultBookingService) SetStatus(ctx context.Context, bookingID string, req models.BookingStatusRequest) (*models.BookingView, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	updated, err := s.transition(ctx, *b, req.Status, req.Reason)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *updated)
}

// transition moves b to status, releasing the seat when the booking stops
// holding one and notifying the patient.
func (s *DefaultBookingService) transition(ctx context.Context, b models.Booking, status, reason string) (*models.Booking, error) {
	if !models.CanTransition(b.Status, status) {
		return nil, invalidState(fmt.Sprintf("Cannot change a %q booking to %q", b.Status, status))
	}

	updated := b
	updated.Status = status
	if reason != "" {
		updated.Reason = reason
	}
	if status == models.BookingPaid && updated.PaidAt == nil {
		now := s.Now()
		updated.PaidAt = &now
	}
	if err := s.Bookings.UpdateIfStatus(ctx, &updated, b.Status); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errChanged
		}
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	if b.HoldsSeat() && !updated.HoldsSeat() {
		if err := s.Schedules.ReleaseSeat(ctx, b.ScheduleID); err != nil {
			utils.GetLogger().Error("Failed to release seat", zap.String("scheduleId", b.ScheduleID), zap.Error(err))
		}
	}

	utils.GetLogger().Info("Booking status changed",
		zap.String("bookingId", b.ID), zap.String("from", b.Status), zap.String("to", status))

	var kind string
	switch status {
	case models.BookingPaid:
		if b.Status == models.BookingPending {
			kind = models.NotifyBookingPaid
		}
	case models.BookingRejected:
		kind = models.NotifyBookingRejected
	case models.BookingRefunded:
		kind = models.NotifyBookingRefunded
	}
	if kind != "" {
		sc, _ := s.Schedules.GetByID(ctx, updated.ScheduleID)
		s.notify(ctx, notification.ForBooking(kind, updated, sc))
	}
	return &updated, nil
}

// MarkPaid confirms a gateway payment. The receipt amount must equal the
// booking amount. Repeated callbacks for an already paid booking are
// accepted without change.
func (s *DefaultBookingService) MarkPaid(ctx context.Context, bookingID string, receipt models.PaymentReceipt) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if b.Status == models.BookingPaid {
		return b, nil
	}
	if b.Status != models.BookingPending {
		return nil, invalidState(fmt.Sprintf("Cannot confirm payment of a %q booking", b.Status))
	}
	if receipt.Amount != b.Amount {
		utils.GetLogger().Warn("Payment amount mismatch",
			zap.String("bookingId", b.ID), zap.Int64("paid", receipt.Amount), zap.Int64("expected", b.Amount))
		return nil, ErrAmountMismatch
	}

	if receipt.Method != "" {
		b.PaymentMethod = receipt.Method
	}
	if receipt.Reference != "" {
		b.PaymentCode = receipt.Reference
	}
	return s.transition(ctx, *b, models.BookingPaid, "")
}

// Expire rejects a booking still pending after the payment window.
func (s *DefaultBookingService) Expire(ctx context.Context, bookingID string) error {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	_, err = s.expire(ctx, *b)
	return err
}

func (s *DefaultBookingService) expire(ctx context.Context, b models.Booking) (bool, error) {
	if b.Status != models.BookingPending || s.Now().Before(b.CreatedAt.Add(s.Config.PendingTTL)) {
		return false, nil
	}
	_, err := s.transition(ctx, b, models.BookingRejected, reasonExpired)
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		// Paid or changed meanwhile.
		return false, nil
	}
	return err == nil, err
}

// ExpireStale sweeps every overdue pending booking and returns how many it rejected.
func (s *DefaultBookingService) ExpireStale(ctx context.Context) (int, error) {
	pending, _, err := s.Bookings.List(ctx, models.BookingFilter{Status: models.BookingPending}, 1, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending bookings: %w", err)
	}
	expired := 0
	for _, b := range pending {
		ok, err := s.expire(ctx, b)
		if err != nil {
			return expired, err
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}

// reminderSlack tolerates clock drift between the API and the worker.
const reminderSlack = 5 * time.Minute

// Remind pushes the appointment reminder for a paid booking. A reminder
// enqueued for another schedule, or arriving outside the lead window before
// the appointment, is dropped.
func (s *DefaultBookingService) Remind(ctx context.Context, bookingID, scheduleID string) error {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get booking: %w", err)
	}
	if b.Status != models.BookingPaid {
		return nil
	}
	logger := utils.GetLogger()
	if scheduleID != "" && scheduleID != b.ScheduleID {
		logger.Debug("Dropping reminder for a previous schedule",
			zap.String("bookingId", bookingID), zap.String("scheduleId", scheduleID))
		return nil
	}
	sc, err := s.Schedules.GetByID(ctx, b.ScheduleID)
	if err != nil {
		return fmt.Errorf("failed to get schedule: %w", err)
	}
	start, err := sc.StartAt(s.Config.Location)
	if err != nil {
		return nil
	}
	now := s.Now()
	if now.Before(start.Add(-tasks.ReminderLead-reminderSlack)) || !now.Before(start) {
		logger.Debug("Dropping reminder outside its window", zap.String("bookingId", bookingID), zap.Time("start", start))
		return nil
	}
	return s.Notifier.Notify(ctx, notification.ForBooking(models.NotifyReminder, *b, sc))
}
