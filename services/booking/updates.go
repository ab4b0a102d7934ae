package booking

import (
	"context"
	"errors"
	"fmt"

	"medbook/database/repository"
	"medbook/models"
	"medbook/services/notification"
	"medbook/utils"
	"medbook/validation"

	"go.uber.org/zap"
)

func (s *DefaultBookingService) UpdateDetail(ctx context.Context, actor models.Actor, userID, bookingID string, req models.UpdateBookingRequest) (*models.BookingView, error) {
	if _, err := s.loadOwned(ctx, actor, userID, bookingID); err != nil {
		return nil, err
	}
	switch {
	case req.IsScheduleChange():
		return s.ChangeSchedule(ctx, actor, bookingID, req.ScheduleID)
	case req.IsRefundRequest():
		refund := models.RefundRequest{
			BankName:      req.BankName,
			AccountNumber: req.AccountNumber,
			AccountHolder: req.AccountHolder,
			Reason:        req.Reason,
		}
		if err := validation.Struct(refund); err != nil {
			return nil, err
		}
		return s.RequestRefund(ctx, actor, bookingID, refund)
	default:
		return nil, utils.NewAppError(utils.CodeInvalid, "Provide either schedule_id or refund bank details")
	}
}

// ChangeSchedule moves a booking to another bookable schedule of the same
// doctor. The new seat is taken before the old one is released.
func (s *DefaultBookingService) ChangeSchedule(ctx context.Context, actor models.Actor, bookingID, scheduleID string) (*models.BookingView, error) {
	b, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, errForbidden
	}
	if !b.CanChangeSchedule(s.Config.MaxScheduleChanges) {
		if b.Status != models.BookingPending && b.Status != models.BookingPaid {
			return nil, invalidState("Only pending or paid bookings can be rescheduled")
		}
		return nil, invalidState(fmt.Sprintf("This booking can be rescheduled at most %d time(s)", s.Config.MaxScheduleChanges))
	}
	if scheduleID == b.ScheduleID {
		return nil, utils.NewAppError(utils.CodeInvalid, "Pick a different schedule")
	}

	current, err := s.Schedules.GetByID(ctx, b.ScheduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to get current schedule: %w", err)
	}
	next, err := s.Schedules.GetByID(ctx, scheduleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errScheduleMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	if next.DoctorID != current.DoctorID {
		return nil, utils.NewAppError(utils.CodeInvalid, "The new schedule must be with the same doctor")
	}
	if !next.Bookable(s.Now(), s.Config.Location) {
		return nil, errUnavailable
	}

	if err := s.Schedules.ReserveSeat(ctx, next.ID); err != nil {
		if errors.Is(err, repository.ErrScheduleFull) {
			return nil, errUnavailable
		}
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}

	updated := *b
	updated.ScheduleID = next.ID
	updated.ChangeCount++
	if updated.Status == models.BookingPending {
		updated.Amount = next.Price
	}
	if err := s.Bookings.UpdateIfStatus(ctx, &updated, b.Status); err != nil {
		if relErr := s.Schedules.ReleaseSeat(ctx, next.ID); relErr != nil {
			utils.GetLogger().Error("Failed to release reserved seat", zap.String("scheduleId", next.ID), zap.Error(relErr))
		}
		if errors.Is(err, repository.ErrConflict) {
			return nil, errChanged
		}
		return nil, fmt.Errorf("failed to move booking: %w", err)
	}
	if err := s.Schedules.ReleaseSeat(ctx, current.ID); err != nil {
		utils.GetLogger().Error("Failed to release old seat", zap.String("scheduleId", current.ID), zap.Error(err))
	}

	s.notify(ctx, notification.ForBooking(models.NotifyBookingMoved, updated, next))
	s.scheduleReminder(ctx, updated.ID, *next)
	return s.view(ctx, updated)
}

// RequestRefund moves a paid booking to "Wait Refund" with the patient's bank details.
func (s *DefaultBookingService) RequestRefund(ctx context.Context, actor models.Actor, bookingID string, req models.RefundRequest) (*models.BookingView, error) {
	b, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return nil, errForbidden
	}
	if !b.CanRequestRefund() {
		return nil, invalidState("Only paid bookings can be refunded")
	}

	updated := *b
	updated.Status = models.BookingWaitRefund
	updated.Reason = req.Reason
	updated.Refund = &models.RefundDetails{
		BankName:      req.BankName,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
	}
	if err := s.Bookings.UpdateIfStatus(ctx, &updated, models.BookingPaid); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, errChanged
		}
		return nil, fmt.Errorf("failed to request refund: %w", err)
	}
	utils.GetLogger().Info("Refund requested", zap.String("bookingId", b.ID), zap.String("userId", b.UserID))
	return s.view(ctx, updated)
}

// Delete removes a booking that is not paid and frees its seat if it held one.
func (s *DefaultBookingService) Delete(ctx context.Context, actor models.Actor, bookingID string) error {
	b, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return err
	}
	if b.UserID != actor.UserID && !actor.IsAdmin() {
		return errForbidden
	}
	if !b.CanDelete() {
		return invalidState("Paid bookings cannot be deleted, request a refund instead")
	}

	if err := s.Bookings.DeleteIfStatus(ctx, b.ID, b.Status); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return errChanged
		}
		if errors.Is(err, repository.ErrNotFound) {
			return errNotFound
		}
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	if b.HoldsSeat() {
		if err := s.Schedules.ReleaseSeat(ctx, b.ScheduleID); err != nil {
			utils.GetLogger().Error("Failed to release seat", zap.String("scheduleId", b.ScheduleID), zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultBookingService) notify(ctx context.Context, n models.Notification) {
	if err := s.Notifier.Notify(ctx, n); err != nil {
		utils.GetLogger().Warn("Notification failed", zap.String("userId", n.UserID), zap.String("type", n.Type), zap.Error(err))
	}
}
