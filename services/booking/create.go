package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	"medbook/models"
	"medbook/services/tasks"
	"medbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create books one seat of a schedule for the caller. Only the schedule and
// payment method of the request are used; the patient comes from the token
// and the amount from the schedule price.
func (s *DefaultBookingService) Create(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.BookingView, error) {
	logger := utils.GetLogger().With(zap.String("userId", actor.UserID), zap.String("scheduleId", req.ScheduleID))

	if req.UserID != "" && req.UserID != actor.UserID {
		logger.Warn("Ignoring user_id in booking body", zap.String("bodyUserId", req.UserID))
	}

	sc, err := s.Schedules.GetByID(ctx, req.ScheduleID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errScheduleMissing
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	if !sc.Bookable(s.Now(), s.Config.Location) {
		return nil, errUnavailable
	}

	if err := s.Schedules.ReserveSeat(ctx, sc.ID); err != nil {
		if errors.Is(err, repository.ErrScheduleFull) || errors.Is(err, repository.ErrNotFound) {
			return nil, errUnavailable
		}
		return nil, fmt.Errorf("failed to reserve seat: %w", err)
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentVNPay
	}
	b := models.Booking{
		ID:            uuid.New().String(),
		ScheduleID:    sc.ID,
		UserID:        actor.UserID,
		Amount:        sc.Price,
		Status:        models.BookingPending,
		PaymentMethod: method,
		PaymentCode:   paymentCode(),
		CreatedAt:     s.Now(),
	}
	if err := s.Bookings.Create(ctx, &b); err != nil {
		// Give the seat back; the booking never existed.
		if relErr := s.Schedules.ReleaseSeat(ctx, sc.ID); relErr != nil {
			logger.Error("Failed to release seat after insert failure", zap.Error(relErr))
		}
		return nil, fmt.Errorf("insert booking failed: %w", err)
	}
	logger.Info("Booking created", zap.String("bookingId", b.ID), zap.Int64("amount", b.Amount))

	s.scheduleJobs(ctx, b, *sc)
	return s.view(ctx, b)
}

// scheduleJobs enqueues the payment expiry and the appointment reminder.
// Failures only log: the periodic sweep still expires stale bookings.
func (s *DefaultBookingService) scheduleJobs(ctx context.Context, b models.Booking, sc models.Schedule) {
	logger := utils.GetLogger()

	if err := s.Jobs.ScheduleExpiry(ctx, b.ID, b.CreatedAt.Add(s.Config.PendingTTL)); err != nil {
		logger.Warn("Failed to schedule booking expiry", zap.String("bookingId", b.ID), zap.Error(err))
	}
	s.scheduleReminder(ctx, b.ID, sc)
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, bookingID string, sc models.Schedule) {
	start, err := sc.StartAt(s.Config.Location)
	if err != nil {
		return
	}
	at := start.Add(-tasks.ReminderLead)
	if !at.After(s.Now()) {
		return
	}
	if err := s.Jobs.ScheduleReminder(ctx, bookingID, sc.ID, at); err != nil {
		utils.GetLogger().Warn("Failed to schedule reminder", zap.String("bookingId", bookingID), zap.Error(err))
	}
}

// paymentCode is the short reference printed on receipts and sent to gateways.
func paymentCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}
