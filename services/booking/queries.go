package booking

import (
	"context"
	"errors"
	"fmt"

	"medbook/database/repository"
	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/utils"
)

func (s *DefaultBookingService) Get(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingView, error) {
	b, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *b)
}

// GetForUser returns a booking addressed as one of userID's.
func (s *DefaultBookingService) GetForUser(ctx context.Context, actor models.Actor, userID, bookingID string) (*models.BookingView, error) {
	b, err := s.loadOwned(ctx, actor, userID, bookingID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, *b)
}

// ListForUser lists a patient's bookings. Patients only see their own.
func (s *DefaultBookingService) ListForUser(ctx context.Context, actor models.Actor, userID string, q ListQuery) (utils.Page[models.BookingView], error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return utils.Page[models.BookingView]{}, errForbidden
	}
	return s.page(ctx, models.BookingFilter{UserID: userID}, q)
}

// ListForDoctorUser lists the bookings on the schedules of the doctor behind userID.
func (s *DefaultBookingService) ListForDoctorUser(ctx context.Context, userID string, q ListQuery) (utils.Page[models.BookingView], error) {
	doc, err := s.Doctors.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.Page[models.BookingView]{}, utils.NewAppError(utils.CodeNotFound, "Doctor profile not found")
	}
	if err != nil {
		return utils.Page[models.BookingView]{}, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	schedules, err := s.Schedules.List(ctx, models.ScheduleFilter{DoctorID: doc.ID})
	if err != nil {
		return utils.Page[models.BookingView]{}, fmt.Errorf("failed to list schedules: %w", err)
	}
	ids := make([]string, 0, len(schedules))
	for _, sc := range schedules {
		ids = append(ids, sc.ID)
	}
	return s.page(ctx, models.BookingFilter{ScheduleIDs: ids}, q)
}

// ListAll is the back-office listing.
func (s *DefaultBookingService) ListAll(ctx context.Context, q ListQuery) (utils.Page[models.BookingView], error) {
	filter := models.BookingFilter{}
	if q.Search != "" {
		users, err := s.Users.List(ctx, userRepo.UserFilter{Query: q.Search})
		if err != nil {
			return utils.Page[models.BookingView]{}, fmt.Errorf("failed to search patients: %w", err)
		}
		filter.UserIDs = make([]string, 0, len(users))
		for _, u := range users {
			filter.UserIDs = append(filter.UserIDs, u.ID)
		}
	}
	return s.page(ctx, filter, q)
}

func (s *DefaultBookingService) Payable(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingView, error) {
	b, err := s.load(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != actor.UserID {
		return nil, errForbidden
	}
	if b.Status != models.BookingPending {
		return nil, invalidState("Only pending bookings can be paid")
	}
	return s.view(ctx, *b)
}
