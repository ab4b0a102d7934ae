package booking

import (
	"context"
	"errors"
	"fmt"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"
)

// load fetches a booking and checks the actor may see it: the patient who
// owns it, the doctor it is with, or an admin.
// loadOwned loads a booking through a /user/:userId path. Bookings the
// actor may not see and bookings of another user both read as not found,
// admins included.
func (s *DefaultBookingService) loadOwned(ctx context.Context, actor models.Actor, userID, bookingID string) (*models.Booking, error) {
	if !actor.IsAdmin() && actor.UserID != userID {
		return nil, errNotFound
	}
	b, err := s.load(ctx, actor, bookingID)
	if errors.Is(err, errForbidden) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, errNotFound
	}
	return b, nil
}

func (s *DefaultBookingService) load(ctx context.Context, actor models.Actor, bookingID string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, bookingID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	if actor.IsAdmin() || b.UserID == actor.UserID {
		return b, nil
	}
	if actor.Role == models.RoleDoctor {
		ok, err := s.isDoctorOf(ctx, actor.UserID, b.ScheduleID)
		if err != nil {
			return nil, err
		}
		if ok {
			return b, nil
		}
	}
	return nil, errForbidden
}

func (s *DefaultBookingService) isDoctorOf(ctx context.Context, userID, scheduleID string) (bool, error) {
	doc, err := s.Doctors.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	sc, err := s.Schedules.GetByID(ctx, scheduleID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sc.DoctorID == doc.ID, nil
}

func (s *DefaultBookingService) view(ctx context.Context, b models.Booking) (*models.BookingView, error) {
	views, err := s.views(ctx, []models.Booking{b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// views resolves schedules, doctors and patients with one lookup per collection.
func (s *DefaultBookingService) views(ctx context.Context, bookings []models.Booking) ([]models.BookingView, error) {
	scheduleIDs := make([]string, 0, len(bookings))
	userIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		scheduleIDs = append(scheduleIDs, b.ScheduleID)
		userIDs = append(userIDs, b.UserID)
	}

	schedules, err := s.Schedules.GetByIDs(ctx, scheduleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load schedules: %w", err)
	}
	users, err := s.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load patients: %w", err)
	}

	doctorIDs := make([]string, 0, len(schedules))
	for _, sc := range schedules {
		doctorIDs = append(doctorIDs, sc.DoctorID)
	}
	doctorByID, err := s.Doctors.GetByIDs(ctx, doctorIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctors: %w", err)
	}
	doctors := make([]models.Doctor, 0, len(doctorByID))
	for _, d := range doctorByID {
		doctors = append(doctors, d)
	}
	viewByID := map[string]models.DoctorView{}
	if s.Viewer != nil && len(doctors) > 0 {
		dv, err := s.Viewer.DoctorViews(ctx, doctors)
		if err != nil {
			return nil, err
		}
		for _, v := range dv {
			viewByID[v.ID] = v
		}
	}

	out := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		v := models.BookingView{Booking: b}
		if sc, ok := schedules[b.ScheduleID]; ok {
			v.Schedule = &sc
			if dv, ok := viewByID[sc.DoctorID]; ok {
				v.Doctor = &dv
			} else if d, ok := doctorByID[sc.DoctorID]; ok {
				v.Doctor = &models.DoctorView{Doctor: d}
			}
		}
		if u, ok := users[b.UserID]; ok {
			v.User = &u
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *DefaultBookingService) page(ctx context.Context, filter models.BookingFilter, q ListQuery) (utils.Page[models.BookingView], error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = utils.DefaultPageLimit
	}
	filter.Status = q.Status
	list, total, err := s.Bookings.List(ctx, filter, page, limit)
	if err != nil {
		return utils.Page[models.BookingView]{}, fmt.Errorf("failed to list bookings: %w", err)
	}
	views, err := s.views(ctx, list)
	if err != nil {
		return utils.Page[models.BookingView]{}, err
	}
	return utils.PageOf(views, total, page, limit), nil
}
