package admin

import (
	"context"
	"fmt"

	bookingRepo "medbook/database/repository/booking"
	catalogRepo "medbook/database/repository/catalog"
	scheduleRepo "medbook/database/repository/schedule"
	userRepo "medbook/database/repository/user"
	"medbook/models"
)

// AdminService serves the back-office dashboard.
type AdminService interface {
	Stats(ctx context.Context) (*models.Stats, error)
}

type DefaultAdminService struct {
	Users       userRepo.UserRepository
	Doctors     catalogRepo.DoctorRepository
	Specialties catalogRepo.SpecialtyRepository
	Clinics     catalogRepo.ClinicRepository
	Schedules   scheduleRepo.ScheduleRepository
	Bookings    bookingRepo.BookingRepository
}

func (s *DefaultAdminService) Stats(ctx context.Context) (*models.Stats, error) {
	var (
		st  models.Stats
		err error
	)
	if st.Users, err = s.Users.Count(ctx, ""); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if st.Doctors, err = s.Doctors.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count doctors: %w", err)
	}
	if st.Specialties, err = s.Specialties.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count specialties: %w", err)
	}
	if st.Clinics, err = s.Clinics.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count clinics: %w", err)
	}
	if st.Schedules, err = s.Schedules.Count(ctx); err != nil {
		return nil, fmt.Errorf("failed to count schedules: %w", err)
	}
	if st.BookingStatus, err = s.Bookings.CountByStatus(ctx); err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}
	for _, n := range st.BookingStatus {
		st.Bookings += n
	}
	if st.Revenue, err = s.Bookings.Revenue(ctx); err != nil {
		return nil, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return &st, nil
}
