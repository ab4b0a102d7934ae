package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/database/repository"
	catalogRepo "medbook/database/repository/catalog"
	scheduleRepo "medbook/database/repository/schedule"
	"medbook/models"
	"medbook/utils"

	"github.com/google/uuid"
)

// Query is a public schedule listing request.
type Query struct {
	DoctorID     string
	SpecialtyID  string
	DateSchedule string
	// Available keeps only schedules a patient can book right now.
	Available bool
}

type ScheduleService interface {
	List(ctx context.Context, q Query) ([]models.Schedule, error)
	Get(ctx context.Context, id string) (*models.Schedule, error)
	Create(ctx context.Context, req models.ScheduleRequest) (*models.Schedule, error)
	Update(ctx context.Context, id string, req models.ScheduleRequest) (*models.Schedule, error)
	Delete(ctx context.Context, id string) error
	// ForDoctorUser lists the schedules of the doctor behind a user account.
	ForDoctorUser(ctx context.Context, userID, date string) ([]models.Schedule, error)
}

type DefaultScheduleService struct {
	Repo     scheduleRepo.ScheduleRepository
	Doctors  catalogRepo.DoctorRepository
	Location *time.Location
	Now      func() time.Time
}

func NewScheduleService(repo scheduleRepo.ScheduleRepository, doctors catalogRepo.DoctorRepository, loc *time.Location) *DefaultScheduleService {
	return &DefaultScheduleService{Repo: repo, Doctors: doctors, Location: loc, Now: time.Now}
}

func (s *DefaultScheduleService) List(ctx context.Context, q Query) ([]models.Schedule, error) {
	filter := models.ScheduleFilter{
		DoctorID:     q.DoctorID,
		DateSchedule: q.DateSchedule,
		ActiveOnly:   q.Available,
	}
	if q.DoctorID == "" && q.SpecialtyID != "" {
		ids, err := s.Doctors.IDsBySpecialty(ctx, q.SpecialtyID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve specialty doctors: %w", err)
		}
		filter.DoctorIDs = ids
	}

	list, err := s.Repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	if !q.Available {
		return list, nil
	}

	now := s.Now()
	out := make([]models.Schedule, 0, len(list))
	for _, sc := range list {
		if sc.Bookable(now, s.Location) {
			out = append(out, sc)
		}
	}
	return out, nil
}

func (s *DefaultScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	sc, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "Schedule not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return sc, nil
}

func (s *DefaultScheduleService) Create(ctx context.Context, req models.ScheduleRequest) (*models.Schedule, error) {
	sc := models.Schedule{ID: uuid.New().String(), Active: true}
	apply(&sc, req)
	if err := s.check(ctx, sc); err != nil {
		return nil, err
	}
	start, _ := sc.StartAt(s.Location)
	if !start.After(s.Now()) {
		return nil, utils.NewAppError(utils.CodeInvalid, "Schedule must start in the future")
	}
	if err := s.Repo.Create(ctx, &sc); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return &sc, nil
}

func (s *DefaultScheduleService) Update(ctx context.Context, id string, req models.ScheduleRequest) (*models.Schedule, error) {
	sc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sc.NumberBooked > 0 && (req.DoctorID != sc.DoctorID || req.DateSchedule != sc.DateSchedule ||
		req.StartTime != sc.StartTime || req.EndTime != sc.EndTime) {
		return nil, utils.NewAppError(utils.CodeConflict, "Booked schedules cannot be moved or reassigned")
	}
	apply(sc, req)
	if err := s.check(ctx, *sc); err != nil {
		return nil, err
	}
	if err := s.Repo.Update(ctx, sc); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, utils.NewAppError(utils.CodeConflict, "Booking limit cannot be lower than the seats already booked")
		}
		return nil, fmt.Errorf("failed to update schedule: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *DefaultScheduleService) Delete(ctx context.Context, id string) error {
	err := s.Repo.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewAppError(utils.CodeNotFound, "Schedule not found")
	case errors.Is(err, repository.ErrConflict):
		return utils.NewAppError(utils.CodeConflict, "Schedule already has bookings")
	default:
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
}

func (s *DefaultScheduleService) ForDoctorUser(ctx context.Context, userID, date string) ([]models.Schedule, error) {
	doc, err := s.Doctors.GetByUserID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "Doctor profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor profile: %w", err)
	}
	list, err := s.Repo.List(ctx, models.ScheduleFilter{DoctorID: doc.ID, DateSchedule: date})
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return list, nil
}

// check enforces start < end, an existing doctor and no overlap with the
// doctor's other schedules that day.
func (s *DefaultScheduleService) check(ctx context.Context, sc models.Schedule) error {
	if _, err := models.ClockMinutes(sc.StartTime); err != nil {
		return utils.NewAppError(utils.CodeInvalid, "Start time must be a time (HH:MM)")
	}
	if _, err := models.ClockMinutes(sc.EndTime); err != nil {
		return utils.NewAppError(utils.CodeInvalid, "End time must be a time (HH:MM)")
	}
	start, err := sc.StartAt(s.Location)
	if err != nil {
		return utils.NewAppError(utils.CodeInvalid, "Invalid schedule date or start time")
	}
	end, err := sc.EndAt(s.Location)
	if err != nil {
		return utils.NewAppError(utils.CodeInvalid, "Invalid schedule end time")
	}
	if !start.Before(end) {
		return utils.NewAppError(utils.CodeInvalid, "Start time must be before end time")
	}

	if _, err := s.Doctors.GetByID(ctx, sc.DoctorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return utils.NewAppError(utils.CodeInvalid, "Doctor does not exist")
		}
		return fmt.Errorf("failed to check doctor: %w", err)
	}

	sameDay, err := s.Repo.List(ctx, models.ScheduleFilter{DoctorID: sc.DoctorID, DateSchedule: sc.DateSchedule})
	if err != nil {
		return fmt.Errorf("failed to load doctor schedules: %w", err)
	}
	for _, other := range sameDay {
		if other.ID != sc.ID && sc.Overlaps(other) {
			return utils.NewAppError(utils.CodeConflict,
				fmt.Sprintf("Schedule overlaps %s-%s on %s", other.StartTime, other.EndTime, other.DateSchedule))
		}
	}
	return nil
}

func apply(sc *models.Schedule, req models.ScheduleRequest) {
	sc.DoctorID = req.DoctorID
	sc.DateSchedule = req.DateSchedule
	sc.StartTime = req.StartTime
	sc.EndTime = req.EndTime
	sc.BookingLimit = req.BookingLimit
	sc.Price = req.Price
	if req.Active != nil {
		sc.Active = *req.Active
	}
}
