// File: database/repository/schedule/schedule_interface.go
package scheduleRepo

import (
	"context"

	"medbook/models"
)

// ScheduleRepository stores doctor schedules and their seat counters.
type ScheduleRepository interface {
	Create(ctx context.Context, s *models.Schedule) error
	// Update writes the editable fields. It fails with repository.ErrConflict
	// when the new booking limit is below the seats already taken.
	Update(ctx context.Context, s *models.Schedule) error
	// Delete removes a schedule nobody has booked; otherwise repository.ErrConflict.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Schedule, error)
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.Schedule, error)
	Count(ctx context.Context) (int64, error)

	// ReserveSeat takes one seat if the schedule is active and not full,
	// otherwise repository.ErrScheduleFull.
	ReserveSeat(ctx context.Context, id string) error
	// ReleaseSeat gives one seat back. It never drops below zero.
	ReleaseSeat(ctx context.Context, id string) error
}
