// File: database/repository/booking/booking_interface.go
package bookingRepo

import (
	"context"

	"medbook/models"
)

type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// List returns one page of bookings, newest first, and the total match
	// count. limit <= 0 returns every match.
	List(ctx context.Context, filter models.BookingFilter, page, limit int) ([]models.Booking, int64, error)
	// UpdateIfStatus replaces b only while the stored status still equals
	// expected; otherwise repository.ErrConflict.
	UpdateIfStatus(ctx context.Context, b *models.Booking, expected string) error
	// DeleteIfStatus removes the booking only while its status equals expected.
	DeleteIfStatus(ctx context.Context, id, expected string) error
	CountByStatus(ctx context.Context) (map[string]int64, error)
	// Revenue sums the amount of paid bookings.
	Revenue(ctx context.Context) (int64, error)
}
