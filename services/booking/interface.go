package booking

import (
	"context"
	"time"

	bookingRepo "medbook/database/repository/booking"
	catalogRepo "medbook/database/repository/catalog"
	scheduleRepo "medbook/database/repository/schedule"
	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/services/notification"
	"medbook/services/tasks"
	"medbook/utils"
)

// ListQuery narrows a booking listing.
type ListQuery struct {
	Status string
	// Search matches the patient's name, email or phone (admin listing only).
	Search string
	Page   int
	Limit  int
}

type BookingService interface {
	Create(ctx context.Context, actor models.Actor, req models.CreateBookingRequest) (*models.BookingView, error)
	Get(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingView, error)
	// GetForUser is Get through a /user/:userId path; foreign bookings read as not found.
	GetForUser(ctx context.Context, actor models.Actor, userID, bookingID string) (*models.BookingView, error)
	ListForUser(ctx context.Context, actor models.Actor, userID string, q ListQuery) (utils.Page[models.BookingView], error)
	ListForDoctorUser(ctx context.Context, userID string, q ListQuery) (utils.Page[models.BookingView], error)
	ListAll(ctx context.Context, q ListQuery) (utils.Page[models.BookingView], error)

	// UpdateDetail dispatches a PUT detail body to a schedule change or a refund request.
	UpdateDetail(ctx context.Context, actor models.Actor, userID, bookingID string, req models.UpdateBookingRequest) (*models.BookingView, error)
	ChangeSchedule(ctx context.Context, actor models.Actor, bookingID, scheduleID string) (*models.BookingView, error)
	RequestRefund(ctx context.Context, actor models.Actor, bookingID string, req models.RefundRequest) (*models.BookingView, error)
	Delete(ctx context.Context, actor models.Actor, bookingID string) error

	// Status changes driven by the back office, payment gateways and jobs.
	SetStatus(ctx context.Context, bookingID string, req models.BookingStatusRequest) (*models.BookingView, error)
	MarkPaid(ctx context.Context, bookingID string, receipt models.PaymentReceipt) (*models.Booking, error)
	Expire(ctx context.Context, bookingID string) error
	ExpireStale(ctx context.Context) (int, error)
	Remind(ctx context.Context, bookingID, scheduleID string) error

	// Payable returns a pending booking owned by the actor, ready for checkout.
	Payable(ctx context.Context, actor models.Actor, bookingID string) (*models.BookingView, error)
}

// DoctorViewer resolves doctor profiles for booking views.
type DoctorViewer interface {
	DoctorViews(ctx context.Context, doctors []models.Doctor) ([]models.DoctorView, error)
}

// Config holds the booking rules that come from configuration.
type Config struct {
	PendingTTL         time.Duration
	MaxScheduleChanges int
	Location           *time.Location
}

type DefaultBookingService struct {
	Bookings  bookingRepo.BookingRepository
	Schedules scheduleRepo.ScheduleRepository
	Doctors   catalogRepo.DoctorRepository
	Users     userRepo.UserRepository
	Viewer    DoctorViewer
	Notifier  notification.Notifier
	Jobs      tasks.Scheduler
	Config    Config
	Now       func() time.Time
}

func NewBookingService(
	bookings bookingRepo.BookingRepository,
	schedules scheduleRepo.ScheduleRepository,
	doctors catalogRepo.DoctorRepository,
	users userRepo.UserRepository,
	viewer DoctorViewer,
	notifier notification.Notifier,
	jobs tasks.Scheduler,
	cfg Config,
) *DefaultBookingService {
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = 15 * time.Minute
	}
	if cfg.MaxScheduleChanges <= 0 {
		cfg.MaxScheduleChanges = 1
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if notifier == nil {
		notifier = notification.LogNotifier{}
	}
	if jobs == nil {
		jobs = tasks.NoopScheduler{}
	}
	return &DefaultBookingService{
		Bookings:  bookings,
		Schedules: schedules,
		Doctors:   doctors,
		Users:     users,
		Viewer:    viewer,
		Notifier:  notifier,
		Jobs:      jobs,
		Config:    cfg,
		Now:       time.Now,
	}
}
