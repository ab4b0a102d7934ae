package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/models"
	"medbook/utils"

	"github.com/goccy/go-json"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const (
	TypeBookingExpire   = "booking:expire"
	TypeBookingReminder = "booking:reminder"
)

// ReminderLead is how long before the appointment the reminder fires.
const ReminderLead = 24 * time.Hour

func NewBookingExpireTask(bookingID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	return newBookingTask(TypeBookingExpire, models.BookingTaskPayload{BookingID: bookingID}, fireAt)
}

// NewBookingReminderTask builds the reminder for a booking on one schedule.
// The task id is unique per booking and schedule, so a reschedule enqueues
// a fresh reminder while re-enqueueing the same one is a no-op.
func NewBookingReminderTask(bookingID, scheduleID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	task, opts, err := newBookingTask(TypeBookingReminder, models.BookingTaskPayload{BookingID: bookingID, ScheduleID: scheduleID}, fireAt)
	if err != nil {
		return nil, nil, err
	}
	return task, append(opts, asynq.TaskID(ReminderTaskID(bookingID, scheduleID))), nil
}

func ReminderTaskID(bookingID, scheduleID string) string {
	return "reminder:" + bookingID + ":" + scheduleID
}

func newBookingTask(kind string, payload models.BookingTaskPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(kind, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(5),
	}
	return task, opts, nil
}

// ParseBookingPayload decodes the payload of a booking task.
func ParseBookingPayload(t *asynq.Task) (models.BookingTaskPayload, error) {
	var p models.BookingTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid %s payload: %w", t.Type(), err)
	}
	if p.BookingID == "" {
		return p, fmt.Errorf("%s payload has no booking id", t.Type())
	}
	return p, nil
}

// Scheduler enqueues delayed booking jobs.
type Scheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error
	ScheduleReminder(ctx context.Context, bookingID, scheduleID string, at time.Time) error
}

// Enqueuer is the part of *asynq.Client the scheduler uses.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqScheduler enqueues booking jobs on Redis through asynq.
type AsynqScheduler struct {
	Client Enqueuer
}

func (s *AsynqScheduler) ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error {
	task, opts, err := NewBookingExpireTask(bookingID, at)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, task, opts)
}

func (s *AsynqScheduler) ScheduleReminder(ctx context.Context, bookingID, scheduleID string, at time.Time) error {
	task, opts, err := NewBookingReminderTask(bookingID, scheduleID, at)
	if err != nil {
		return err
	}
	return s.enqueue(ctx, task, opts)
}

func (s *AsynqScheduler) enqueue(ctx context.Context, task *asynq.Task, opts []asynq.Option) error {
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		utils.GetLogger().Debug("Task already scheduled", zap.String("type", task.Type()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", task.Type(), err)
	}
	utils.GetLogger().Debug("Enqueued task", zap.String("type", task.Type()), zap.String("taskId", info.ID), zap.Time("processAt", info.NextProcessAt))
	return nil
}

// NoopScheduler drops jobs. The memory driver relies on the periodic sweep instead.
type NoopScheduler struct{}

func (NoopScheduler) ScheduleExpiry(context.Context, string, time.Time) error { return nil }
func (NoopScheduler) ScheduleReminder(context.Context, string, string, time.Time) error {
	return nil
}
