package cron

import (
	"context"
	"errors"
	"time"

	"medbook/config"
	"medbook/database/repository"
	"medbook/services/tasks"
	"medbook/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingJobs is the part of the booking service the worker drives.
type BookingJobs interface {
	Expire(ctx context.Context, bookingID string) error
	Remind(ctx context.Context, bookingID, scheduleID string) error
	ExpireStale(ctx context.Context) (int, error)
}

// QueueRedisOpt returns the asynq connection for the job queue database.
func QueueRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}
}

// NewMux routes booking tasks to the booking service.
func NewMux(jobs BookingJobs) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeBookingExpire, handleExpireTask(jobs))
	mux.HandleFunc(tasks.TypeBookingReminder, handleReminderTask(jobs))
	return mux
}

// InitBookingWorker starts the asynq worker in the background. The returned
// func stops it.
func InitBookingWorker(jobs BookingJobs) (shutdown func()) {
	logger := utils.GetLogger()
	srv := asynq.NewServer(
		QueueRedisOpt(),
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)
	mux := NewMux(jobs)

	ctx, cancel := context.WithCancel(context.Background())
	go monitorRedisConnection(ctx)

	go func() {
		logger.Info("Starting booking worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := srv.Start(mux)
			if err == nil {
				return
			}
			logger.Error("Booking worker failed to start", zap.Int("attempt", attempts), zap.Error(err))
			if attempts == maxAttempts {
				logger.Fatal("Max retry attempts reached for booking worker")
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()

	return func() {
		cancel()
		srv.Shutdown()
	}
}

func handleExpireTask(jobs BookingJobs) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingPayload(task)
		if err != nil {
			utils.GetLogger().Error("Invalid expire payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}
		if err := jobs.Expire(ctx, p.BookingID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			return err
		}
		return nil
	}
}

func handleReminderTask(jobs BookingJobs) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseBookingPayload(task)
		if err != nil {
			utils.GetLogger().Error("Invalid reminder payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}
		if err := jobs.Remind(ctx, p.BookingID, p.ScheduleID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil
			}
			utils.GetLogger().Warn("Failed to send booking reminder", zap.String("bookingId", p.BookingID), zap.Error(err))
			return err
		}
		return nil
	}
}

// StartExpirySweep expires stale pending bookings every interval until ctx is
// done. It backs up the delayed expire tasks and is the only expiry path on
// the memory driver.
func StartExpirySweep(ctx context.Context, jobs BookingJobs, interval time.Duration) {
	logger := utils.GetLogger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Expiry sweep stopped")
			return
		case <-ticker.C:
			n, err := jobs.ExpireStale(ctx)
			if err != nil {
				logger.Error("Expiry sweep failed", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("Expired stale bookings", zap.Int("count", n))
			}
		}
	}
}

// monitorRedisConnection pings the queue database periodically to detect failures at runtime.
func monitorRedisConnection(ctx context.Context) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer client.Close()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := client.Ping(ctx).Err(); err != nil && ctx.Err() == nil {
				utils.GetLogger().Warn("Queue Redis connection lost", zap.Error(err))
			}
		}
	}
}
