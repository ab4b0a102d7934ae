package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"medbook/database/repository"
	"medbook/services/tasks"
	"medbook/utils"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeJobs struct {
	mu        sync.Mutex
	expired   []string
	reminded  []string
	remindFor []string
	sweeps    int
	expireErr error
}

func (f *fakeJobs) Expire(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, id)
	return f.expireErr
}

func (f *fakeJobs) Remind(_ context.Context, id, scheduleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reminded = append(f.reminded, id)
	f.remindFor = append(f.remindFor, scheduleID)
	return nil
}

func (f *fakeJobs) ExpireStale(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return 0, nil
}

func (f *fakeJobs) sweepCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps
}

func TestMuxRoutesBookingTasks(t *testing.T) {
	utils.Logger = zap.NewNop()
	jobs := &fakeJobs{}
	mux := NewMux(jobs)
	ctx := context.Background()

	expire, _, err := tasks.NewBookingExpireTask("b-1", time.Now())
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, expire))

	remind, _, err := tasks.NewBookingReminderTask("b-2", "s-7", time.Now())
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(ctx, remind))

	assert.Equal(t, []string{"b-1"}, jobs.expired)
	assert.Equal(t, []string{"b-2"}, jobs.reminded)
	assert.Equal(t, []string{"s-7"}, jobs.remindFor)
}

func TestBadPayloadIsNotRetried(t *testing.T) {
	utils.Logger = zap.NewNop()
	mux := NewMux(&fakeJobs{})

	err := mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeBookingExpire, []byte(`{}`)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	err = mux.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeBookingReminder, []byte(`not json`)))
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestExpireTaskErrors(t *testing.T) {
	utils.Logger = zap.NewNop()
	ctx := context.Background()
	task, _, err := tasks.NewBookingExpireTask("b-1", time.Now())
	require.NoError(t, err)

	gone := NewMux(&fakeJobs{expireErr: repository.ErrNotFound})
	assert.NoError(t, gone.ProcessTask(ctx, task), "deleted bookings are done")

	boom := errors.New("mongo down")
	failing := NewMux(&fakeJobs{expireErr: boom})
	assert.ErrorIs(t, failing.ProcessTask(ctx, task), boom, "transient errors are retried")
}

func TestExpirySweepRunsUntilCancelled(t *testing.T) {
	utils.Logger = zap.NewNop()
	jobs := &fakeJobs{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		StartExpirySweep(ctx, jobs, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return jobs.sweepCount() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweep did not stop")
	}
}
