package schedule

import (
	"context"
	"testing"
	"time"

	"medbook/database/repository/memory"
	"medbook/models"
	"medbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*DefaultScheduleService, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.Doctors().Create(ctx, &models.Doctor{ID: "d1", UserID: "u1", SpecialtyID: "cardio", Active: true}))
	require.NoError(t, store.Doctors().Create(ctx, &models.Doctor{ID: "d2", UserID: "u2", SpecialtyID: "derma", Active: true}))

	svc := NewScheduleService(store.Schedules(), store.Doctors(), time.UTC)
	svc.Now = func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }
	return svc, store
}

func req(doctor, date, start, end string) models.ScheduleRequest {
	return models.ScheduleRequest{DoctorID: doctor, DateSchedule: date, StartTime: start, EndTime: end, BookingLimit: 3, Price: 150000}
}

func code(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %v", err)
	return appErr.Code
}

func TestCreateValidatesWindow(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	sc, err := svc.Create(ctx, req("d1", "2030-01-05", "09:00", "10:00"))
	require.NoError(t, err)
	assert.True(t, sc.Active)
	assert.Equal(t, 0, sc.NumberBooked)

	_, err = svc.Create(ctx, req("d1", "2030-01-05", "11:00", "10:00"))
	assert.Equal(t, utils.CodeInvalid, code(t, err), "start after end")

	_, err = svc.Create(ctx, req("d1", "2029-12-31", "09:00", "10:00"))
	assert.Equal(t, utils.CodeInvalid, code(t, err), "in the past")

	_, err = svc.Create(ctx, req("ghost", "2030-01-05", "12:00", "13:00"))
	assert.Equal(t, utils.CodeInvalid, code(t, err), "unknown doctor")
}

func TestCreateRejectsOverlapForSameDoctor(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, req("d1", "2030-01-05", "09:00", "10:00"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, req("d1", "2030-01-05", "09:30", "10:30"))
	assert.Equal(t, utils.CodeConflict, code(t, err))

	_, err = svc.Create(ctx, req("d1", "2030-01-05", "10:00", "11:00"))
	assert.NoError(t, err, "touching windows do not overlap")

	_, err = svc.Create(ctx, req("d2", "2030-01-05", "09:30", "10:30"))
	assert.NoError(t, err, "other doctor")
}

func TestCreateRejectsNestedWindowWithLooseClock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, req("d1", "2030-01-05", "09:00", "12:00"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, req("d1", "2030-01-05", "10:00", "11:00"))
	assert.Equal(t, utils.CodeConflict, code(t, err), "nested window")

	_, err = svc.Create(ctx, req("d1", "2030-01-06", "9:00", "12:00"))
	assert.Equal(t, utils.CodeInvalid, code(t, err), "single digit hour")
}

func TestUpdateAndDeleteRespectBookings(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	sc, err := svc.Create(ctx, req("d1", "2030-01-05", "09:00", "10:00"))
	require.NoError(t, err)
	require.NoError(t, store.Schedules().ReserveSeat(ctx, sc.ID))
	require.NoError(t, store.Schedules().ReserveSeat(ctx, sc.ID))

	moved := req("d1", "2030-01-06", "09:00", "10:00")
	_, err = svc.Update(ctx, sc.ID, moved)
	assert.Equal(t, utils.CodeConflict, code(t, err), "booked schedule cannot move")

	shrunk := req("d1", "2030-01-05", "09:00", "10:00")
	shrunk.BookingLimit = 1
	_, err = svc.Update(ctx, sc.ID, shrunk)
	assert.Equal(t, utils.CodeConflict, code(t, err), "limit below seats taken")

	repriced := req("d1", "2030-01-05", "09:00", "10:00")
	repriced.Price = 180000
	updated, err := svc.Update(ctx, sc.ID, repriced)
	require.NoError(t, err)
	assert.Equal(t, int64(180000), updated.Price)
	assert.Equal(t, 2, updated.NumberBooked)

	err = svc.Delete(ctx, sc.ID)
	assert.Equal(t, utils.CodeConflict, code(t, err))

	err = svc.Delete(ctx, "missing")
	assert.Equal(t, utils.CodeNotFound, code(t, err))
}

func TestListAvailableAndBySpecialty(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	open, err := svc.Create(ctx, req("d1", "2030-01-05", "09:00", "10:00"))
	require.NoError(t, err)
	full := req("d1", "2030-01-05", "10:00", "11:00")
	full.BookingLimit = 1
	fullSc, err := svc.Create(ctx, full)
	require.NoError(t, err)
	require.NoError(t, store.Schedules().ReserveSeat(ctx, fullSc.ID))
	inactive := req("d1", "2030-01-06", "09:00", "10:00")
	off := false
	inactive.Active = &off
	_, err = svc.Create(ctx, inactive)
	require.NoError(t, err)
	_, err = svc.Create(ctx, req("d2", "2030-01-05", "09:00", "10:00"))
	require.NoError(t, err)

	all, err := svc.List(ctx, Query{DoctorID: "d1"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	available, err := svc.List(ctx, Query{DoctorID: "d1", Available: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, open.ID, available[0].ID)

	cardio, err := svc.List(ctx, Query{SpecialtyID: "cardio"})
	require.NoError(t, err)
	assert.Len(t, cardio, 3)

	none, err := svc.List(ctx, Query{SpecialtyID: "ortho"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestForDoctorUser(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, req("d1", "2030-01-05", "09:00", "10:00"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, req("d1", "2030-01-06", "09:00", "10:00"))
	require.NoError(t, err)

	mine, err := svc.ForDoctorUser(ctx, "u1", "2030-01-06")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.ForDoctorUser(ctx, "nobody", "")
	assert.Equal(t, utils.CodeNotFound, code(t, err))
}
