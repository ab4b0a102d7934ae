package booking

import (
	"context"
	"sync"
	"testing"
	"time"

	"medbook/database/repository/memory"
	"medbook/models"
	"medbook/services/tasks"
	"medbook/utils"
	"medbook/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
}

func (n *recordingNotifier) Notify(_ context.Context, msg models.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.sent))
	for _, m := range n.sent {
		out = append(out, m.Type)
	}
	return out
}

type recordingScheduler struct {
	mu        sync.Mutex
	expiries  map[string]time.Time
	reminders map[string]time.Time
	// reminderIDs collects every reminder task id, in order.
	reminderIDs []string
}

func (s *recordingScheduler) ScheduleExpiry(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expiries[id] = at
	return nil
}

func (s *recordingScheduler) ScheduleReminder(_ context.Context, id, scheduleID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders[id] = at
	s.reminderIDs = append(s.reminderIDs, tasks.ReminderTaskID(id, scheduleID))
	return nil
}

type fixture struct {
	svc      *DefaultBookingService
	store    *memory.Store
	notifier *recordingNotifier
	jobs     *recordingScheduler
	now      time.Time
	patient  models.Actor
	admin    models.Actor
	doctor   models.Actor
}

func (f *fixture) advance(d time.Duration) { f.now = f.now.Add(d) }

func (f *fixture) seat(t *testing.T, scheduleID string) int {
	t.Helper()
	sc, err := f.store.Schedules().GetByID(context.Background(), scheduleID)
	require.NoError(t, err)
	return sc.NumberBooked
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	utils.Logger = zap.NewNop()
	ctx := context.Background()

	store := memory.NewStore()
	users := []models.User{
		{ID: "u-patient", Fullname: "Nguyen An", PhoneNumber: "0900000001", Email: "an@example.com", Role: models.RolePatient, Active: true},
		{ID: "u-other", Fullname: "Tran Binh", PhoneNumber: "0900000002", Email: "binh@example.com", Role: models.RolePatient, Active: true},
		{ID: "u-doctor", Fullname: "Dr. Le", PhoneNumber: "0900000003", Role: models.RoleDoctor, Active: true},
		{ID: "u-doctor2", Fullname: "Dr. Pham", PhoneNumber: "0900000004", Role: models.RoleDoctor, Active: true},
	}
	for i := range users {
		require.NoError(t, store.Users().Create(ctx, &users[i]))
	}
	require.NoError(t, store.Doctors().Create(ctx, &models.Doctor{ID: "d1", UserID: "u-doctor", SpecialtyID: "sp", Active: true}))
	require.NoError(t, store.Doctors().Create(ctx, &models.Doctor{ID: "d2", UserID: "u-doctor2", SpecialtyID: "sp", Active: true}))

	schedules := []models.Schedule{
		{ID: "s1", DoctorID: "d1", DateSchedule: "2030-01-10", StartTime: "09:00", EndTime: "10:00", BookingLimit: 2, Price: 200000, Active: true},
		{ID: "s2", DoctorID: "d1", DateSchedule: "2030-01-11", StartTime: "09:00", EndTime: "10:00", BookingLimit: 1, Price: 250000, Active: true},
		{ID: "s3", DoctorID: "d2", DateSchedule: "2030-01-11", StartTime: "09:00", EndTime: "10:00", BookingLimit: 5, Price: 100000, Active: true},
		{ID: "s-past", DoctorID: "d1", DateSchedule: "2029-12-31", StartTime: "09:00", EndTime: "10:00", BookingLimit: 5, Price: 100000, Active: true},
		{ID: "s-off", DoctorID: "d1", DateSchedule: "2030-01-12", StartTime: "09:00", EndTime: "10:00", BookingLimit: 5, Price: 100000, Active: false},
	}
	for i := range schedules {
		require.NoError(t, store.Schedules().Create(ctx, &schedules[i]))
	}

	f := &fixture{
		store:    store,
		notifier: &recordingNotifier{},
		jobs:     &recordingScheduler{expiries: map[string]time.Time{}, reminders: map[string]time.Time{}},
		now:      time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC),
		patient:  models.Actor{UserID: "u-patient", Role: models.RolePatient},
		admin:    models.Actor{UserID: "u-admin", Role: models.RoleAdmin},
		doctor:   models.Actor{UserID: "u-doctor", Role: models.RoleDoctor},
	}
	f.svc = NewBookingService(
		store.Bookings(), store.Schedules(), store.Doctors(), store.Users(),
		nil, f.notifier, f.jobs,
		Config{PendingTTL: 15 * time.Minute, MaxScheduleChanges: 1, Location: time.UTC},
	)
	f.svc.Now = func() time.Time { return f.now }
	return f
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %T", err)
	return appErr.Code
}

// receiptFor is the gateway receipt of a full payment of b.
func receiptFor(b *models.BookingView, method, reference string) models.PaymentReceipt {
	return models.PaymentReceipt{Method: method, Reference: reference, Amount: b.Amount}
}

func TestCreateTakesPriceAndSeatFromSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{
		ScheduleID: "s1",
		UserID:     "u-other",
		Amount:     1,
		Status:     models.BookingPaid,
	})
	require.NoError(t, err)

	assert.Equal(t, "u-patient", view.UserID, "patient comes from the token")
	assert.Equal(t, int64(200000), view.Amount)
	assert.Equal(t, models.BookingPending, view.Status)
	assert.Equal(t, models.PaymentVNPay, view.PaymentMethod)
	assert.Len(t, view.PaymentCode, 12)
	require.NotNil(t, view.Schedule)
	require.NotNil(t, view.Doctor)
	assert.Equal(t, "d1", view.Doctor.ID)
	require.NotNil(t, view.User)
	assert.Equal(t, "Nguyen An", view.User.Fullname)
	assert.Equal(t, 1, f.seat(t, "s1"))

	assert.Equal(t, f.now.Add(15*time.Minute), f.jobs.expiries[view.ID])
	assert.Equal(t, time.Date(2030, 1, 9, 9, 0, 0, 0, time.UTC), f.jobs.reminders[view.ID])
}

func TestCreateRejectsUnbookableSchedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, id := range []string{"s-past", "s-off"} {
		_, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: id})
		assert.Equal(t, utils.CodeUnavailable, appCode(t, err), id)
	}

	_, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "missing"})
	assert.Equal(t, utils.CodeNotFound, appCode(t, err))
}

func TestCreateStopsAtBookingLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s2"})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, models.Actor{UserID: "u-other", Role: models.RolePatient}, models.CreateBookingRequest{ScheduleID: "s2"})
	assert.Equal(t, utils.CodeUnavailable, appCode(t, err))
	assert.Equal(t, 1, f.seat(t, "s2"))
}

func TestConcurrentBookingsNeverOverbook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"}); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 2, f.seat(t, "s1"))
}

func TestGetAccessRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)

	t.Run("owner", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.patient, created.ID)
		assert.NoError(t, err)
	})
	t.Run("doctor of the schedule", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.doctor, created.ID)
		assert.NoError(t, err)
	})
	t.Run("other doctor", func(t *testing.T) {
		_, err := f.svc.Get(ctx, models.Actor{UserID: "u-doctor2", Role: models.RoleDoctor}, created.ID)
		assert.Equal(t, utils.CodeForbidden, appCode(t, err))
	})
	t.Run("other patient", func(t *testing.T) {
		_, err := f.svc.Get(ctx, models.Actor{UserID: "u-other", Role: models.RolePatient}, created.ID)
		assert.Equal(t, utils.CodeForbidden, appCode(t, err))
	})
	t.Run("admin", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.admin, created.ID)
		assert.NoError(t, err)
	})
	t.Run("unknown id", func(t *testing.T) {
		_, err := f.svc.Get(ctx, f.admin, "nope")
		assert.Equal(t, utils.CodeNotFound, appCode(t, err))
	})
}

func TestChangeSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)

	_, err = f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s1")
	assert.Equal(t, utils.CodeInvalid, appCode(t, err), "same schedule")

	_, err = f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s3")
	assert.Equal(t, utils.CodeInvalid, appCode(t, err), "other doctor")

	_, err = f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s-past")
	assert.Equal(t, utils.CodeUnavailable, appCode(t, err))

	moved, err := f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s2")
	require.NoError(t, err)
	assert.Equal(t, "s2", moved.ScheduleID)
	assert.Equal(t, 1, moved.ChangeCount)
	assert.Equal(t, int64(250000), moved.Amount, "pending booking follows the new price")
	assert.Equal(t, 0, f.seat(t, "s1"))
	assert.Equal(t, 1, f.seat(t, "s2"))
	assert.Contains(t, f.notifier.types(), models.NotifyBookingMoved)

	_, err = f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s1")
	assert.Equal(t, utils.CodeInvalidState, appCode(t, err), "change limit reached")
}

func TestRefundOnlyForPaidBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	refund := models.RefundRequest{BankName: "VCB", AccountNumber: "0123456789", AccountHolder: "NGUYEN AN", Reason: "Cannot attend"}

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)

	_, err = f.svc.RequestRefund(ctx, f.patient, created.ID, refund)
	assert.Equal(t, utils.CodeInvalidState, appCode(t, err))

	_, err = f.svc.MarkPaid(ctx, created.ID, receiptFor(created, models.PaymentVNPay, ""))
	require.NoError(t, err)

	view, err := f.svc.RequestRefund(ctx, f.patient, created.ID, refund)
	require.NoError(t, err)
	assert.Equal(t, models.BookingWaitRefund, view.Status)
	require.NotNil(t, view.Refund)
	assert.Equal(t, "0123456789", view.Refund.AccountNumber)
	assert.Equal(t, "Cannot attend", view.Reason)
	assert.Equal(t, 1, f.seat(t, "s1"), "seat is held until the refund completes")

	done, err := f.svc.SetStatus(ctx, created.ID, models.BookingStatusRequest{Status: models.BookingRefunded})
	require.NoError(t, err)
	assert.Equal(t, models.BookingRefunded, done.Status)
	assert.Equal(t, 0, f.seat(t, "s1"))
	assert.Contains(t, f.notifier.types(), models.NotifyBookingRefunded)
}

func TestDetailPathMustOwnBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	other := models.Actor{UserID: "u-other", Role: models.RolePatient}

	view, err := f.svc.GetForUser(ctx, f.patient, "u-patient", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)

	view, err = f.svc.GetForUser(ctx, f.admin, "u-patient", created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, view.ID)

	cases := []struct {
		name   string
		actor  models.Actor
		userID string
	}{
		{"patient names another user", f.patient, "u-other"},
		{"patient names self but booking is foreign", other, "u-other"},
		{"admin names the wrong owner", f.admin, "u-other"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.GetForUser(ctx, tc.actor, tc.userID, created.ID)
			assert.Equal(t, utils.CodeNotFound, appCode(t, err))

			_, err = f.svc.UpdateDetail(ctx, tc.actor, tc.userID, created.ID, models.UpdateBookingRequest{ScheduleID: "s2"})
			assert.Equal(t, utils.CodeNotFound, appCode(t, err))
		})
	}

	b, err := f.store.Bookings().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "s1", b.ScheduleID, "nothing moved")
}

func TestUpdateDetailDispatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)

	_, err = f.svc.UpdateDetail(ctx, f.patient, "u-other", created.ID, models.UpdateBookingRequest{ScheduleID: "s2"})
	assert.Equal(t, utils.CodeNotFound, appCode(t, err))

	_, err = f.svc.UpdateDetail(ctx, f.patient, "u-patient", created.ID, models.UpdateBookingRequest{})
	assert.Equal(t, utils.CodeInvalid, appCode(t, err))

	_, err = f.svc.UpdateDetail(ctx, f.patient, "u-patient", created.ID, models.UpdateBookingRequest{BankName: "VCB"})
	var fieldErrs validation.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Contains(t, fieldErrs, "account_number")

	moved, err := f.svc.UpdateDetail(ctx, f.patient, "u-patient", created.ID, models.UpdateBookingRequest{ScheduleID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, "s2", moved.ScheduleID)
}

func TestDeleteReleasesSeatAndRefusesPaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, 2, f.seat(t, "s1"))

	require.NoError(t, f.svc.Delete(ctx, f.patient, first.ID))
	assert.Equal(t, 1, f.seat(t, "s1"))

	_, err = f.svc.MarkPaid(ctx, second.ID, receiptFor(second, "", ""))
	require.NoError(t, err)
	err = f.svc.Delete(ctx, f.patient, second.ID)
	assert.Equal(t, utils.CodeInvalidState, appCode(t, err))

	err = f.svc.Delete(ctx, models.Actor{UserID: "u-other", Role: models.RolePatient}, second.ID)
	assert.Equal(t, utils.CodeForbidden, appCode(t, err))
}

func TestMarkPaidRejectsStaleAmountAfterReschedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	moved, err := f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s2")
	require.NoError(t, err)
	require.Equal(t, int64(250000), moved.Amount)

	// Paying the price quoted before the move is not enough.
	_, err = f.svc.MarkPaid(ctx, created.ID, receiptFor(created, models.PaymentVNPay, "txn-1"))
	assert.ErrorIs(t, err, ErrAmountMismatch)

	b, err := f.store.Bookings().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status)

	paid, err := f.svc.MarkPaid(ctx, created.ID, receiptFor(moved, models.PaymentVNPay, "txn-2"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, paid.Status)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1", PaymentMethod: models.PaymentStripe})
	require.NoError(t, err)

	paid, err := f.svc.MarkPaid(ctx, created.ID, receiptFor(created, models.PaymentStripe, "cs_test_1"))
	require.NoError(t, err)
	assert.Equal(t, models.BookingPaid, paid.Status)
	assert.Equal(t, "cs_test_1", paid.PaymentCode)
	require.NotNil(t, paid.PaidAt)

	again, err := f.svc.MarkPaid(ctx, created.ID, receiptFor(created, models.PaymentStripe, "cs_test_2"))
	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", again.PaymentCode)

	paidNotices := 0
	for _, kind := range f.notifier.types() {
		if kind == models.NotifyBookingPaid {
			paidNotices++
		}
	}
	assert.Equal(t, 1, paidNotices)

	_, err = f.svc.MarkPaid(ctx, "missing", models.PaymentReceipt{})
	assert.Equal(t, utils.CodeNotFound, appCode(t, err))
}

func TestExpireAfterPaymentWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)

	f.advance(10 * time.Minute)
	require.NoError(t, f.svc.Expire(ctx, created.ID))
	b, err := f.store.Bookings().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingPending, b.Status, "still inside the window")

	f.advance(6 * time.Minute)
	require.NoError(t, f.svc.Expire(ctx, created.ID))
	b, err = f.store.Bookings().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, b.Status)
	assert.Equal(t, reasonExpired, b.Reason)
	assert.Equal(t, 0, f.seat(t, "s1"))

	assert.NoError(t, f.svc.Expire(ctx, "missing"))
}

func TestExpireStaleSkipsPaidAndFresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	stale, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	paid, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s3"})
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, paid.ID, receiptFor(paid, "", ""))
	require.NoError(t, err)

	f.advance(20 * time.Minute)
	fresh, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s2"})
	require.NoError(t, err)

	n, err := f.svc.ExpireStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	for id, want := range map[string]string{
		stale.ID: models.BookingRejected,
		paid.ID:  models.BookingPaid,
		fresh.ID: models.BookingPending,
	} {
		b, err := f.store.Bookings().GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, b.Status)
	}
}

func TestSetStatusFollowsTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)

	_, err = f.svc.SetStatus(ctx, created.ID, models.BookingStatusRequest{Status: models.BookingRefunded})
	assert.Equal(t, utils.CodeInvalidState, appCode(t, err))

	view, err := f.svc.SetStatus(ctx, created.ID, models.BookingStatusRequest{Status: models.BookingRejected, Reason: "Doctor unavailable"})
	require.NoError(t, err)
	assert.Equal(t, models.BookingRejected, view.Status)
	assert.Equal(t, "Doctor unavailable", view.Reason)
	assert.Equal(t, 0, f.seat(t, "s1"))
	assert.Contains(t, f.notifier.types(), models.NotifyBookingRejected)
}

func TestRemindOnlyPaidBookings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	f.now = time.Date(2030, 1, 9, 9, 0, 0, 0, time.UTC)

	require.NoError(t, f.svc.Remind(ctx, created.ID, "s1"))
	assert.NotContains(t, f.notifier.types(), models.NotifyReminder)

	_, err = f.svc.MarkPaid(ctx, created.ID, receiptFor(created, "", ""))
	require.NoError(t, err)
	require.NoError(t, f.svc.Remind(ctx, created.ID, "s1"))
	assert.Contains(t, f.notifier.types(), models.NotifyReminder)
}

func TestRemindIgnoresStaleReminders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	count := func() int {
		n := 0
		for _, typ := range f.notifier.types() {
			if typ == models.NotifyReminder {
				n++
			}
		}
		return n
	}

	created, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	moved, err := f.svc.ChangeSchedule(ctx, f.patient, created.ID, "s2")
	require.NoError(t, err)
	_, err = f.svc.MarkPaid(ctx, created.ID, receiptFor(moved, "", ""))
	require.NoError(t, err)

	assert.Equal(t, []string{
		tasks.ReminderTaskID(created.ID, "s1"),
		tasks.ReminderTaskID(created.ID, "s2"),
	}, f.jobs.reminderIDs)

	// The s1 reminder fires a day before the old appointment.
	f.now = time.Date(2030, 1, 9, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.Remind(ctx, created.ID, "s1"))
	assert.Zero(t, count(), "reminder for the previous schedule")

	require.NoError(t, f.svc.Remind(ctx, created.ID, "s2"))
	assert.Zero(t, count(), "too early for s2")

	f.now = time.Date(2030, 1, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.Remind(ctx, created.ID, "s2"))
	assert.Equal(t, 1, count())

	f.now = time.Date(2030, 1, 11, 9, 30, 0, 0, time.UTC)
	require.NoError(t, f.svc.Remind(ctx, created.ID, "s2"))
	assert.Equal(t, 1, count(), "appointment already started")
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	other := models.Actor{UserID: "u-other", Role: models.RolePatient}

	_, err := f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s1"})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.svc.Create(ctx, f.patient, models.CreateBookingRequest{ScheduleID: "s3"})
	require.NoError(t, err)
	f.advance(time.Minute)
	_, err = f.svc.Create(ctx, other, models.CreateBookingRequest{ScheduleID: "s2"})
	require.NoError(t, err)

	mine, err := f.svc.ListForUser(ctx, f.patient, "u-patient", ListQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, mine.Count)
	require.Len(t, mine.Rows, 2)
	assert.Equal(t, "s3", mine.Rows[0].ScheduleID, "newest first")

	_, err = f.svc.ListForUser(ctx, f.patient, "u-other", ListQuery{})
	assert.Equal(t, utils.CodeForbidden, appCode(t, err))

	doctorPage, err := f.svc.ListForDoctorUser(ctx, "u-doctor", ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 2, doctorPage.Count, "s1 and s2 belong to d1")

	searched, err := f.svc.ListAll(ctx, ListQuery{Search: "binh"})
	require.NoError(t, err)
	require.Len(t, searched.Rows, 1)
	assert.Equal(t, "u-other", searched.Rows[0].UserID)

	all, err := f.svc.ListAll(ctx, ListQuery{Status: models.BookingPending, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Count)
	assert.Len(t, all.Rows, 2)
}
