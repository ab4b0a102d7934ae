package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"medbook/models"
	"medbook/utils"
	"medbook/validation"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI records the calls it receives and answers from a route table.
type fakeAPI struct {
	mu     sync.Mutex
	calls  []string
	auth   map[string]string
	routes map[string]http.HandlerFunc
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{auth: map[string]string{}, routes: map[string]http.HandlerFunc{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		f.mu.Lock()
		f.calls = append(f.calls, key)
		f.auth[key] = r.Header.Get("Authorization")
		h, ok := f.routes[key]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) handle(key string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[key] = h
}

func (f *fakeAPI) hits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) authOf(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[key]
}

func reply(status int, body any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func ok(data any) map[string]any {
	return map[string]any{"status": "success", "message": "ok", "data": data}
}

func patientToken(t *testing.T, ttl time.Duration) string {
	t.Helper()
	token, _, err := utils.NewTokenIssuer("test-secret", ttl).GenerateToken("u-1", models.RolePatient)
	require.NoError(t, err)
	return token
}

func loginAsPatient(t *testing.T, f *fakeAPI, c *Client) {
	t.Helper()
	f.handle("POST /api/v1/users/login", reply(http.StatusOK, ok(models.LoginResponse{
		Token: patientToken(t, time.Hour),
		Role:  models.RolePatient,
		User:  models.User{ID: "u-1", Fullname: "Nguyen Van A", Email: "a@example.com"},
	})))
	_, err := c.Login(context.Background(), models.LoginRequest{PhoneNumber: "0912345678", Password: "secret1", RoleID: 3})
	require.NoError(t, err)
}

func bookableSchedule() models.Schedule {
	return models.Schedule{
		ID:           "s-1",
		DoctorID:     "d-1",
		DateSchedule: "2099-01-01",
		StartTime:    "09:00",
		EndTime:      "10:00",
		BookingLimit: 5,
		Price:        200000,
		Active:       true,
	}
}

func TestBaseURLGetsAPIPrefix(t *testing.T) {
	c := New("http://example.com/", nil)
	assert.Equal(t, "http://example.com/api/v1", c.baseURL)

	c = New("", nil)
	assert.Equal(t, DefaultBaseURL+"/api/v1", c.baseURL)
}

func TestLoginStoresSessionAndAttachesBearer(t *testing.T) {
	f, srv := newFakeAPI(t)
	store := NewMemoryStore()
	c := New(srv.URL, store)
	loginAsPatient(t, f, c)

	s, err := c.Session(models.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.UserID)
	assert.Equal(t, "Nguyen Van A", s.Fullname)
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.ExpiresAt, time.Minute)

	// Other role slots stay empty.
	_, err = c.Session(models.RoleAdmin)
	assert.ErrorIs(t, err, ErrNoSession)

	f.handle("GET /api/v1/users/details", reply(http.StatusOK, ok(models.Profile{})))
	_, err = c.Me(context.Background(), models.RolePatient)
	require.NoError(t, err)
	assert.Equal(t, "Bearer "+s.Token, f.authOf("GET /api/v1/users/details"))
}

func TestLoginWithoutTokenFails(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.handle("POST /api/v1/users/login", reply(http.StatusOK, ok(map[string]any{"token": ""})))
	c := New(srv.URL, nil)

	_, err := c.Login(context.Background(), models.LoginRequest{PhoneNumber: "0912345678", Password: "x", RoleID: 3})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, DefaultErrorMessage, apiErr.Message)
}

func TestExpiredSessionIsDroppedAndNotSent(t *testing.T) {
	f, srv := newFakeAPI(t)
	now := time.Now()
	c := New(srv.URL, nil, WithClock(func() time.Time { return now }))
	loginAsPatient(t, f, c)

	now = now.Add(2 * time.Hour)
	_, err := c.Session(models.RolePatient)
	assert.ErrorIs(t, err, ErrNoSession)

	f.handle("GET /api/v1/users/details", reply(http.StatusUnauthorized, map[string]any{"status": "error", "message": "Unauthorized"}))
	_, err = c.Me(context.Background(), models.RolePatient)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.Unauthorized())
	assert.Empty(t, f.authOf("GET /api/v1/users/details"))
}

func TestLogoutClearsSlotEvenWhenServerFails(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	loginAsPatient(t, f, c)

	f.handle("POST /api/v1/users/logout", reply(http.StatusInternalServerError, map[string]any{"status": "error", "message": "boom"}))
	err := c.Logout(context.Background(), models.RolePatient)
	require.Error(t, err)
	assert.NotEmpty(t, f.authOf("POST /api/v1/users/logout"))

	_, err = c.Session(models.RolePatient)
	assert.ErrorIs(t, err, ErrNoSession)

	// Logging out with no session is a no-op.
	before := f.hits()
	require.NoError(t, c.Logout(context.Background(), models.RolePatient))
	assert.Equal(t, before, f.hits())
}

func TestFormsAreValidatedBeforeSending(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	ctx := context.Background()

	_, err := c.Register(ctx, models.RegisterRequest{
		Fullname:        "A",
		Email:           "not-an-email",
		PhoneNumber:     "123",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})
	var fe validation.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "email")
	assert.Contains(t, fe, "phone_number")
	assert.Contains(t, fe, "confirm_password")

	_, err = c.Login(ctx, models.LoginRequest{PhoneNumber: "0912345678", Password: "x", RoleID: 9})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "role_id")

	_, err = c.SubmitContact(ctx, models.ContactRequest{Email: "a@example.com"})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "message")

	assert.Zero(t, f.hits())
}

func TestErrorEnvelopeCarriesFieldMessages(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.handle("POST /api/v1/contacts", reply(http.StatusBadRequest, map[string]any{
		"status":  "error",
		"message": "Validation failed",
		"errors":  map[string]string{"email": "Email is already used"},
	}))
	c := New(srv.URL, nil)

	_, err := c.SubmitContact(context.Background(), models.ContactRequest{
		Fullname:    "Tran Thi B",
		Email:       "b@example.com",
		PhoneNumber: "0987654321",
		Message:     "Hello",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Validation failed", apiErr.Message)
	assert.Equal(t, "Email is already used", apiErr.Fields["email"])
}

func TestNonJSONErrorFallsBackToDefaultMessage(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.handle("POST /api/v1/contacts", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>bad gateway</html>")
	})
	c := New(srv.URL, nil)

	_, err := c.SubmitContact(context.Background(), models.ContactRequest{
		Fullname:    "Tran Thi B",
		Email:       "b@example.com",
		PhoneNumber: "0987654321",
		Message:     "Hello",
	})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, DefaultErrorMessage, apiErr.Message)
	assert.Contains(t, apiErr.Error(), "Bad Gateway")
}

func TestSubmitContactReturnsServerMessage(t *testing.T) {
	f, srv := newFakeAPI(t)
	f.handle("POST /api/v1/contacts", reply(http.StatusCreated, map[string]any{"status": "success", "message": "Thanks, we will get back to you"}))
	c := New(srv.URL, nil)

	msg, err := c.SubmitContact(context.Background(), models.ContactRequest{
		Fullname:    "Tran Thi B",
		Email:       "b@example.com",
		PhoneNumber: "0987654321",
		Message:     "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Thanks, we will get back to you", msg)
}

func TestBookHandsOffNumericID(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	loginAsPatient(t, f, c)

	var sent models.CreateBookingRequest
	f.handle("POST /api/v1/bookings", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&sent)
		reply(http.StatusCreated, ok(map[string]any{"id": 42, "payment_code": "MB42"}))(w, r)
	})

	doctor := models.DoctorView{Doctor: models.Doctor{ID: "d-1"}}
	h, err := c.Book(context.Background(), bookableSchedule(), doctor, "vnpay")
	require.NoError(t, err)
	assert.Equal(t, "42", h.BookingID)
	assert.Equal(t, int64(200000), h.Amount, "falls back to the schedule price")
	assert.Equal(t, "MB42", h.PaymentCode)
	assert.Equal(t, "d-1", h.Doctor.ID)

	assert.Equal(t, "s-1", sent.ScheduleID)
	assert.Equal(t, "u-1", sent.UserID)
	assert.NotEmpty(t, f.authOf("POST /api/v1/bookings"))
}

func TestBookGating(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	ctx := context.Background()

	_, err := c.Book(ctx, bookableSchedule(), models.DoctorView{}, "vnpay")
	assert.ErrorIs(t, err, ErrNotLoggedIn)

	full := bookableSchedule()
	full.NumberBooked = full.BookingLimit
	_, err = c.Book(ctx, full, models.DoctorView{}, "vnpay")
	assert.ErrorIs(t, err, ErrNotBookable)

	past := bookableSchedule()
	past.DateSchedule = "2000-01-01"
	_, err = c.Book(ctx, past, models.DoctorView{}, "vnpay")
	assert.ErrorIs(t, err, ErrNotBookable)

	assert.Zero(t, f.hits())
}

func TestBookableUsesClinicZone(t *testing.T) {
	sc := bookableSchedule()
	sc.DateSchedule = "2030-01-10"
	now := time.Date(2030, 1, 10, 3, 0, 0, 0, time.UTC)
	clock := WithClock(func() time.Time { return now })

	// 09:00 at UTC+7 is 02:00 UTC, already gone at 03:00 UTC.
	assert.False(t, New("", nil, clock).Bookable(sc))
	assert.False(t, New("", nil, clock, WithLocation(time.FixedZone("ICT", 7*60*60))).Bookable(sc))
	assert.True(t, New("", nil, clock, WithLocation(time.UTC)).Bookable(sc))
	assert.False(t, New("", nil, clock, WithLocation(nil)).Bookable(sc), "nil keeps the default")
}

func TestBookingActionGates(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	loginAsPatient(t, f, c)
	ctx := context.Background()
	before := f.hits()

	pending := models.Booking{ID: "b-1", Status: models.BookingPending}
	_, err := c.RequestRefund(ctx, pending, models.RefundRequest{BankName: "VCB", AccountNumber: "0123456789", AccountHolder: "A"})
	assert.ErrorIs(t, err, ErrRefundNotAllowed)

	paid := models.Booking{ID: "b-2", Status: models.BookingPaid}
	assert.ErrorIs(t, c.DeleteBooking(ctx, paid), ErrDeleteNotAllowed)

	var fe validation.FieldErrors
	_, err = c.RequestRefund(ctx, paid, models.RefundRequest{BankName: "VCB", AccountNumber: "abc", AccountHolder: "A"})
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "account_number")

	assert.Equal(t, before, f.hits())
}

func TestRequestRefundSendsDetailUpdate(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	loginAsPatient(t, f, c)

	var (
		sent      models.UpdateBookingRequest
		bookingID string
	)
	f.handle("PUT /api/v1/bookings/user/u-1/detail", func(w http.ResponseWriter, r *http.Request) {
		bookingID = r.URL.Query().Get("bookingId")
		_ = json.NewDecoder(r.Body).Decode(&sent)
		reply(http.StatusOK, ok(models.BookingView{Booking: models.Booking{ID: "b-2", Status: models.BookingWaitRefund}}))(w, r)
	})

	paid := models.Booking{ID: "b-2", Status: models.BookingPaid}
	out, err := c.RequestRefund(context.Background(), paid, models.RefundRequest{
		BankName:      "Vietcombank",
		AccountNumber: "0123456789",
		AccountHolder: "NGUYEN VAN A",
	})
	require.NoError(t, err)
	assert.Equal(t, models.BookingWaitRefund, out.Status)
	assert.Equal(t, "b-2", bookingID)
	assert.Equal(t, "0123456789", sent.AccountNumber)
	assert.Empty(t, sent.ScheduleID)
}

func TestVNPayURLPassesAmount(t *testing.T) {
	f, srv := newFakeAPI(t)
	c := New(srv.URL, nil)
	loginAsPatient(t, f, c)

	var query string
	f.handle("GET /api/v1/payment/vn-pay", func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		reply(http.StatusOK, ok(models.PaymentLink{PaymentURL: "https://pay.example/x"}))(w, r)
	})

	u, err := c.VNPayURL(context.Background(), PaymentHandoff{BookingID: "42", Amount: 300000})
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/x", u)
	assert.Contains(t, query, "bookingId=42")
	assert.Contains(t, query, "amount=300000")
}

func TestPageBookingsFiltersLocally(t *testing.T) {
	rows := []models.BookingView{
		{Booking: models.Booking{Status: models.BookingPaid}},
		{Booking: models.Booking{Status: models.BookingPending}},
		{Booking: models.Booking{Status: models.BookingPaid}},
	}
	p := PageBookings(rows, models.BookingPaid, 1, 1)
	assert.Equal(t, 2, p.Count)
	assert.Len(t, p.Rows, 1)
	assert.Equal(t, 2, p.TotalPages)
}

func TestIDDecodesStringsAndNumbers(t *testing.T) {
	cases := map[string]ID{
		`"abc"`: "abc",
		`42`:    "42",
		`null`:  "",
	}
	for in, want := range cases {
		var id ID
		require.NoError(t, json.Unmarshal([]byte(in), &id), in)
		assert.Equal(t, want, id, in)
	}

	var id ID
	assert.Error(t, json.Unmarshal([]byte(`true`), &id))
}
