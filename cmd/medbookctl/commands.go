package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"medbook/client"
	"medbook/models"

	"github.com/spf13/pflag"
)

var commands = map[string]command{
	"register":     {"create a patient account", runRegister},
	"login":        {"sign in (--role admin|doctor|patient)", runLogin},
	"logout":       {"sign out of a role", runLogout},
	"whoami":       {"show the account behind a role's session", runWhoami},
	"specialties":  {"list specialties", runSpecialties},
	"doctors":      {"search doctors", runDoctors},
	"doctor":       {"show one doctor by id or slug", runDoctor},
	"schedules":    {"list a doctor's schedules", runSchedules},
	"book":         {"book a schedule and print the payment link", runBook},
	"bookings":     {"list my bookings", runBookings},
	"booking":      {"show one of my bookings", runBooking},
	"change":       {"move a booking to another schedule", runChange},
	"refund":       {"request a refund of a paid booking", runRefund},
	"cancel":       {"delete an unpaid booking", runCancel},
	"pay":          {"print the payment link of a pending booking", runPay},
	"contact":      {"send the contact form", runContact},
	"stats":        {"admin: dashboard counters", runStats},
	"all-bookings": {"admin: list every booking", runAllBookings},
	"set-status":   {"admin: change a booking's status", runSetStatus},
	"upload-image": {"admin: upload a doctor or specialty image", runUploadImage},
	"my-schedules": {"doctor: list my schedules", runMySchedules},
	"my-bookings":  {"doctor: list bookings on my schedules", runMyBookings},
}

func flags(name string) *pflag.FlagSet {
	return pflag.NewFlagSet(name, pflag.ContinueOnError)
}

var roleIDs = map[string]int{
	models.RoleAdmin:   1,
	models.RoleDoctor:  2,
	models.RolePatient: 3,
}

func roleFlag(fs *pflag.FlagSet) *string {
	return fs.String("role", models.RolePatient, "admin, doctor or patient")
}

func runRegister(ctx context.Context, a *app, args []string) error {
	fs := flags("register")
	var req models.RegisterRequest
	fs.StringVar(&req.Fullname, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.ConfirmPassword, "confirm-password", "", "password again")
	fs.StringVar(&req.Gender, "gender", "", "male, female or other")
	fs.StringVar(&req.DateOfBirth, "dob", "", "date of birth, YYYY-MM-DD")
	fs.StringVar(&req.Address, "address", "", "address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	u, err := a.api.Register(ctx, req)
	if err != nil {
		return err
	}
	return a.print(u)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := flags("login")
	role := roleFlag(fs)
	phone := fs.String("phone", "", "phone number")
	password := fs.String("password", os.Getenv("MEDBOOK_PASSWORD"), "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, ok := roleIDs[*role]
	if !ok {
		return fmt.Errorf("unknown role %q", *role)
	}
	res, err := a.api.Login(ctx, models.LoginRequest{PhoneNumber: *phone, Password: *password, RoleID: id})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s)\n", res.User.Fullname, res.Role)
	return nil
}

func runLogout(ctx context.Context, a *app, args []string) error {
	fs := flags("logout")
	role := roleFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.api.Logout(ctx, *role); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func runWhoami(ctx context.Context, a *app, args []string) error {
	fs := flags("whoami")
	role := roleFlag(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	p, err := a.api.Me(ctx, *role)
	if err != nil {
		return err
	}
	return a.print(p)
}

func runSpecialties(ctx context.Context, a *app, _ []string) error {
	rows, err := a.api.Specialties(ctx)
	if err != nil {
		return err
	}
	return a.print(rows)
}

func runDoctors(ctx context.Context, a *app, args []string) error {
	fs := flags("doctors")
	var q client.DoctorQuery
	fs.StringVar(&q.SpecialtyID, "specialty", "", "specialty id")
	fs.StringVar(&q.ClinicID, "clinic", "", "clinic id")
	fs.StringVar(&q.Search, "q", "", "name search")
	fs.IntVar(&q.Page, "page", 1, "page number")
	fs.IntVar(&q.Limit, "limit", 10, "rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	page, err := a.api.Doctors(ctx, q)
	if err != nil {
		return err
	}
	return a.print(page)
}

func runDoctor(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: doctor <id-or-slug>")
	}
	d, err := a.api.Doctor(ctx, args[0])
	if err != nil {
		return err
	}
	return a.print(d)
}

func runSchedules(ctx context.Context, a *app, args []string) error {
	fs := flags("schedules")
	var q client.ScheduleQuery
	fs.StringVar(&q.DoctorID, "doctor", "", "doctor id")
	fs.StringVar(&q.SpecialtyID, "specialty", "", "specialty id")
	fs.StringVar(&q.DateSchedule, "date", "", "YYYY-MM-DD")
	all := fs.Bool("all", false, "include schedules that cannot be booked")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q.Available = !*all
	rows, err := a.api.Schedules(ctx, q)
	if err != nil {
		return err
	}
	return a.print(rows)
}

func runBook(ctx context.Context, a *app, args []string) error {
	fs := flags("book")
	scheduleID := fs.String("schedule", "", "schedule id")
	method := fs.String("method", models.PaymentVNPay, "vnpay, stripe or cash")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *scheduleID == "" {
		return errors.New("--schedule is required")
	}
	sc, err := a.api.Schedule(ctx, *scheduleID)
	if err != nil {
		return err
	}
	doc, err := a.api.Doctor(ctx, sc.DoctorID)
	if err != nil {
		return err
	}
	handoff, err := a.api.Book(ctx, *sc, *doc, *method)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Booking %s created: %d VND on %s %s-%s\n",
		handoff.BookingID, handoff.Amount, sc.DateSchedule, sc.StartTime, sc.EndTime)
	return printPaymentLink(ctx, a, *method, handoff)
}

func printPaymentLink(ctx context.Context, a *app, method string, h *client.PaymentHandoff) error {
	var (
		link string
		err  error
	)
	switch method {
	case models.PaymentVNPay:
		link, err = a.api.VNPayURL(ctx, *h)
	case models.PaymentStripe:
		link, err = a.api.StripeURL(ctx, *h)
	default:
		fmt.Fprintln(a.out, "Pay at the clinic reception.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Open this link to pay:\n%s\n", link)
	return nil
}

func runBookings(ctx context.Context, a *app, args []string) error {
	fs := flags("bookings")
	status := fs.String("status", "", "only bookings in this status")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.MyBookings(ctx, *status, *page, *limit)
	if err != nil {
		return err
	}
	return a.print(res)
}

func bookingArg(ctx context.Context, a *app, args []string, usage string) (*models.BookingView, []string, error) {
	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		return nil, nil, errors.New(usage)
	}
	b, err := a.api.Booking(ctx, args[0])
	return b, args[1:], err
}

func runBooking(ctx context.Context, a *app, args []string) error {
	b, _, err := bookingArg(ctx, a, args, "usage: booking <booking-id>")
	if err != nil {
		return err
	}
	return a.print(struct {
		*models.BookingView
		CanRefund bool `json:"can_refund"`
		CanDelete bool `json:"can_delete"`
	}{b, b.CanRequestRefund(), b.CanDelete()})
}

func runChange(ctx context.Context, a *app, args []string) error {
	b, rest, err := bookingArg(ctx, a, args, "usage: change <booking-id> --schedule <id>")
	if err != nil {
		return err
	}
	fs := flags("change")
	scheduleID := fs.String("schedule", "", "new schedule id")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	sc, err := a.api.Schedule(ctx, *scheduleID)
	if err != nil {
		return err
	}
	out, err := a.api.ChangeSchedule(ctx, b.Booking, *sc)
	if err != nil {
		return err
	}
	return a.print(out)
}

func runRefund(ctx context.Context, a *app, args []string) error {
	b, rest, err := bookingArg(ctx, a, args, "usage: refund <booking-id> --bank ... --account ... --holder ...")
	if err != nil {
		return err
	}
	fs := flags("refund")
	var req models.RefundRequest
	fs.StringVar(&req.BankName, "bank", "", "bank name")
	fs.StringVar(&req.AccountNumber, "account", "", "account number")
	fs.StringVar(&req.AccountHolder, "holder", "", "account holder")
	fs.StringVar(&req.Reason, "reason", "", "why you want a refund")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	out, err := a.api.RequestRefund(ctx, b.Booking, req)
	if err != nil {
		return err
	}
	return a.print(out)
}

func runCancel(ctx context.Context, a *app, args []string) error {
	b, _, err := bookingArg(ctx, a, args, "usage: cancel <booking-id>")
	if err != nil {
		return err
	}
	if err := a.api.DeleteBooking(ctx, b.Booking); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Booking deleted")
	return nil
}

func runPay(ctx context.Context, a *app, args []string) error {
	b, rest, err := bookingArg(ctx, a, args, "usage: pay <booking-id> [--method vnpay|stripe]")
	if err != nil {
		return err
	}
	fs := flags("pay")
	method := fs.String("method", models.PaymentVNPay, "vnpay or stripe")
	if err := fs.Parse(rest); err != nil {
		return err
	}
	h := handoffFor(b)
	return printPaymentLink(ctx, a, *method, &h)
}

// handoffFor rebuilds the payment hand-off of an existing booking.
func handoffFor(b *models.BookingView) client.PaymentHandoff {
	h := client.PaymentHandoff{BookingID: b.ID, Amount: b.Amount, PaymentCode: b.PaymentCode}
	if b.Schedule != nil {
		h.Schedule = *b.Schedule
	}
	if b.Doctor != nil {
		h.Doctor = *b.Doctor
	}
	return h
}

func runContact(ctx context.Context, a *app, args []string) error {
	fs := flags("contact")
	var req models.ContactRequest
	fs.StringVar(&req.Fullname, "name", "", "full name")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.PhoneNumber, "phone", "", "phone number")
	fs.StringVar(&req.Subject, "subject", "", "subject")
	fs.StringVar(&req.Message, "message", "", "message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	msg, err := a.api.SubmitContact(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, msg)
	return nil
}

func runStats(ctx context.Context, a *app, _ []string) error {
	st, err := a.api.Stats(ctx)
	if err != nil {
		return err
	}
	return a.print(st)
}

func runAllBookings(ctx context.Context, a *app, args []string) error {
	fs := flags("all-bookings")
	status := fs.String("status", "", "only bookings in this status")
	search := fs.String("q", "", "patient name, email or phone")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.AllBookings(ctx, *status, *search, *page, *limit)
	if err != nil {
		return err
	}
	return a.print(res)
}

func runSetStatus(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: set-status <booking-id> --status <status> [--reason ...]")
	}
	fs := flags("set-status")
	var req models.BookingStatusRequest
	fs.StringVar(&req.Status, "status", "", `pending, paid, rejected, "Wait Refund" or refunded`)
	fs.StringVar(&req.Reason, "reason", "", "note stored on the booking")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	out, err := a.api.SetBookingStatus(ctx, args[0], req)
	if err != nil {
		return err
	}
	return a.print(out)
}

func runUploadImage(ctx context.Context, a *app, args []string) error {
	fs := flags("upload-image")
	doctorID := fs.String("doctor", "", "doctor id")
	specialtyID := fs.String("specialty", "", "specialty id")
	path := fs.String("file", "", "image file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (*doctorID == "") == (*specialtyID == "") {
		return errors.New("pass exactly one of --doctor or --specialty")
	}
	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	if *doctorID != "" {
		d, err := a.api.UploadDoctorImage(ctx, *doctorID, *path, f)
		if err != nil {
			return err
		}
		return a.print(d)
	}
	sp, err := a.api.UploadSpecialtyImage(ctx, *specialtyID, *path, f)
	if err != nil {
		return err
	}
	return a.print(sp)
}

func runMySchedules(ctx context.Context, a *app, args []string) error {
	fs := flags("my-schedules")
	date := fs.String("date", "", "YYYY-MM-DD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	rows, err := a.api.DoctorSchedules(ctx, *date)
	if err != nil {
		return err
	}
	return a.print(rows)
}

func runMyBookings(ctx context.Context, a *app, args []string) error {
	fs := flags("my-bookings")
	status := fs.String("status", "", "only bookings in this status")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 10, "rows per page")
	if err := fs.Parse(args); err != nil {
		return err
	}
	res, err := a.api.DoctorBookings(ctx, *status, *page, *limit)
	if err != nil {
		return err
	}
	return a.print(res)
}
