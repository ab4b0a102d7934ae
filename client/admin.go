package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"medbook/models"
	"medbook/utils"
	"medbook/validation"
)

// Stats returns the admin dashboard counters.
func (c *Client) Stats(ctx context.Context) (*models.Stats, error) {
	var st models.Stats
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/admin/stats", role: models.RoleAdmin}, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// AllBookings lists every booking for the back office.
func (c *Client) AllBookings(ctx context.Context, status, search string, page, limit int) (utils.Page[models.BookingView], error) {
	q := url.Values{}
	setIf(q, "status", status)
	setIf(q, "q", search)
	setPage(q, page, limit)
	var res utils.Page[models.BookingView]
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/bookings", query: q, role: models.RoleAdmin}, &res)
	return res, err
}

// SetBookingStatus applies an admin status transition.
func (c *Client) SetBookingStatus(ctx context.Context, bookingID string, req models.BookingStatusRequest) (*models.BookingView, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var b models.BookingView
	path := "/bookings/" + url.PathEscape(bookingID) + "/status"
	if _, err := c.do(ctx, request{method: http.MethodPut, path: path, role: models.RoleAdmin, body: req}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

func (c *Client) CreateSpecialty(ctx context.Context, req models.SpecialtyRequest) (*models.Specialty, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var sp models.Specialty
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/specialties", role: models.RoleAdmin, body: req}, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (c *Client) CreateDoctor(ctx context.Context, req models.DoctorRequest) (*models.DoctorView, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var d models.DoctorView
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/doctors", role: models.RoleAdmin, body: req}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *Client) CreateSchedule(ctx context.Context, req models.ScheduleRequest) (*models.Schedule, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	var sc models.Schedule
	if _, err := c.do(ctx, request{method: http.MethodPost, path: "/schedules", role: models.RoleAdmin, body: req}, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

func (c *Client) Contacts(ctx context.Context, page, limit int) (utils.Page[models.ContactMessage], error) {
	q := url.Values{}
	setPage(q, page, limit)
	var res utils.Page[models.ContactMessage]
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/contacts", query: q, role: models.RoleAdmin}, &res)
	return res, err
}

// UploadDoctorImage sends an image as the doctor's picture.
func (c *Client) UploadDoctorImage(ctx context.Context, doctorID, filename string, file io.Reader) (*models.DoctorView, error) {
	var d models.DoctorView
	if err := c.upload(ctx, "/images/uploads", url.Values{"doctorId": {doctorID}}, filename, file, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UploadSpecialtyImage sends an image as the specialty's picture.
func (c *Client) UploadSpecialtyImage(ctx context.Context, specialtyID, filename string, file io.Reader) (*models.Specialty, error) {
	var sp models.Specialty
	if err := c.upload(ctx, "/images/specialty-upload", url.Values{"specialtyId": {specialtyID}}, filename, file, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

var imageTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

func (c *Client) upload(ctx context.Context, path string, q url.Values, filename string, file io.Reader, out any) error {
	ctype, ok := imageTypes[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return fmt.Errorf("unsupported image type %q", filepath.Ext(filename))
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", ctype)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, file); err != nil {
		return err
	}
	if err := mw.Close(); err != nil {
		return err
	}
	_, err = c.do(ctx, request{
		method: http.MethodPost,
		path:   path,
		query:  q,
		role:   models.RoleAdmin,
		raw:    &buf,
		ctype:  mw.FormDataContentType(),
	}, out)
	return err
}

// DoctorSchedules lists the logged-in doctor's schedules, optionally on one date.
func (c *Client) DoctorSchedules(ctx context.Context, date string) ([]models.Schedule, error) {
	q := url.Values{}
	setIf(q, "date", date)
	var rows []models.Schedule
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/doctors/me/schedules", query: q, role: models.RoleDoctor}, &rows)
	return rows, err
}

// DoctorBookings lists bookings on the logged-in doctor's schedules.
func (c *Client) DoctorBookings(ctx context.Context, status string, page, limit int) (utils.Page[models.BookingView], error) {
	q := url.Values{}
	setIf(q, "status", status)
	setPage(q, page, limit)
	var res utils.Page[models.BookingView]
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/doctors/me/bookings", query: q, role: models.RoleDoctor}, &res)
	return res, err
}
