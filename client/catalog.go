package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"medbook/models"
	"medbook/utils"
)

func (c *Client) Specialties(ctx context.Context) ([]models.Specialty, error) {
	var rows []models.Specialty
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/specialties"}, &rows)
	return rows, err
}

func (c *Client) Specialty(ctx context.Context, id string) (*models.Specialty, error) {
	var sp models.Specialty
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/specialties/" + url.PathEscape(id)}, &sp); err != nil {
		return nil, err
	}
	return &sp, nil
}

func (c *Client) Clinics(ctx context.Context, specialtyID string) ([]models.Clinic, error) {
	q := url.Values{}
	if specialtyID != "" {
		q.Set("specialtyId", specialtyID)
	}
	var rows []models.Clinic
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/clinics", query: q}, &rows)
	return rows, err
}

// DoctorQuery filters the doctor directory.
type DoctorQuery struct {
	SpecialtyID string
	ClinicID    string
	Search      string
	Page        int
	Limit       int
}

func (c *Client) Doctors(ctx context.Context, dq DoctorQuery) (utils.Page[models.DoctorView], error) {
	q := url.Values{}
	setIf(q, "specialtyId", dq.SpecialtyID)
	setIf(q, "clinicId", dq.ClinicID)
	setIf(q, "q", dq.Search)
	setPage(q, dq.Page, dq.Limit)
	var page utils.Page[models.DoctorView]
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/doctors", query: q}, &page)
	return page, err
}

// Doctor fetches one doctor by id or "id-name" slug.
func (c *Client) Doctor(ctx context.Context, idOrSlug string) (*models.DoctorView, error) {
	var d models.DoctorView
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/doctors/" + url.PathEscape(idOrSlug)}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// ScheduleQuery filters schedules. Available keeps bookable ones only.
type ScheduleQuery struct {
	DoctorID     string
	SpecialtyID  string
	DateSchedule string
	Available    bool
}

func (c *Client) Schedules(ctx context.Context, sq ScheduleQuery) ([]models.Schedule, error) {
	q := url.Values{}
	setIf(q, "doctorId", sq.DoctorID)
	setIf(q, "specialtyId", sq.SpecialtyID)
	setIf(q, "dateSchedule", sq.DateSchedule)
	if sq.Available {
		q.Set("available", "true")
	}
	var rows []models.Schedule
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/schedules", query: q}, &rows)
	return rows, err
}

func setIf(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setPage(q url.Values, page, limit int) {
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
}

func (c *Client) Schedule(ctx context.Context, id string) (*models.Schedule, error) {
	var sc models.Schedule
	if _, err := c.do(ctx, request{method: http.MethodGet, path: "/schedules/" + url.PathEscape(id)}, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
