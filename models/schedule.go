package models

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Schedule is a bookable window for one doctor with a seat capacity.
type Schedule struct {
	ID           string    `bson:"id" json:"id"`
	DoctorID     string    `bson:"doctor_id" json:"doctor_id"`
	DateSchedule string    `bson:"date_schedule" json:"date_schedule"` // "2006-01-02"
	StartTime    string    `bson:"start_time" json:"start_time"`       // "15:04"
	EndTime      string    `bson:"end_time" json:"end_time"`           // "15:04"
	BookingLimit int       `bson:"booking_limit" json:"booking_limit"`
	NumberBooked int       `bson:"number_booked" json:"number_booked"`
	Price        int64     `bson:"price" json:"price"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// StartAt is the instant the schedule begins in loc.
func (s Schedule) StartAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, s.DateSchedule+" "+s.StartTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule start %q %q: %w", s.DateSchedule, s.StartTime, err)
	}
	return t, nil
}

// EndAt is the instant the schedule ends in loc.
func (s Schedule) EndAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+ClockLayout, s.DateSchedule+" "+s.EndTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid schedule end %q %q: %w", s.DateSchedule, s.EndTime, err)
	}
	return t, nil
}

// HasSeat reports whether at least one seat is left.
func (s Schedule) HasSeat() bool {
	return s.NumberBooked < s.BookingLimit
}

// Bookable is the one rule deciding whether a schedule can be offered:
// active, not full, and starting strictly after now.
func (s Schedule) Bookable(now time.Time, loc *time.Location) bool {
	if !s.Active || !s.HasSeat() {
		return false
	}
	start, err := s.StartAt(loc)
	if err != nil {
		return false
	}
	return start.After(now)
}

// Overlaps reports whether two schedules of the same doctor on the same day intersect.
func (s Schedule) Overlaps(o Schedule) bool {
	if s.DoctorID != o.DoctorID || s.DateSchedule != o.DateSchedule {
		return false
	}
	sStart, err1 := ClockMinutes(s.StartTime)
	sEnd, err2 := ClockMinutes(s.EndTime)
	oStart, err3 := ClockMinutes(o.StartTime)
	oEnd, err4 := ClockMinutes(o.EndTime)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		// Unreadable windows are treated as clashing.
		return true
	}
	return sStart < oEnd && oStart < sEnd
}

// ClockMinutes converts a strict "HH:MM" value into minutes after midnight.
func ClockMinutes(v string) (int, error) {
	if len(v) != 5 || v[2] != ':' {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	h, m := 0, 0
	for i, r := range v {
		if i == 2 {
			continue
		}
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid clock %q", v)
		}
		if i < 2 {
			h = h*10 + int(r-'0')
		} else {
			m = m*10 + int(r-'0')
		}
	}
	if h > 23 || m > 59 {
		return 0, fmt.Errorf("invalid clock %q", v)
	}
	return h*60 + m, nil
}

// ScheduleRequest creates or edits a schedule.
type ScheduleRequest struct {
	DoctorID     string `json:"doctor_id" validate:"required"`
	DateSchedule string `json:"date_schedule" validate:"required,date"`
	StartTime    string `json:"start_time" validate:"required,clock"`
	EndTime      string `json:"end_time" validate:"required,clock"`
	BookingLimit int    `json:"booking_limit" validate:"required,gte=1,lte=500"`
	Price        int64  `json:"price" validate:"gte=0"`
	Active       *bool  `json:"active,omitempty"`
}

// ScheduleFilter narrows a schedule listing. A nil DoctorIDs means no
// restriction; a non-nil empty slice matches nothing.
type ScheduleFilter struct {
	DoctorID     string
	DoctorIDs    []string
	DateSchedule string
	ActiveOnly   bool
}
