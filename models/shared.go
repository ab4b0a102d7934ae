package models

// BookingTaskPayload is the body of the asynq booking tasks.
type BookingTaskPayload struct {
	BookingID  string `json:"bookingId"`
	ScheduleID string `json:"scheduleId,omitempty"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	Users         int64            `json:"users"`
	Doctors       int64            `json:"doctors"`
	Specialties   int64            `json:"specialties"`
	Clinics       int64            `json:"clinics"`
	Schedules     int64            `json:"schedules"`
	Bookings      int64            `json:"bookings"`
	BookingStatus map[string]int64 `json:"booking_status"`
	Revenue       int64            `json:"revenue"`
}
