// Package memory holds map-backed implementations of every repository,
// used when STORAGE_DRIVER=memory and by the tests.
package memory

import (
	"sort"
	"strings"
	"sync"

	bookingRepo "medbook/database/repository/booking"
	catalogRepo "medbook/database/repository/catalog"
	contactRepo "medbook/database/repository/contact"
	scheduleRepo "medbook/database/repository/schedule"
	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/utils"
)

// Store keeps every collection behind one lock so that cross-collection
// reads (doctor search by user name) see a consistent snapshot.
type Store struct {
	mu          sync.RWMutex
	users       map[string]models.User
	specialties map[string]models.Specialty
	clinics     map[string]models.Clinic
	doctors     map[string]models.Doctor
	schedules   map[string]models.Schedule
	bookings    map[string]models.Booking
	contacts    []models.ContactMessage
}

func NewStore() *Store {
	return &Store{
		users:       map[string]models.User{},
		specialties: map[string]models.Specialty{},
		clinics:     map[string]models.Clinic{},
		doctors:     map[string]models.Doctor{},
		schedules:   map[string]models.Schedule{},
		bookings:    map[string]models.Booking{},
	}
}

func (s *Store) Users() userRepo.UserRepository { return userStore{s} }
func (s *Store) Specialties() catalogRepo.SpecialtyRepository { return specialtyStore{s} }
func (s *Store) Clinics() catalogRepo.ClinicRepository { return clinicStore{s} }
func (s *Store) Doctors() catalogRepo.DoctorRepository { return doctorStore{s} }
func (s *Store) Schedules() scheduleRepo.ScheduleRepository { return scheduleStore{s} }
func (s *Store) Bookings() bookingRepo.BookingRepository { return bookingStore{s} }
func (s *Store) Contacts() contactRepo.ContactRepository { return contactStore{s} }

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func inSet(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// window slices sorted items for a 1-based page; limit <= 0 keeps everything.
func window[T any](items []T, page, limit int) []T {
	if limit <= 0 {
		return items
	}
	start := utils.Offset(page, limit)
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func sortByName[T any](items []T, name func(T) string) {
	sort.SliceStable(items, func(i, j int) bool { return name(items[i]) < name(items[j]) })
}
