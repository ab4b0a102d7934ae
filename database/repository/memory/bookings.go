package memory

import (
	"context"
	"sort"
	"time"

	"medbook/database/repository"
	"medbook/models"
)

type bookingStore struct{ *Store }

func (s bookingStore) Create(_ context.Context, b *models.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[b.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = now
	s.bookings[b.ID] = *b
	return nil
}

func (s bookingStore) GetByID(_ context.Context, id string) (*models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &b, nil
}

func (s bookingStore) List(_ context.Context, f models.BookingFilter, page, limit int) ([]models.Booking, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Booking{}
	for _, b := range s.bookings {
		if f.UserID != "" {
			if b.UserID != f.UserID {
				continue
			}
		} else if f.UserIDs != nil && !inSet(f.UserIDs, b.UserID) {
			continue
		}
		if f.ScheduleIDs != nil && !inSet(f.ScheduleIDs, b.ScheduleID) {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		matched = append(matched, b)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return window(matched, page, limit), int64(len(matched)), nil
}

func (s bookingStore) UpdateIfStatus(_ context.Context, b *models.Booking, expected string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[b.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Status != expected {
		return repository.ErrConflict
	}
	b.UpdatedAt = time.Now()
	s.bookings[b.ID] = *b
	return nil
}

func (s bookingStore) DeleteIfStatus(_ context.Context, id, expected string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.bookings[id]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Status != expected {
		return repository.ErrConflict
	}
	delete(s.bookings, id)
	return nil
}

func (s bookingStore) CountByStatus(_ context.Context) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]int64{}
	for _, b := range s.bookings {
		out[b.Status]++
	}
	return out, nil
}

func (s bookingStore) Revenue(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, b := range s.bookings {
		if b.Status == models.BookingPaid {
			total += b.Amount
		}
	}
	return total, nil
}

type contactStore struct{ *Store }

func (s contactStore) Create(_ context.Context, m *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	s.contacts = append(s.contacts, *m)
	return nil
}

func (s contactStore) List(_ context.Context, page, limit int) ([]models.ContactMessage, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ContactMessage, len(s.contacts))
	// Newest first.
	for i, m := range s.contacts {
		out[len(out)-1-i] = m
	}
	return window(out, page, limit), int64(len(out)), nil
}
