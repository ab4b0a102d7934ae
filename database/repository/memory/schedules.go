package memory

import (
	"context"
	"sort"
	"time"

	"medbook/database/repository"
	"medbook/models"
)

type scheduleStore struct{ *Store }

func (s scheduleStore) Create(_ context.Context, sc *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.schedules[sc.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	sc.CreatedAt, sc.UpdatedAt = now, now
	s.schedules[sc.ID] = *sc
	return nil
}

func (s scheduleStore) Update(_ context.Context, sc *models.Schedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.schedules[sc.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if sc.BookingLimit < current.NumberBooked {
		return repository.ErrConflict
	}
	sc.NumberBooked = current.NumberBooked
	sc.CreatedAt = current.CreatedAt
	sc.UpdatedAt = time.Now()
	s.schedules[sc.ID] = *sc
	return nil
}

func (s scheduleStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.schedules[id]
	if !ok {
		return repository.ErrNotFound
	}
	if current.NumberBooked > 0 {
		return repository.ErrConflict
	}
	delete(s.schedules, id)
	return nil
}

func (s scheduleStore) GetByID(_ context.Context, id string) (*models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schedules[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sc, nil
}

func (s scheduleStore) GetByIDs(_ context.Context, ids []string) (map[string]models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Schedule, len(ids))
	for _, id := range ids {
		if sc, ok := s.schedules[id]; ok {
			out[id] = sc
		}
	}
	return out, nil
}

func (s scheduleStore) List(_ context.Context, filter models.ScheduleFilter) ([]models.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Schedule{}
	for _, sc := range s.schedules {
		if filter.DoctorID != "" {
			if sc.DoctorID != filter.DoctorID {
				continue
			}
		} else if filter.DoctorIDs != nil && !inSet(filter.DoctorIDs, sc.DoctorID) {
			continue
		}
		if filter.DateSchedule != "" && sc.DateSchedule != filter.DateSchedule {
			continue
		}
		if filter.ActiveOnly && !sc.Active {
			continue
		}
		out = append(out, sc)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DateSchedule != out[j].DateSchedule {
			return out[i].DateSchedule < out[j].DateSchedule
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

func (s scheduleStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.schedules)), nil
}

func (s scheduleStore) ReserveSeat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.schedules[id]
	if !ok {
		return repository.ErrNotFound
	}
	if !sc.Active || !sc.HasSeat() {
		return repository.ErrScheduleFull
	}
	sc.NumberBooked++
	sc.UpdatedAt = time.Now()
	s.schedules[id] = sc
	return nil
}

func (s scheduleStore) ReleaseSeat(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.schedules[id]
	if !ok || sc.NumberBooked == 0 {
		return nil
	}
	sc.NumberBooked--
	sc.UpdatedAt = time.Now()
	s.schedules[id] = sc
	return nil
}
