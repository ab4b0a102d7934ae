package memory

import (
	"context"
	"sort"
	"time"

	"medbook/database/repository"
	"medbook/models"
)

type specialtyStore struct{ *Store }

func (s specialtyStore) Create(_ context.Context, sp *models.Specialty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.specialties {
		if existing.ID == sp.ID || existing.Name == sp.Name {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	sp.CreatedAt, sp.UpdatedAt = now, now
	s.specialties[sp.ID] = *sp
	return nil
}

func (s specialtyStore) Update(_ context.Context, sp *models.Specialty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.specialties[sp.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range s.specialties {
		if existing.ID != sp.ID && existing.Name == sp.Name {
			return repository.ErrDuplicate
		}
	}
	sp.UpdatedAt = time.Now()
	s.specialties[sp.ID] = *sp
	return nil
}

func (s specialtyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.specialties[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.specialties, id)
	return nil
}

func (s specialtyStore) GetByID(_ context.Context, id string) (*models.Specialty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sp, ok := s.specialties[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &sp, nil
}

func (s specialtyStore) List(_ context.Context) ([]models.Specialty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Specialty, 0, len(s.specialties))
	for _, sp := range s.specialties {
		out = append(out, sp)
	}
	sortByName(out, func(sp models.Specialty) string { return sp.Name })
	return out, nil
}

func (s specialtyStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.specialties)), nil
}

type clinicStore struct{ *Store }

func (s clinicStore) Create(_ context.Context, c *models.Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clinics[c.ID]; ok {
		return repository.ErrDuplicate
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	s.clinics[c.ID] = *c
	return nil
}

func (s clinicStore) Update(_ context.Context, c *models.Clinic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clinics[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	s.clinics[c.ID] = *c
	return nil
}

func (s clinicStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clinics[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.clinics, id)
	return nil
}

func (s clinicStore) GetByID(_ context.Context, id string) (*models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clinics[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (s clinicStore) List(_ context.Context, specialtyID string) ([]models.Clinic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Clinic{}
	for _, c := range s.clinics {
		if specialtyID == "" || c.SpecialtyID == specialtyID {
			out = append(out, c)
		}
	}
	sortByName(out, func(c models.Clinic) string { return c.Name })
	return out, nil
}

func (s clinicStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.clinics)), nil
}

type doctorStore struct{ *Store }

func (s doctorStore) Create(_ context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.doctors {
		if existing.ID == d.ID || existing.UserID == d.UserID {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	d.CreatedAt, d.UpdatedAt = now, now
	s.doctors[d.ID] = *d
	return nil
}

func (s doctorStore) Update(_ context.Context, d *models.Doctor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[d.ID]; !ok {
		return repository.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	s.doctors[d.ID] = *d
	return nil
}

func (s doctorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.doctors, id)
	return nil
}

func (s doctorStore) GetByID(_ context.Context, id string) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &d, nil
}

func (s doctorStore) GetByUserID(_ context.Context, userID string) (*models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.doctors {
		if d.UserID == userID {
			return &d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s doctorStore) GetByIDs(_ context.Context, ids []string) (map[string]models.Doctor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.Doctor, len(ids))
	for _, id := range ids {
		if d, ok := s.doctors[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (s doctorStore) List(_ context.Context, filter models.DoctorFilter, page, limit int) ([]models.Doctor, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := []models.Doctor{}
	for _, d := range s.doctors {
		if filter.SpecialtyID != "" && d.SpecialtyID != filter.SpecialtyID {
			continue
		}
		if filter.ClinicID != "" && d.ClinicID != filter.ClinicID {
			continue
		}
		if filter.ActiveOnly && !d.Active {
			continue
		}
		if filter.Query != "" && !containsFold(s.users[d.UserID].Fullname, filter.Query) {
			continue
		}
		matched = append(matched, d)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return window(matched, page, limit), int64(len(matched)), nil
}

func (s doctorStore) IDsBySpecialty(_ context.Context, specialtyID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	for _, d := range s.doctors {
		if d.SpecialtyID == specialtyID {
			ids = append(ids, d.ID)
		}
	}
	return ids, nil
}

func (s doctorStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.doctors)), nil
}
