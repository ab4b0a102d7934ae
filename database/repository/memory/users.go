package memory

import (
	"context"
	"sort"
	"time"

	"medbook/database/repository"
	userRepo "medbook/database/repository/user"
	"medbook/models"
)

type userStore struct{ *Store }

func (s userStore) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.ID == u.ID || existing.PhoneNumber == u.PhoneNumber || (u.Email != "" && existing.Email == u.Email) {
			return repository.ErrDuplicate
		}
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s userStore) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, existing := range s.users {
		if existing.ID != u.ID && (existing.PhoneNumber == u.PhoneNumber || (u.Email != "" && existing.Email == u.Email)) {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = time.Now()
	s.users[u.ID] = *u
	return nil
}

func (s userStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.users, id)
	return nil
}

func (s userStore) GetByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s userStore) GetByPhone(_ context.Context, phone string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.PhoneNumber == phone {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s userStore) GetByIDs(_ context.Context, ids []string) (map[string]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.User, len(ids))
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func (s userStore) List(_ context.Context, filter userRepo.UserFilter) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.User{}
	for _, u := range s.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Query != "" && !containsFold(u.Fullname, filter.Query) &&
			!containsFold(u.Email, filter.Query) && !containsFold(u.PhoneNumber, filter.Query) {
			continue
		}
		out = append(out, u)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s userStore) Count(_ context.Context, role string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int64
	for _, u := range s.users {
		if role == "" || u.Role == role {
			n++
		}
	}
	return n, nil
}
