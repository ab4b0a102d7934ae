package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"golang.org/x/crypto/bcrypt"
)

// Me returns the caller's account and, for doctors, their profile.
func (s *DefaultUserService) Me(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile := &models.Profile{User: *user}
	if user.Role == models.RoleDoctor && s.Doctors != nil {
		doc, err := s.Doctors.DoctorByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load doctor profile: %w", err)
		}
		profile.Doctor = doc
	}
	return profile, nil
}

// UpdateProfile merges the non-empty fields of req into the caller's record.
// A password change requires the current password.
func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Fullname != "" {
		user.Fullname = strings.TrimSpace(req.Fullname)
	}
	if req.Email != "" {
		user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.DateOfBirth != "" {
		user.DateOfBirth = req.DateOfBirth
	}
	if req.Address != "" {
		user.Address = req.Address
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.FCMToken != "" {
		user.FCMToken = req.FCMToken
	}

	if req.Password != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
			return nil, utils.NewAppError(utils.CodeInvalid, "Current password is incorrect")
		}
		hash, err := hashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}

	if err := s.save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *DefaultUserService) save(ctx context.Context, user *models.User) error {
	err := s.Repo.Update(ctx, user)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrDuplicate):
		return utils.NewAppError(utils.CodeConflict, "Phone number or email is already registered")
	case errors.Is(err, repository.ErrNotFound):
		return utils.NewAppError(utils.CodeNotFound, "User not found")
	default:
		return fmt.Errorf("failed to update user: %w", err)
	}
}
