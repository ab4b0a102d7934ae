package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/utils"

	"github.com/google/uuid"
)

// GetUserByID returns a user or a not_found AppError.
func (s *DefaultUserService) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *DefaultUserService) ListUsers(ctx context.Context, filter userRepo.UserFilter, page, limit int) (utils.Page[models.User], error) {
	users, err := s.Repo.List(ctx, filter)
	if err != nil {
		return utils.Page[models.User]{}, fmt.Errorf("failed to fetch users: %w", err)
	}
	return utils.Paginate(users, page, limit, nil), nil
}

func (s *DefaultUserService) CreateUser(ctx context.Context, req models.AdminUserRequest) (*models.User, error) {
	if req.Password == "" {
		return nil, utils.NewAppError(utils.CodeInvalid, "Password is required")
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		PasswordHash: hash,
		Active:       true,
	}
	applyAdminFields(&user, req)

	if err := s.Repo.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewAppError(utils.CodeConflict, "Phone number or email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *DefaultUserService) UpdateUser(ctx context.Context, userID string, req models.AdminUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Role != req.Role && (user.Role == models.RoleDoctor || req.Role == models.RoleDoctor) {
		return nil, utils.NewAppError(utils.CodeInvalid, "Doctor accounts are managed from the doctor screens")
	}

	applyAdminFields(user, req)
	if req.Password != "" {
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

// DeleteUser removes an account. Admins cannot delete themselves, and doctor
// accounts go through doctor deletion so their schedules are checked.
func (s *DefaultUserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return utils.NewAppError(utils.CodeInvalid, "You cannot delete your own account")
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == models.RoleDoctor {
		return utils.NewAppError(utils.CodeConflict, "Delete the doctor profile instead")
	}
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user with id %s: %w", userID, err)
	}
	return nil
}

func applyAdminFields(user *models.User, req models.AdminUserRequest) {
	user.Fullname = strings.TrimSpace(req.Fullname)
	user.Email = strings.ToLower(strings.TrimSpace(req.Email))
	user.PhoneNumber = req.PhoneNumber
	user.Role = req.Role
	user.Gender = req.Gender
	user.DateOfBirth = req.DateOfBirth
	user.Address = req.Address
	if req.Active != nil {
		user.Active = *req.Active
	}
}
