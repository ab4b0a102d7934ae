package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Register creates a patient account from a validated sign-up form.
func (s *DefaultUserService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.New().String(),
		Fullname:     strings.TrimSpace(req.Fullname),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Role:         models.RolePatient,
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		Address:      req.Address,
		Active:       true,
	}
	if err := s.Repo.Create(ctx, &user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewAppError(utils.CodeConflict, "Phone number or email is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	utils.GetLogger().Info("Registered patient", zap.String("userId", user.ID))
	return &user, nil
}

// SeedAdmin creates the first admin account when none uses the phone yet.
func (s *DefaultUserService) SeedAdmin(ctx context.Context, phone, password string) error {
	if phone == "" || password == "" {
		return nil
	}
	if _, err := s.Repo.GetByPhone(ctx, phone); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := models.User{
		ID:           uuid.New().String(),
		Fullname:     "Administrator",
		Email:        "admin@medbook.local",
		PhoneNumber:  phone,
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		Active:       true,
	}
	if err := s.Repo.Create(ctx, &admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	utils.GetLogger().Info("Seeded admin account", zap.String("phone", phone))
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
