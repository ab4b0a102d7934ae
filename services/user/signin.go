package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = utils.NewAppError(utils.CodeUnauthorized, "Invalid phone number or password")

// Login checks the credentials and that the account holds the role picked on
// the login form, then issues a token.
func (s *DefaultUserService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	role, ok := models.RoleFromID(req.RoleID)
	if !ok {
		return nil, utils.NewAppError(utils.CodeInvalid, "Unknown role")
	}

	user, err := s.Repo.GetByPhone(ctx, req.PhoneNumber)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, errBadCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user for authentication: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errBadCredentials
	}
	if user.Role != role {
		utils.GetLogger().Info("Login with mismatched role",
			zap.String("userId", user.ID), zap.String("wanted", role), zap.String("actual", user.Role))
		return nil, utils.NewAppError(utils.CodeForbidden, "This account cannot sign in with the selected role")
	}
	if !user.Active {
		return nil, utils.NewAppError(utils.CodeForbidden, "This account has been disabled")
	}

	token, _, err := s.Tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate auth token: %w", err)
	}

	resp := &models.LoginResponse{Token: token, Role: user.Role, User: *user}
	if user.Role == models.RoleDoctor && s.Doctors != nil {
		doc, err := s.Doctors.DoctorByUserID(ctx, user.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("failed to load doctor profile: %w", err)
		}
		resp.Doctor = doc
	}
	return resp, nil
}

// Logout puts the token on the deny list until it expires.
func (s *DefaultUserService) Logout(ctx context.Context, token string, expiresAt time.Time) error {
	if s.DenyList == nil {
		return nil
	}
	if err := s.DenyList.Revoke(ctx, token, expiresAt); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}
