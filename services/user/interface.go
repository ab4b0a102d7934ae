package user

import (
	"context"
	"time"

	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/utils"
)

type UserService interface {
	// Authentication
	Register(ctx context.Context, req models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error

	// Own profile
	Me(ctx context.Context, userID string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.User, error)

	// Admin
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	ListUsers(ctx context.Context, filter userRepo.UserFilter, page, limit int) (utils.Page[models.User], error)
	CreateUser(ctx context.Context, req models.AdminUserRequest) (*models.User, error)
	UpdateUser(ctx context.Context, userID string, req models.AdminUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, actorID, userID string) error
	SeedAdmin(ctx context.Context, phone, password string) error
}

// DoctorProfiles resolves the doctor profile attached to a user account.
type DoctorProfiles interface {
	DoctorByUserID(ctx context.Context, userID string) (*models.DoctorView, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Doctors  DoctorProfiles
	Tokens   *utils.TokenIssuer
	DenyList *utils.TokenDenyList
}
