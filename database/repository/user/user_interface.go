package userRepo

import (
	"context"

	"medbook/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user; a taken phone or email yields repository.ErrDuplicate.
	Create(ctx context.Context, user *models.User) error
	// Update replaces an existing user record.
	Update(ctx context.Context, user *models.User) error
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByPhone retrieves a user by phone number (the login identifier).
	GetByPhone(ctx context.Context, phone string) (*models.User, error)
	// GetByIDs retrieves several users keyed by ID; unknown IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
	// List returns users matching the filter, newest first.
	List(ctx context.Context, filter UserFilter) ([]models.User, error)
	// Count returns the number of users with role, or all users when role is empty.
	Count(ctx context.Context, role string) (int64, error)
}

// UserFilter holds parameters for a user listing.
type UserFilter struct {
	Role  string // exact role, empty for any
	Query string // case-insensitive match on name, email or phone
}
