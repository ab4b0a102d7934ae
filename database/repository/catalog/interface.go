// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"

	"medbook/models"
)

// SpecialtyRepository stores medical specialties.
type SpecialtyRepository interface {
	Create(ctx context.Context, s *models.Specialty) error
	Update(ctx context.Context, s *models.Specialty) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Specialty, error)
	List(ctx context.Context) ([]models.Specialty, error)
	Count(ctx context.Context) (int64, error)
}

// ClinicRepository stores clinics.
type ClinicRepository interface {
	Create(ctx context.Context, c *models.Clinic) error
	Update(ctx context.Context, c *models.Clinic) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Clinic, error)
	List(ctx context.Context, specialtyID string) ([]models.Clinic, error)
	Count(ctx context.Context) (int64, error)
}

// DoctorRepository stores doctor profiles.
type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	Update(ctx context.Context, d *models.Doctor) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Doctor, error)
	GetByUserID(ctx context.Context, userID string) (*models.Doctor, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]models.Doctor, error)
	// List returns one page of matching doctors and the total match count.
	List(ctx context.Context, filter models.DoctorFilter, page, limit int) ([]models.Doctor, int64, error)
	// IDsBySpecialty returns the ids of every doctor in a specialty.
	IDsBySpecialty(ctx context.Context, specialtyID string) ([]string, error)
	Count(ctx context.Context) (int64, error)
}
