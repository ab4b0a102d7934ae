package catalog

import (
	"context"
	"time"

	catalogRepo "medbook/database/repository/catalog"
	scheduleRepo "medbook/database/repository/schedule"
	userRepo "medbook/database/repository/user"
	"medbook/models"
	"medbook/utils"
)

// CatalogService manages the browsable directory: specialties, clinics and doctors.
type CatalogService interface {
	// Specialties
	ListSpecialties(ctx context.Context) ([]models.Specialty, error)
	GetSpecialty(ctx context.Context, id string) (*models.Specialty, error)
	CreateSpecialty(ctx context.Context, req models.SpecialtyRequest) (*models.Specialty, error)
	UpdateSpecialty(ctx context.Context, id string, req models.SpecialtyRequest) (*models.Specialty, error)
	DeleteSpecialty(ctx context.Context, id string) error
	SetSpecialtyImage(ctx context.Context, id, url string) (*models.Specialty, error)

	// Clinics
	ListClinics(ctx context.Context, specialtyID string) ([]models.Clinic, error)
	GetClinic(ctx context.Context, id string) (*models.Clinic, error)
	CreateClinic(ctx context.Context, req models.ClinicRequest) (*models.Clinic, error)
	UpdateClinic(ctx context.Context, id string, req models.ClinicRequest) (*models.Clinic, error)
	DeleteClinic(ctx context.Context, id string) error

	// Doctors
	ListDoctors(ctx context.Context, filter models.DoctorFilter, page, limit int) (utils.Page[models.DoctorView], error)
	GetDoctor(ctx context.Context, idOrSlug string) (*models.DoctorView, error)
	DoctorByUserID(ctx context.Context, userID string) (*models.DoctorView, error)
	DoctorViews(ctx context.Context, doctors []models.Doctor) ([]models.DoctorView, error)
	CreateDoctor(ctx context.Context, req models.DoctorRequest) (*models.DoctorView, error)
	UpdateDoctor(ctx context.Context, id string, req models.DoctorRequest) (*models.DoctorView, error)
	DeleteDoctor(ctx context.Context, id string) error
	SetDoctorImage(ctx context.Context, id, url string) (*models.DoctorView, error)
}

// specialtyCacheKey holds the cached specialty list.
const specialtyCacheKey = "specialties:all"

// SpecialtyCacheTTL bounds how stale the cached specialty list can be.
const SpecialtyCacheTTL = 5 * time.Minute

type DefaultCatalogService struct {
	Specialties catalogRepo.SpecialtyRepository
	Clinics     catalogRepo.ClinicRepository
	Doctors     catalogRepo.DoctorRepository
	Users       userRepo.UserRepository
	Schedules   scheduleRepo.ScheduleRepository
	Cache       utils.Cache
}
