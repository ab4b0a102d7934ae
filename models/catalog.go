package models

import "time"

// Specialty is a medical department grouping doctors and clinics.
type Specialty struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description" json:"description"` // sanitized HTML
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type SpecialtyRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=120"`
	Description string `json:"description" validate:"max=20000"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
}

// Clinic is a physical location where doctors hold their schedules.
type Clinic struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Address     string    `bson:"address" json:"address"`
	PhoneNumber string    `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Image       string    `bson:"image,omitempty" json:"image,omitempty"`
	SpecialtyID string    `bson:"specialty_id,omitempty" json:"specialty_id,omitempty"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type ClinicRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=160"`
	Address     string `json:"address" validate:"required,max=255"`
	PhoneNumber string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	Description string `json:"description,omitempty" validate:"max=5000"`
	Image       string `json:"image,omitempty" validate:"omitempty,url"`
	SpecialtyID string `json:"specialty_id,omitempty"`
}

// Doctor is the professional profile attached to a user with the doctor role.
type Doctor struct {
	ID              string    `bson:"id" json:"id"`
	UserID          string    `bson:"user_id" json:"user_id"`
	SpecialtyID     string    `bson:"specialty_id" json:"specialty_id"`
	ClinicID        string    `bson:"clinic_id,omitempty" json:"clinic_id,omitempty"`
	Description     string    `bson:"description,omitempty" json:"description,omitempty"`
	ExperienceYears int       `bson:"experience_years" json:"experience_years"`
	Price           int64     `bson:"price" json:"price"`
	Image           string    `bson:"image,omitempty" json:"image,omitempty"`
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updated_at"`
}

// DoctorView is a doctor with its user, specialty and clinic resolved.
type DoctorView struct {
	Doctor
	User      *User      `json:"user,omitempty"`
	Specialty *Specialty `json:"specialty,omitempty"`
	Clinic    *Clinic    `json:"clinic,omitempty"`
}

// DoctorRequest creates or replaces a doctor account and profile in one
// call. An empty password keeps the current one.
type DoctorRequest struct {
	Fullname        string `json:"fullname" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	SpecialtyID     string `json:"specialty_id" validate:"required"`
	ClinicID        string `json:"clinic_id,omitempty"`
	Description     string `json:"description,omitempty" validate:"max=5000"`
	ExperienceYears int    `json:"experience_years" validate:"gte=0,lte=80"`
	Price           int64  `json:"price" validate:"gte=0"`
	Active          *bool  `json:"active,omitempty"`
}

// DoctorFilter narrows a doctor listing.
type DoctorFilter struct {
	SpecialtyID string
	ClinicID    string
	Query       string
	ActiveOnly  bool
}
