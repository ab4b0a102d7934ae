package models

import "time"

// Roles. The numeric ids are what the login form posts as role_id.
const (
	RoleAdmin   = "admin"
	RoleDoctor  = "doctor"
	RolePatient = "patient"
)

var roleIDs = map[int]string{
	1: RoleAdmin,
	2: RoleDoctor,
	3: RolePatient,
}

// RoleFromID maps a login role_id to a role name.
func RoleFromID(id int) (string, bool) {
	r, ok := roleIDs[id]
	return r, ok
}

// RoleID is the inverse of RoleFromID.
func RoleID(role string) int {
	for id, r := range roleIDs {
		if r == role {
			return id
		}
	}
	return 0
}

// User is a platform account. Doctors and admins are users with a different role.
type User struct {
	ID           string    `bson:"id" json:"id"`
	Fullname     string    `bson:"fullname" json:"fullname"`
	Email        string    `bson:"email" json:"email"`
	PhoneNumber  string    `bson:"phone_number" json:"phone_number"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Role         string    `bson:"role" json:"role"`
	Gender       string    `bson:"gender,omitempty" json:"gender,omitempty"`
	DateOfBirth  string    `bson:"date_of_birth,omitempty" json:"date_of_birth,omitempty"`
	Address      string    `bson:"address,omitempty" json:"address,omitempty"`
	Avatar       string    `bson:"avatar,omitempty" json:"avatar,omitempty"`
	FCMToken     string    `bson:"fcm_token,omitempty" json:"-"`
	Active       bool      `bson:"active" json:"active"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// RegisterRequest is the public sign-up form.
type RegisterRequest struct {
	Fullname        string `json:"fullname" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phone_number" validate:"required,phone"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Gender          string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DateOfBirth     string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	Address         string `json:"address,omitempty" validate:"omitempty,max=255"`
}

// LoginRequest is the login form shared by patients, doctors and admins.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Password    string `json:"password" validate:"required"`
	RoleID      int    `json:"role_id" validate:"required,oneof=1 2 3"`
}

// LoginResponse carries the issued token and the account it belongs to.
type LoginResponse struct {
	Token  string      `json:"token"`
	Role   string      `json:"role"`
	User   User        `json:"user"`
	Doctor *DoctorView `json:"doctor,omitempty"`
}

// ProfileUpdateRequest updates the caller's own profile. Empty fields are left untouched.
type ProfileUpdateRequest struct {
	Fullname        string `json:"fullname,omitempty" validate:"omitempty,min=2,max=100"`
	Email           string `json:"email,omitempty" validate:"omitempty,email"`
	Gender          string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DateOfBirth     string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	Address         string `json:"address,omitempty" validate:"omitempty,max=255"`
	Avatar          string `json:"avatar,omitempty" validate:"omitempty,url"`
	FCMToken        string `json:"fcm_token,omitempty"`
	CurrentPassword string `json:"current_password,omitempty" validate:"required_with=Password"`
	Password        string `json:"password,omitempty" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"confirm_password,omitempty" validate:"eqfield=Password"`
}

// AdminUserRequest is used by the back office to create or edit any account.
type AdminUserRequest struct {
	Fullname    string `json:"fullname" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=6"`
	Role        string `json:"role" validate:"required,oneof=admin doctor patient"`
	Gender      string `json:"gender,omitempty" validate:"omitempty,oneof=male female other"`
	DateOfBirth string `json:"date_of_birth,omitempty" validate:"omitempty,date"`
	Address     string `json:"address,omitempty" validate:"omitempty,max=255"`
	Active      *bool  `json:"active,omitempty"`
}

// Profile is what the "whoami" endpoint returns.
type Profile struct {
	User   User        `json:"user"`
	Doctor *DoctorView `json:"doctor,omitempty"`
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID string
	Role   string
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
