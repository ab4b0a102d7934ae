package models

import "time"

// ContactMessage is a message sent through the public contact form.
type ContactMessage struct {
	ID          string    `bson:"id" json:"id"`
	Fullname    string    `bson:"fullname" json:"fullname"`
	Email       string    `bson:"email" json:"email"`
	PhoneNumber string    `bson:"phone_number" json:"phone_number"`
	Subject     string    `bson:"subject,omitempty" json:"subject,omitempty"`
	Message     string    `bson:"message" json:"message"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

type ContactRequest struct {
	Fullname    string `json:"fullname" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	PhoneNumber string `json:"phone_number" validate:"required,phone"`
	Subject     string `json:"subject,omitempty" validate:"max=200"`
	Message     string `json:"message" validate:"required,max=5000"`
}
