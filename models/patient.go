package models

import (
	"time"
)

// PatientProfile is keyed by the owning user's id (1:1 with a User of
// role PATIENT). All medical fields are optional.
type PatientProfile struct {
	UserID         string    `json:"user_id" gorm:"primaryKey"`
	DateOfBirth    string    `json:"date_of_birth,omitempty"` // "YYYY-MM-DD"
	Gender         string    `json:"gender,omitempty"`
	BloodType      string    `json:"blood_type,omitempty"`
	MedicalHistory string    `json:"medical_history,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
