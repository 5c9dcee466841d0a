package models

import (
	"time"
)

type VerificationStatus string

const (
	VerificationPending          VerificationStatus = "PENDING"
	VerificationApproved         VerificationStatus = "APPROVED"
	VerificationRejected         VerificationStatus = "REJECTED"
	VerificationMoreInfoRequired VerificationStatus = "MORE_INFO_REQUIRED"
)

// DoctorProfile is keyed by the owning user's id (1:1 with a User of
// role DOCTOR).
type DoctorProfile struct {
	UserID             string             `json:"user_id" gorm:"primaryKey"`
	Specialty          string             `json:"specialty"`
	LicenseNumber      string             `json:"license_number"`
	YearsOfExperience  int                `json:"years_of_experience"`
	Bio                string             `json:"bio"`
	VerificationStatus VerificationStatus `json:"verification_status"`
	VerificationNotes  string             `json:"verification_notes"`
	Location           string             `json:"location"`
	Languages          StringList         `json:"languages" gorm:"type:jsonb"`
	ConsultationFee    float64            `json:"consultation_fee"`
	DocumentURLs       StringList         `json:"document_urls" gorm:"type:jsonb"`
	WeeklySchedule     WeeklySchedule     `json:"weekly_schedule,omitempty" gorm:"type:jsonb"`
	BlockedDates       StringList         `json:"blocked_dates,omitempty" gorm:"type:jsonb"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}
