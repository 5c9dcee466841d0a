package models

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	StatusPending            AppointmentStatus = "PENDING"
	StatusConfirmed          AppointmentStatus = "CONFIRMED"
	StatusScheduled          AppointmentStatus = "SCHEDULED"
	StatusCancelled          AppointmentStatus = "CANCELLED"
	StatusCancelledByPatient AppointmentStatus = "CANCELLED_BY_PATIENT"
	StatusCancelledByDoctor  AppointmentStatus = "CANCELLED_BY_DOCTOR"
	StatusCompleted          AppointmentStatus = "COMPLETED"
	StatusNoShow             AppointmentStatus = "NO_SHOW"
	StatusRescheduled        AppointmentStatus = "RESCHEDULED"
)

// Cancelled reports whether s is any of the cancellation variants.
func (s AppointmentStatus) Cancelled() bool {
	switch s {
	case StatusCancelled, StatusCancelledByPatient, StatusCancelledByDoctor:
		return true
	}
	return false
}

type AppointmentType string

const (
	TypeInPerson AppointmentType = "In-person"
	TypeVideo    AppointmentType = "Video"
)

type Appointment struct {
	ID              string            `json:"id" gorm:"primaryKey"`
	PatientID       string            `json:"patient_id" gorm:"index"`
	DoctorID        string            `json:"doctor_id" gorm:"index"`
	AppointmentDate string            `json:"appointment_date"` // "YYYY-MM-DD"
	StartTime       string            `json:"start_time"`       // "HH:MM" 24h
	EndTime         string            `json:"end_time"`         // "HH:MM" 24h
	Status          AppointmentStatus `json:"status"`
	Reason          string            `json:"reason"`
	Notes           string            `json:"notes"`
	AppointmentType AppointmentType   `json:"appointment_type"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// Validate checks the fields every appointment must carry before it is
// accepted into a store.
func (a *Appointment) Validate() error {
	if a.PatientID == "" || a.DoctorID == "" {
		return fmt.Errorf("appointment requires patient_id and doctor_id")
	}
	if a.AppointmentDate == "" {
		return fmt.Errorf("appointment requires a date")
	}
	if _, err := time.Parse("2006-01-02", a.AppointmentDate); err != nil {
		return fmt.Errorf("invalid appointment date %q, use YYYY-MM-DD", a.AppointmentDate)
	}
	start, err := time.Parse("15:04", a.StartTime)
	if err != nil {
		return fmt.Errorf("invalid start time %q, use HH:MM", a.StartTime)
	}
	end, err := time.Parse("15:04", a.EndTime)
	if err != nil {
		return fmt.Errorf("invalid end time %q, use HH:MM", a.EndTime)
	}
	if !start.Before(end) {
		return fmt.Errorf("start time must be before end time")
	}
	return nil
}
