// Package backend implements the clinic's booking operations twice
// behind one interface: a mock in-memory simulation that stays
// convergent across simulated tabs via the sync bus, and a live
// database-backed path. The HTTP layer never knows which one it holds.
package backend

import (
	"time"

	"github.com/clinicbook/clinic-app/models"
)

type RegisterInput struct {
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Password  string      `json:"password"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Role      models.Role `json:"role"`
}

type BookAppointmentInput struct {
	PatientID       string                 `json:"patient_id"`
	DoctorID        string                 `json:"doctor_id"`
	AppointmentDate string                 `json:"appointment_date"`
	StartTime       string                 `json:"start_time"`
	EndTime         string                 `json:"end_time"`
	Reason          string                 `json:"reason"`
	AppointmentType models.AppointmentType `json:"appointment_type"`
}

type RescheduleInput struct {
	AppointmentID   string `json:"appointment_id"`
	AppointmentDate string `json:"appointment_date"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	RequesterID     string `json:"-"`
}

type DoctorProfileInput struct {
	Specialty         string   `json:"specialty"`
	LicenseNumber     string   `json:"license_number"`
	YearsOfExperience int      `json:"years_of_experience"`
	Bio               string   `json:"bio"`
	Location          string   `json:"location"`
	Languages         []string `json:"languages"`
	ConsultationFee   float64  `json:"consultation_fee"`
	DocumentURLs      []string `json:"document_urls"`
}

type PatientProfileInput struct {
	DateOfBirth    string `json:"date_of_birth"`
	Gender         string `json:"gender"`
	BloodType      string `json:"blood_type"`
	MedicalHistory string `json:"medical_history"`
}

// AuditReport is the admin integrity check over the data set: dangling
// references and orphaned profiles, with one line per finding.
type AuditReport struct {
	CheckedAt time.Time `json:"checked_at"`
	Issues    []string  `json:"issues"`
}

// API is the operation surface both the mock and the live backend
// implement, so UI code is mode-agnostic.
type API interface {
	Register(input RegisterInput) (*models.User, error)
	SignIn(email, password string) (*models.User, error)
	GetUser(id string) (*models.User, error)
	DeactivateUser(id string) error

	ListDoctors() ([]*models.DoctorProfile, error)
	GetDoctorProfile(userID string) (*models.DoctorProfile, error)
	UpdateDoctorProfile(userID string, input DoctorProfileInput) (*models.DoctorProfile, error)
	GetPatientProfile(userID string) (*models.PatientProfile, error)
	UpdatePatientProfile(userID string, input PatientProfileInput) (*models.PatientProfile, error)
	VerifyDoctor(doctorID string, status models.VerificationStatus, notes string) (*models.DoctorProfile, error)

	BookAppointment(input BookAppointmentInput) (*models.Appointment, error)
	CancelAppointment(id, reason, requesterID string) (*models.Appointment, error)
	ConfirmAppointment(id, requesterID string) (*models.Appointment, error)
	RescheduleAppointment(input RescheduleInput) (*models.Appointment, error)
	CompleteAppointment(id, requesterID string) (*models.Appointment, error)
	MarkNoShow(id, requesterID string) (*models.Appointment, error)
	ListAppointments(userID string) ([]*models.Appointment, error)

	SetDoctorAvailability(doctorID string, weekly models.WeeklySchedule, blockedDates []string) error
	GetAvailableSlots(doctorID, date string) ([]string, error)

	GetNotifications(userID string) ([]*models.Notification, error)
	MarkNotificationRead(id string) error
	MarkAllNotificationsRead(userID string) error

	Audit() (*AuditReport, error)
}
