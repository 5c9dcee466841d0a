package backend

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/utils"
)

// LiveBackend is the database-backed twin of the mock: the same API
// against Postgres, no simulated latency, no sync bus — the database is
// the shared truth all clients read.
type LiveBackend struct {
	db *gorm.DB
}

func NewLiveBackend(db *gorm.DB) *LiveBackend {
	return &LiveBackend{db: db}
}

func (l *LiveBackend) Register(input RegisterInput) (*models.User, error) {
	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		return nil, Errf(InvalidInput, "email, password and first name are required")
	}
	if !input.Role.Valid() {
		return nil, Errf(InvalidInput, "unknown role %q", input.Role)
	}
	var existing models.User
	if l.db.Where("email = ? AND is_active = ?", input.Email, true).First(&existing).RowsAffected > 0 {
		return nil, Errf(AlreadyExists, "user with email %s already exists", input.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, Errf(InvalidInput, "failed to hash password: %v", err)
	}
	now := time.Now()
	user := &models.User{
		ID:        uuid.NewString(),
		Email:     input.Email,
		Phone:     input.Phone,
		Password:  string(hashed),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		switch input.Role {
		case models.RoleDoctor:
			return tx.Create(&models.DoctorProfile{
				UserID:             user.ID,
				VerificationStatus: models.VerificationPending,
				CreatedAt:          now,
				UpdatedAt:          now,
			}).Error
		case models.RolePatient:
			return tx.Create(&models.PatientProfile{
				UserID:    user.ID,
				CreatedAt: now,
				UpdatedAt: now,
			}).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (l *LiveBackend) SignIn(email, password string) (*models.User, error) {
	var user models.User
	if l.db.Where("email = ? AND is_active = ?", email, true).First(&user).RowsAffected == 0 {
		return nil, Errf(NotFound, "no active user with email %s", email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, Errf(PermissionDenied, "invalid credentials")
	}
	return &user, nil
}

func (l *LiveBackend) GetUser(id string) (*models.User, error) {
	var user models.User
	if err := l.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, Errf(NotFound, "user %s not found", id)
	}
	return &user, nil
}

func (l *LiveBackend) DeactivateUser(id string) error {
	res := l.db.Model(&models.User{}).Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Errf(NotFound, "user %s not found", id)
	}
	return nil
}

func (l *LiveBackend) ListDoctors() ([]*models.DoctorProfile, error) {
	var profiles []*models.DoctorProfile
	err := l.db.
		Joins("JOIN users ON users.id = doctor_profiles.user_id AND users.is_active = true").
		Where("doctor_profiles.verification_status = ?", models.VerificationApproved).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (l *LiveBackend) GetDoctorProfile(userID string) (*models.DoctorProfile, error) {
	var profile models.DoctorProfile
	if err := l.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, Errf(NotFound, "doctor profile for %s not found", userID)
	}
	return &profile, nil
}

func (l *LiveBackend) UpdateDoctorProfile(userID string, input DoctorProfileInput) (*models.DoctorProfile, error) {
	profile, err := l.GetDoctorProfile(userID)
	if err != nil {
		return nil, err
	}
	profile.Specialty = input.Specialty
	profile.LicenseNumber = input.LicenseNumber
	profile.YearsOfExperience = input.YearsOfExperience
	profile.Bio = input.Bio
	profile.Location = input.Location
	profile.Languages = input.Languages
	profile.ConsultationFee = input.ConsultationFee
	if input.DocumentURLs != nil {
		profile.DocumentURLs = input.DocumentURLs
	}
	profile.UpdatedAt = time.Now()
	if err := l.db.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *LiveBackend) GetPatientProfile(userID string) (*models.PatientProfile, error) {
	var profile models.PatientProfile
	if err := l.db.First(&profile, "user_id = ?", userID).Error; err != nil {
		return nil, Errf(NotFound, "patient profile for %s not found", userID)
	}
	return &profile, nil
}

func (l *LiveBackend) UpdatePatientProfile(userID string, input PatientProfileInput) (*models.PatientProfile, error) {
	profile, err := l.GetPatientProfile(userID)
	if err != nil {
		return nil, err
	}
	profile.DateOfBirth = input.DateOfBirth
	profile.Gender = input.Gender
	profile.BloodType = input.BloodType
	profile.MedicalHistory = input.MedicalHistory
	profile.UpdatedAt = time.Now()
	if err := l.db.Save(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *LiveBackend) VerifyDoctor(doctorID string, status models.VerificationStatus, notes string) (*models.DoctorProfile, error) {
	profile, err := l.GetDoctorProfile(doctorID)
	if err != nil {
		return nil, err
	}
	profile.VerificationStatus = status
	profile.VerificationNotes = notes
	profile.UpdatedAt = time.Now()

	var message string
	switch status {
	case models.VerificationApproved:
		message = "Congratulations! Your profile has been verified. Patients can now book appointments with you."
	case models.VerificationRejected:
		message = "Your verification was rejected. " + notes
	case models.VerificationMoreInfoRequired:
		message = "We need more information to verify your profile. " + notes
	default:
		message = "Your verification status has been updated to " + string(status) + "."
	}

	err = l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		return tx.Create(&models.Notification{
			ID:        uuid.NewString(),
			UserID:    doctorID,
			Title:     "Verification update",
			Message:   message,
			Type:      models.NotificationVerification,
			CreatedAt: time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (l *LiveBackend) BookAppointment(input BookAppointmentInput) (*models.Appointment, error) {
	now := time.Now()
	appointment := &models.Appointment{
		ID:              uuid.NewString(),
		PatientID:       input.PatientID,
		DoctorID:        input.DoctorID,
		AppointmentDate: input.AppointmentDate,
		StartTime:       input.StartTime,
		EndTime:         input.EndTime,
		Status:          models.StatusPending,
		Reason:          input.Reason,
		AppointmentType: input.AppointmentType,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if appointment.AppointmentType == "" {
		appointment.AppointmentType = models.TypeInPerson
	}
	if err := appointment.Validate(); err != nil {
		return nil, Errf(InvalidInput, "%v", err)
	}

	var patient, doctor models.User
	if l.db.Where("id = ? AND role = ?", input.PatientID, models.RolePatient).First(&patient).RowsAffected == 0 {
		return nil, Errf(NotFound, "patient %s not found", input.PatientID)
	}
	if l.db.Where("id = ? AND role = ?", input.DoctorID, models.RoleDoctor).First(&doctor).RowsAffected == 0 {
		return nil, Errf(NotFound, "doctor %s not found", input.DoctorID)
	}

	when := fmt.Sprintf("%s at %s", appointment.AppointmentDate, appointment.StartTime)
	err := l.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(appointment).Error; err != nil {
			return err
		}
		notifications := []*models.Notification{
			{
				ID:        uuid.NewString(),
				UserID:    doctor.ID,
				Title:     "New appointment request",
				Message:   fmt.Sprintf("%s requested an appointment on %s.", patient.FullName(), when),
				Type:      models.NotificationAppointment,
				RelatedID: appointment.ID,
				CreatedAt: now,
			},
			{
				ID:        uuid.NewString(),
				UserID:    patient.ID,
				Title:     "Appointment requested",
				Message:   fmt.Sprintf("Your appointment with Dr. %s on %s is pending confirmation.", doctor.FullName(), when),
				Type:      models.NotificationAppointment,
				RelatedID: appointment.ID,
				CreatedAt: now,
			},
		}
		return tx.Create(&notifications).Error
	})
	if err != nil {
		return nil, err
	}
	return appointment, nil
}

func (l *LiveBackend) CancelAppointment(id, reason, requesterID string) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := l.db.First(&appointment, "id = ?", id).Error; err != nil {
		return nil, Errf(NotFound, "appointment %s not found", id)
	}

	var requester models.User
	l.db.First(&requester, "id = ?", requesterID)

	var status models.AppointmentStatus
	switch {
	case requesterID == appointment.PatientID:
		status = models.StatusCancelledByPatient
	case requesterID == appointment.DoctorID:
		status = models.StatusCancelledByDoctor
	case requester.Role == models.RoleAdmin:
		status = models.StatusCancelled
	default:
		return nil, Errf(PermissionDenied, "user %s cannot cancel appointment %s", requesterID, id)
	}

	appointment.Status = status
	appointment.Notes = reason
	appointment.UpdatedAt = time.Now()
	if err := l.db.Model(&appointment).
		Updates(map[string]interface{}{"status": status, "notes": reason, "updated_at": appointment.UpdatedAt}).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (l *LiveBackend) RescheduleAppointment(input RescheduleInput) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := l.db.First(&appointment, "id = ?", input.AppointmentID).Error; err != nil {
		return nil, Errf(NotFound, "appointment %s not found", input.AppointmentID)
	}
	if input.RequesterID != appointment.PatientID && input.RequesterID != appointment.DoctorID {
		return nil, Errf(PermissionDenied, "user %s cannot reschedule appointment %s", input.RequesterID, input.AppointmentID)
	}
	appointment.AppointmentDate = input.AppointmentDate
	appointment.StartTime = input.StartTime
	appointment.EndTime = input.EndTime
	appointment.Status = models.StatusRescheduled
	appointment.UpdatedAt = time.Now()
	if err := appointment.Validate(); err != nil {
		return nil, Errf(InvalidInput, "%v", err)
	}
	if err := l.db.Save(&appointment).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (l *LiveBackend) ConfirmAppointment(id, requesterID string) (*models.Appointment, error) {
	return l.closeAppointment(id, requesterID, models.StatusConfirmed)
}

func (l *LiveBackend) CompleteAppointment(id, requesterID string) (*models.Appointment, error) {
	return l.closeAppointment(id, requesterID, models.StatusCompleted)
}

func (l *LiveBackend) MarkNoShow(id, requesterID string) (*models.Appointment, error) {
	return l.closeAppointment(id, requesterID, models.StatusNoShow)
}

func (l *LiveBackend) closeAppointment(id, requesterID string, status models.AppointmentStatus) (*models.Appointment, error) {
	var appointment models.Appointment
	if err := l.db.First(&appointment, "id = ?", id).Error; err != nil {
		return nil, Errf(NotFound, "appointment %s not found", id)
	}
	if requesterID != appointment.DoctorID {
		return nil, Errf(PermissionDenied, "only the doctor can mark appointment %s as %s", id, status)
	}
	appointment.Status = status
	appointment.UpdatedAt = time.Now()
	if err := l.db.Model(&appointment).
		Updates(map[string]interface{}{"status": status, "updated_at": appointment.UpdatedAt}).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (l *LiveBackend) ListAppointments(userID string) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := l.db.Where("patient_id = ? OR doctor_id = ?", userID, userID).
		Order("appointment_date, start_time").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// UpcomingAppointments returns confirmed appointments starting within
// the given window. Used by the reminder sweep.
func (l *LiveBackend) UpcomingAppointments(from, to time.Time) ([]*models.Appointment, error) {
	var appointments []*models.Appointment
	err := l.db.Where("status = ? AND appointment_date IN (?)",
		models.StatusConfirmed, []string{from.Format("2006-01-02"), to.Format("2006-01-02")}).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}

	out := appointments[:0]
	for _, a := range appointments {
		start, err := utils.CombineDateTime(a.AppointmentDate, a.StartTime)
		if err != nil {
			continue
		}
		if !start.Before(from) && !start.After(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (l *LiveBackend) SetDoctorAvailability(doctorID string, weekly models.WeeklySchedule, blockedDates []string) error {
	res := l.db.Model(&models.DoctorProfile{}).Where("user_id = ?", doctorID).
		Updates(map[string]interface{}{
			"weekly_schedule": weekly,
			"blocked_dates":   models.StringList(blockedDates),
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Errf(NotFound, "doctor profile for %s not found", doctorID)
	}
	return nil
}

func (l *LiveBackend) GetAvailableSlots(doctorID, date string) ([]string, error) {
	profile, err := l.GetDoctorProfile(doctorID)
	if err != nil {
		return nil, err
	}
	slots := GenerateSlots(profile.WeeklySchedule, profile.BlockedDates, date)

	var appointments []*models.Appointment
	if err := l.db.Where("doctor_id = ? AND appointment_date = ?", doctorID, date).Find(&appointments).Error; err != nil {
		return nil, err
	}
	return excludeBooked(slots, appointments), nil
}

func (l *LiveBackend) GetNotifications(userID string) ([]*models.Notification, error) {
	var notifications []*models.Notification
	if err := l.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (l *LiveBackend) MarkNotificationRead(id string) error {
	res := l.db.Model(&models.Notification{}).Where("id = ?", id).Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Errf(NotFound, "notification %s not found", id)
	}
	return nil
}

func (l *LiveBackend) MarkAllNotificationsRead(userID string) error {
	return l.db.Model(&models.Notification{}).Where("user_id = ?", userID).Update("is_read", true).Error
}

func (l *LiveBackend) Audit() (*AuditReport, error) {
	report := &AuditReport{CheckedAt: time.Now(), Issues: []string{}}

	rows, err := l.db.Raw(`
		SELECT a.id, a.patient_id FROM appointments a
		LEFT JOIN users u ON u.id = a.patient_id AND u.role = ?
		WHERE u.id IS NULL
	`, models.RolePatient).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id, patientID string
		if err := rows.Scan(&id, &patientID); err != nil {
			return nil, err
		}
		report.Issues = append(report.Issues, fmt.Sprintf("appointment %s references missing or non-patient user %s", id, patientID))
	}

	var orphanProfiles []string
	err = l.db.Raw(`
		SELECT p.user_id FROM doctor_profiles p
		LEFT JOIN users u ON u.id = p.user_id AND u.role = ?
		WHERE u.id IS NULL
	`, models.RoleDoctor).Scan(&orphanProfiles).Error
	if err != nil {
		return nil, err
	}
	for _, userID := range orphanProfiles {
		report.Issues = append(report.Issues, fmt.Sprintf("doctor profile %s has no matching doctor user", userID))
	}

	return report, nil
}
