package backend

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/clinicbook/clinic-app/bus"
	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/persist"
	"github.com/clinicbook/clinic-app/store"
	"github.com/clinicbook/clinic-app/utils"
)

// MockBackend simulates the remote booking service inside one tab: it
// validates, mutates the tab's entity stores, writes through the
// persistence codec, and broadcasts a sync envelope. It never reaches a
// network.
//
// Run-to-completion: one mutex serializes every operation and every
// incoming merge, mirroring the single-threaded event loop the
// simulation models.
type MockBackend struct {
	// MinLatency/MaxLatency bound the artificial delay every operation
	// sleeps before touching the stores. Tests set both to zero.
	MinLatency time.Duration
	MaxLatency time.Duration

	store     *store.Store
	codec     *persist.Codec
	transport bus.Transport
	sourceID  string

	mu          sync.Mutex
	unsubscribe func()
}

// NewMockBackend wires one simulated tab: a fresh source id, a merge
// subscription on the transport, and rehydration from storage.
func NewMockBackend(st *store.Store, codec *persist.Codec, transport bus.Transport) *MockBackend {
	b := &MockBackend{
		MinLatency: 100 * time.Millisecond,
		MaxLatency: 300 * time.Millisecond,
		store:      st,
		codec:      codec,
		transport:  transport,
		sourceID:   uuid.NewString(),
	}
	codec.LoadAll()
	b.unsubscribe = transport.Subscribe(b.applyEnvelope)
	return b
}

// SourceID is this tab's loop-suppression id.
func (b *MockBackend) SourceID() string {
	return b.sourceID
}

// Store exposes the tab's collections for rendering reads.
func (b *MockBackend) Store() *store.Store {
	return b.store
}

// Close drops the sync subscription and flushes a final save.
func (b *MockBackend) Close() {
	if b.unsubscribe != nil {
		b.unsubscribe()
		b.unsubscribe = nil
	}
	b.codec.SaveAll()
}

// simulateLatency sleeps a bounded random delay so callers keep the
// asynchronous code paths a real backend forces. It always completes;
// simulated operations are not cancellable.
func (b *MockBackend) simulateLatency() {
	if b.MaxLatency <= 0 {
		return
	}
	d := b.MinLatency
	if span := b.MaxLatency - b.MinLatency; span > 0 {
		d += time.Duration(rand.Int63n(int64(span)))
	}
	time.Sleep(d)
}

// persistKind writes one collection through. Persistence is
// best-effort: failures are logged, never surfaced, and the in-memory
// mutation and broadcast still stand.
func (b *MockBackend) persistKind(kind store.Kind) {
	if err := b.codec.Save(kind); err != nil {
		log.Printf("backend: %v", Errf(PersistenceFailure, "save %s: %v", kind, err))
	}
}

func (b *MockBackend) broadcast(t bus.EventType, payload interface{}) {
	env, err := bus.NewEnvelope(t, payload, b.sourceID)
	if err != nil {
		log.Printf("backend: encode %s envelope: %v", t, err)
		return
	}
	if err := b.transport.Publish(env); err != nil {
		log.Printf("backend: publish %s envelope: %v", t, err)
	}
}

func (b *MockBackend) Register(input RegisterInput) (*models.User, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		return nil, Errf(InvalidInput, "email, password and first name are required")
	}
	if !input.Role.Valid() {
		return nil, Errf(InvalidInput, "unknown role %q", input.Role)
	}
	if existing := b.store.UserByEmail(input.Email); existing != nil {
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
	b.store.AddUser(user)
	b.persistKind(store.KindUsers)
	b.broadcast(bus.EventUserAdded, user)

	switch input.Role {
	case models.RoleDoctor:
		profile := &models.DoctorProfile{
			UserID:             user.ID,
			VerificationStatus: models.VerificationPending,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		b.store.AddDoctorProfile(profile)
		b.persistKind(store.KindDoctorProfiles)
		b.broadcast(bus.EventDoctorProfileUpdated, profile)
	case models.RolePatient:
		profile := &models.PatientProfile{
			UserID:    user.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		b.store.AddPatientProfile(profile)
		b.persistKind(store.KindPatientProfiles)
		b.broadcast(bus.EventPatientProfileUpdated, profile)
	}

	return user, nil
}

func (b *MockBackend) SignIn(email, password string) (*models.User, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	user := b.store.UserByEmail(email)
	if user == nil {
		return nil, Errf(NotFound, "no active user with email %s", email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, Errf(PermissionDenied, "invalid credentials")
	}
	return user, nil
}

func (b *MockBackend) GetUser(id string) (*models.User, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	user := b.store.UserByID(id)
	if user == nil {
		return nil, Errf(NotFound, "user %s not found", id)
	}
	return user, nil
}

func (b *MockBackend) DeactivateUser(id string) error {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	user := b.store.UserByID(id)
	if user == nil {
		return Errf(NotFound, "user %s not found", id)
	}
	user.IsActive = false
	user.UpdatedAt = time.Now()
	b.persistKind(store.KindUsers)
	b.broadcast(bus.EventUserDeactivated, bus.UserFlagPatch{ID: id, IsActive: false})
	return nil
}

func (b *MockBackend) ListDoctors() ([]*models.DoctorProfile, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*models.DoctorProfile, 0)
	for _, p := range b.store.DoctorProfiles() {
		if p.VerificationStatus != models.VerificationApproved {
			continue
		}
		if u := b.store.UserByID(p.UserID); u == nil || !u.IsActive {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (b *MockBackend) GetDoctorProfile(userID string) (*models.DoctorProfile, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.DoctorProfileByUserID(userID)
	if profile == nil {
		return nil, Errf(NotFound, "doctor profile for %s not found", userID)
	}
	return profile, nil
}

func (b *MockBackend) UpdateDoctorProfile(userID string, input DoctorProfileInput) (*models.DoctorProfile, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.DoctorProfileByUserID(userID)
	if profile == nil {
		return nil, Errf(NotFound, "doctor profile for %s not found", userID)
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
	b.persistKind(store.KindDoctorProfiles)
	b.broadcast(bus.EventDoctorProfileUpdated, profile)
	return profile, nil
}

func (b *MockBackend) GetPatientProfile(userID string) (*models.PatientProfile, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.PatientProfileByUserID(userID)
	if profile == nil {
		return nil, Errf(NotFound, "patient profile for %s not found", userID)
	}
	return profile, nil
}

func (b *MockBackend) UpdatePatientProfile(userID string, input PatientProfileInput) (*models.PatientProfile, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.PatientProfileByUserID(userID)
	if profile == nil {
		return nil, Errf(NotFound, "patient profile for %s not found", userID)
	}
	profile.DateOfBirth = input.DateOfBirth
	profile.Gender = input.Gender
	profile.BloodType = input.BloodType
	profile.MedicalHistory = input.MedicalHistory
	profile.UpdatedAt = time.Now()
	b.persistKind(store.KindPatientProfiles)
	b.broadcast(bus.EventPatientProfileUpdated, profile)
	return profile, nil
}

// VerifyDoctor is the admin verification decision. The notification
// text tracks the resulting status.
func (b *MockBackend) VerifyDoctor(doctorID string, status models.VerificationStatus, notes string) (*models.DoctorProfile, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.DoctorProfileByUserID(doctorID)
	if profile == nil {
		return nil, Errf(NotFound, "doctor profile for %s not found", doctorID)
	}
	profile.VerificationStatus = status
	profile.VerificationNotes = notes
	profile.UpdatedAt = time.Now()
	b.persistKind(store.KindDoctorProfiles)
	b.broadcast(bus.EventDoctorProfileUpdated, profile)

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
	b.addNotification(&models.Notification{
		ID:        uuid.NewString(),
		UserID:    doctorID,
		Title:     "Verification update",
		Message:   message,
		Type:      models.NotificationVerification,
		CreatedAt: time.Now(),
	})

	if doctor := b.store.UserByID(doctorID); doctor != nil && os.Getenv("SMTP_HOST") != "" {
		go func(email, body string) {
			if err := utils.SendEmail(email, "Verification update", body); err != nil {
				log.Printf("backend: verification email to %s failed: %v", email, err)
			}
		}(doctor.Email, message)
	}

	return profile, nil
}

func (b *MockBackend) BookAppointment(input BookAppointmentInput) (*models.Appointment, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

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

	patient := b.store.UserByID(input.PatientID)
	if patient == nil || patient.Role != models.RolePatient {
		return nil, Errf(NotFound, "patient %s not found", input.PatientID)
	}
	doctor := b.store.UserByID(input.DoctorID)
	if doctor == nil || doctor.Role != models.RoleDoctor {
		return nil, Errf(NotFound, "doctor %s not found", input.DoctorID)
	}

	b.store.AddAppointment(appointment)
	b.persistKind(store.KindAppointments)
	b.broadcast(bus.EventAppointmentCreated, appointment)

	when := fmt.Sprintf("%s at %s", appointment.AppointmentDate, appointment.StartTime)
	b.addNotification(&models.Notification{
		ID:        uuid.NewString(),
		UserID:    doctor.ID,
		Title:     "New appointment request",
		Message:   fmt.Sprintf("%s requested an appointment on %s.", patient.FullName(), when),
		Type:      models.NotificationAppointment,
		RelatedID: appointment.ID,
		CreatedAt: now,
	})
	b.addNotification(&models.Notification{
		ID:        uuid.NewString(),
		UserID:    patient.ID,
		Title:     "Appointment requested",
		Message:   fmt.Sprintf("Your appointment with Dr. %s on %s is pending confirmation.", doctor.FullName(), when),
		Type:      models.NotificationAppointment,
		RelatedID: appointment.ID,
		CreatedAt: now,
	})

	return appointment, nil
}

// addNotification stores, persists and broadcasts one notification.
// Callers hold b.mu.
func (b *MockBackend) addNotification(n *models.Notification) {
	b.store.AddNotification(n)
	b.persistKind(store.KindNotifications)
	b.broadcast(bus.EventNotificationAdded, n)
}

func (b *MockBackend) CancelAppointment(id, reason, requesterID string) (*models.Appointment, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	appointment := b.store.AppointmentByID(id)
	if appointment == nil {
		return nil, Errf(NotFound, "appointment %s not found", id)
	}

	var status models.AppointmentStatus
	var counterpart string
	requester := b.store.UserByID(requesterID)
	switch {
	case requesterID == appointment.PatientID:
		status = models.StatusCancelledByPatient
		counterpart = appointment.DoctorID
	case requesterID == appointment.DoctorID:
		status = models.StatusCancelledByDoctor
		counterpart = appointment.PatientID
	case requester != nil && requester.Role == models.RoleAdmin:
		status = models.StatusCancelled
		counterpart = appointment.PatientID
	default:
		return nil, Errf(PermissionDenied, "user %s cannot cancel appointment %s", requesterID, id)
	}

	// Targeted patch, never a full replace: a stale full-object
	// envelope elsewhere cannot undo this transition.
	appointment.Status = status
	appointment.Notes = reason
	appointment.UpdatedAt = time.Now()
	b.persistKind(store.KindAppointments)
	b.broadcast(bus.EventAppointmentCancelled, bus.AppointmentPatch{
		ID:     id,
		Status: strPtr(string(status)),
		Notes:  strPtr(reason),
	})

	b.addNotification(&models.Notification{
		ID:        uuid.NewString(),
		UserID:    counterpart,
		Title:     "Appointment cancelled",
		Message:   fmt.Sprintf("The appointment on %s at %s was cancelled. %s", appointment.AppointmentDate, appointment.StartTime, reason),
		Type:      models.NotificationAppointment,
		RelatedID: appointment.ID,
		CreatedAt: time.Now(),
	})

	return appointment, nil
}

func (b *MockBackend) RescheduleAppointment(input RescheduleInput) (*models.Appointment, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	appointment := b.store.AppointmentByID(input.AppointmentID)
	if appointment == nil {
		return nil, Errf(NotFound, "appointment %s not found", input.AppointmentID)
	}
	if input.RequesterID != appointment.PatientID && input.RequesterID != appointment.DoctorID {
		return nil, Errf(PermissionDenied, "user %s cannot reschedule appointment %s", input.RequesterID, input.AppointmentID)
	}

	candidate := *appointment
	candidate.AppointmentDate = input.AppointmentDate
	candidate.StartTime = input.StartTime
	candidate.EndTime = input.EndTime
	if err := candidate.Validate(); err != nil {
		return nil, Errf(InvalidInput, "%v", err)
	}

	appointment.AppointmentDate = input.AppointmentDate
	appointment.StartTime = input.StartTime
	appointment.EndTime = input.EndTime
	appointment.Status = models.StatusRescheduled
	appointment.UpdatedAt = time.Now()
	b.persistKind(store.KindAppointments)
	b.broadcast(bus.EventAppointmentUpdated, bus.AppointmentPatch{
		ID:              appointment.ID,
		Status:          strPtr(string(models.StatusRescheduled)),
		AppointmentDate: strPtr(input.AppointmentDate),
		StartTime:       strPtr(input.StartTime),
		EndTime:         strPtr(input.EndTime),
	})
	return appointment, nil
}

func (b *MockBackend) ConfirmAppointment(id, requesterID string) (*models.Appointment, error) {
	return b.closeAppointment(id, requesterID, models.StatusConfirmed)
}

func (b *MockBackend) CompleteAppointment(id, requesterID string) (*models.Appointment, error) {
	return b.closeAppointment(id, requesterID, models.StatusCompleted)
}

func (b *MockBackend) MarkNoShow(id, requesterID string) (*models.Appointment, error) {
	return b.closeAppointment(id, requesterID, models.StatusNoShow)
}

// closeAppointment is the doctor-side status transition: confirm,
// complete or no-show.
func (b *MockBackend) closeAppointment(id, requesterID string, status models.AppointmentStatus) (*models.Appointment, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	appointment := b.store.AppointmentByID(id)
	if appointment == nil {
		return nil, Errf(NotFound, "appointment %s not found", id)
	}
	if requesterID != appointment.DoctorID {
		return nil, Errf(PermissionDenied, "only the doctor can mark appointment %s as %s", id, status)
	}
	appointment.Status = status
	appointment.UpdatedAt = time.Now()
	b.persistKind(store.KindAppointments)
	b.broadcast(bus.EventAppointmentUpdated, bus.AppointmentPatch{
		ID:     id,
		Status: strPtr(string(status)),
	})
	return appointment, nil
}

func (b *MockBackend) ListAppointments(userID string) ([]*models.Appointment, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*models.Appointment, 0)
	for _, a := range b.store.Appointments() {
		if a.PatientID == userID || a.DoctorID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// UpcomingAppointments returns confirmed appointments starting within
// the given window. Used by the reminder sweep.
func (b *MockBackend) UpcomingAppointments(from, to time.Time) ([]*models.Appointment, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*models.Appointment, 0)
	for _, a := range b.store.Appointments() {
		if a.Status != models.StatusConfirmed {
			continue
		}
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

func (b *MockBackend) SetDoctorAvailability(doctorID string, weekly models.WeeklySchedule, blockedDates []string) error {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.DoctorProfileByUserID(doctorID)
	if profile == nil {
		return Errf(NotFound, "doctor profile for %s not found", doctorID)
	}
	profile.WeeklySchedule = weekly
	profile.BlockedDates = blockedDates
	profile.UpdatedAt = time.Now()
	b.persistKind(store.KindDoctorProfiles)

	payload, err := bus.NewAvailabilityPayload(doctorID, weekly, blockedDates)
	if err != nil {
		log.Printf("backend: encode availability payload: %v", err)
		return nil
	}
	b.broadcast(bus.EventAvailabilityUpdated, payload)
	return nil
}

func (b *MockBackend) GetAvailableSlots(doctorID, date string) ([]string, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	profile := b.store.DoctorProfileByUserID(doctorID)
	if profile == nil {
		return nil, Errf(NotFound, "doctor profile for %s not found", doctorID)
	}
	slots := GenerateSlots(profile.WeeklySchedule, profile.BlockedDates, date)
	return excludeBooked(slots, b.store.AppointmentsForDoctorOnDate(doctorID, date)), nil
}

func (b *MockBackend) GetNotifications(userID string) ([]*models.Notification, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.NotificationsForUser(userID), nil
}

func (b *MockBackend) MarkNotificationRead(id string) error {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	n := b.store.NotificationByID(id)
	if n == nil {
		return Errf(NotFound, "notification %s not found", id)
	}
	n.IsRead = true
	b.persistKind(store.KindNotifications)
	b.broadcast(bus.EventNotificationRead, bus.NotificationPatch{ID: id, IsRead: true})
	return nil
}

func (b *MockBackend) MarkAllNotificationsRead(userID string) error {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, n := range b.store.NotificationsForUser(userID) {
		if n.IsRead {
			continue
		}
		n.IsRead = true
		b.broadcast(bus.EventNotificationRead, bus.NotificationPatch{ID: n.ID, IsRead: true})
	}
	b.persistKind(store.KindNotifications)
	return nil
}

// Audit is the admin integrity sweep over the stores.
func (b *MockBackend) Audit() (*AuditReport, error) {
	b.simulateLatency()
	b.mu.Lock()
	defer b.mu.Unlock()

	report := &AuditReport{CheckedAt: time.Now(), Issues: []string{}}
	for _, a := range b.store.Appointments() {
		if p := b.store.UserByID(a.PatientID); p == nil || p.Role != models.RolePatient {
			report.Issues = append(report.Issues, fmt.Sprintf("appointment %s references missing or non-patient user %s", a.ID, a.PatientID))
		}
		if d := b.store.UserByID(a.DoctorID); d == nil || d.Role != models.RoleDoctor {
			report.Issues = append(report.Issues, fmt.Sprintf("appointment %s references missing or non-doctor user %s", a.ID, a.DoctorID))
		}
		if a.StartTime >= a.EndTime {
			report.Issues = append(report.Issues, fmt.Sprintf("appointment %s has start %s not before end %s", a.ID, a.StartTime, a.EndTime))
		}
	}
	for _, p := range b.store.DoctorProfiles() {
		if u := b.store.UserByID(p.UserID); u == nil || u.Role != models.RoleDoctor {
			report.Issues = append(report.Issues, fmt.Sprintf("doctor profile %s has no matching doctor user", p.UserID))
		}
	}
	for _, p := range b.store.PatientProfiles() {
		if u := b.store.UserByID(p.UserID); u == nil || u.Role != models.RolePatient {
			report.Issues = append(report.Issues, fmt.Sprintf("patient profile %s has no matching patient user", p.UserID))
		}
	}
	for _, n := range b.store.Notifications() {
		if b.store.UserByID(n.UserID) == nil {
			report.Issues = append(report.Issues, fmt.Sprintf("notification %s addressed to missing user %s", n.ID, n.UserID))
		}
	}
	return report, nil
}

func strPtr(s string) *string {
	return &s
}
