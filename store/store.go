// Package store holds the per-tab in-memory collections behind the mock
// backend. Every simulated client owns one Store; tabs converge only
// through the sync bus, never through shared memory.
package store

import (
	"sync"

	"github.com/clinicbook/clinic-app/models"
)

// Kind names one entity collection. It doubles as the persistence slot
// suffix.
type Kind string

const (
	KindUsers           Kind = "users"
	KindDoctorProfiles  Kind = "doctor_profiles"
	KindPatientProfiles Kind = "patient_profiles"
	KindAppointments    Kind = "appointments"
	KindNotifications   Kind = "notifications"
)

// Kinds lists every collection, in the order SaveAll persists them.
var Kinds = []Kind{
	KindUsers,
	KindDoctorProfiles,
	KindPatientProfiles,
	KindAppointments,
	KindNotifications,
}

type Store struct {
	mu sync.RWMutex

	users           []*models.User
	doctorProfiles  []*models.DoctorProfile
	patientProfiles []*models.PatientProfile
	appointments    []*models.Appointment
	notifications   []*models.Notification
}

func NewStore() *Store {
	return &Store{}
}

// Users returns the live collection, not a copy. Callers that iterate
// while mutations may run should hold their own snapshot.
func (s *Store) Users() []*models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users
}

func (s *Store) DoctorProfiles() []*models.DoctorProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doctorProfiles
}

func (s *Store) PatientProfiles() []*models.PatientProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patientProfiles
}

func (s *Store) Appointments() []*models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.appointments
}

func (s *Store) Notifications() []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifications
}

// Bulk replacement, used only by persistence rehydration and cross-tab
// merge. Mutation code appends through the Add helpers instead.

func (s *Store) ReplaceUsers(users []*models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = users
}

func (s *Store) ReplaceDoctorProfiles(profiles []*models.DoctorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctorProfiles = profiles
}

func (s *Store) ReplacePatientProfiles(profiles []*models.PatientProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patientProfiles = profiles
}

func (s *Store) ReplaceAppointments(appointments []*models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = appointments
}

func (s *Store) ReplaceNotifications(notifications []*models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = notifications
}

func (s *Store) AddUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, u)
}

func (s *Store) AddDoctorProfile(p *models.DoctorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctorProfiles = append(s.doctorProfiles, p)
}

func (s *Store) AddPatientProfile(p *models.PatientProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patientProfiles = append(s.patientProfiles, p)
}

func (s *Store) AddAppointment(a *models.Appointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appointments = append(s.appointments, a)
}

func (s *Store) AddNotification(n *models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

// Upsert helpers implement the sync merge rule: overwrite by id when
// the record exists, append when it does not. They are idempotent, so
// duplicate envelope delivery is harmless.

func (s *Store) UpsertUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.users {
		if existing.ID == u.ID {
			s.users[i] = u
			return
		}
	}
	s.users = append(s.users, u)
}

func (s *Store) UpsertDoctorProfile(p *models.DoctorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.doctorProfiles {
		if existing.UserID == p.UserID {
			s.doctorProfiles[i] = p
			return
		}
	}
	s.doctorProfiles = append(s.doctorProfiles, p)
}

func (s *Store) UpsertPatientProfile(p *models.PatientProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.patientProfiles {
		if existing.UserID == p.UserID {
			s.patientProfiles[i] = p
			return
		}
	}
	s.patientProfiles = append(s.patientProfiles, p)
}

func (s *Store) UpsertNotification(n *models.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.notifications {
		if existing.ID == n.ID {
			s.notifications[i] = n
			return
		}
	}
	s.notifications = append(s.notifications, n)
}

// Lookup helpers. They return the live record so mutation code can
// patch fields in place.

func (s *Store) UserByID(id string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (s *Store) UserByEmail(email string) *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email && u.IsActive {
			return u
		}
	}
	return nil
}

func (s *Store) DoctorProfileByUserID(userID string) *models.DoctorProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.doctorProfiles {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Store) PatientProfileByUserID(userID string) *models.PatientProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patientProfiles {
		if p.UserID == userID {
			return p
		}
	}
	return nil
}

func (s *Store) AppointmentByID(id string) *models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.appointments {
		if a.ID == id {
			return a
		}
	}
	return nil
}

func (s *Store) NotificationByID(id string) *models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notifications {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// NotificationsForUser returns the user's notifications, newest first.
func (s *Store) NotificationsForUser(userID string) []*models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Notification, 0)
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if n := s.notifications[i]; n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

// AppointmentsForDoctorOnDate returns every appointment for the doctor
// on the given "YYYY-MM-DD" date, cancelled ones included; the caller
// decides which statuses matter.
func (s *Store) AppointmentsForDoctorOnDate(doctorID, date string) []*models.Appointment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Appointment, 0)
	for _, a := range s.appointments {
		if a.DoctorID == doctorID && a.AppointmentDate == date {
			out = append(out, a)
		}
	}
	return out
}
