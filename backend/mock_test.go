package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicbook/clinic-app/bus"
	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/persist"
	"github.com/clinicbook/clinic-app/storage"
	"github.com/clinicbook/clinic-app/store"
)

func newTestBackend(t *testing.T) *MockBackend {
	t.Helper()
	st := store.NewStore()
	medium := storage.NewMemoryStorage()
	b := NewMockBackend(st, persist.NewCodec(st, medium), bus.NewBroker())
	b.MinLatency = 0
	b.MaxLatency = 0
	t.Cleanup(b.Close)
	return b
}

func registerUser(t *testing.T, b *MockBackend, email string, role models.Role) *models.User {
	t.Helper()
	user, err := b.Register(RegisterInput{
		Email:     email,
		Password:  "secret123",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
	})
	require.NoError(t, err)
	return user
}

func bookTestAppointment(t *testing.T, b *MockBackend, patientID, doctorID string) *models.Appointment {
	t.Helper()
	appointment, err := b.BookAppointment(BookAppointmentInput{
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: "2026-09-14",
		StartTime:       "09:00",
		EndTime:         "09:30",
		Reason:          "Checkup",
	})
	require.NoError(t, err)
	return appointment
}

func TestRegisterCreatesRoleProfile(t *testing.T) {
	b := newTestBackend(t)

	doctor := registerUser(t, b, "doc@clinic.test", models.RoleDoctor)
	profile := b.Store().DoctorProfileByUserID(doctor.ID)
	require.NotNil(t, profile)
	assert.Equal(t, models.VerificationPending, profile.VerificationStatus)

	patient := registerUser(t, b, "pat@clinic.test", models.RolePatient)
	require.NotNil(t, b.Store().PatientProfileByUserID(patient.ID))
	assert.Nil(t, b.Store().DoctorProfileByUserID(patient.ID))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	b := newTestBackend(t)
	registerUser(t, b, "dup@clinic.test", models.RolePatient)

	_, err := b.Register(RegisterInput{
		Email:     "dup@clinic.test",
		Password:  "other456",
		FirstName: "Second",
		Role:      models.RolePatient,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, AlreadyExists))
}

func TestRegisterValidatesInput(t *testing.T) {
	b := newTestBackend(t)

	_, err := b.Register(RegisterInput{Email: "x@clinic.test"})
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidInput))

	_, err = b.Register(RegisterInput{
		Email:     "y@clinic.test",
		Password:  "secret123",
		FirstName: "Y",
		Role:      "SUPERHERO",
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidInput))
}

func TestSignIn(t *testing.T) {
	b := newTestBackend(t)
	user := registerUser(t, b, "login@clinic.test", models.RolePatient)

	got, err := b.SignIn("login@clinic.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = b.SignIn("login@clinic.test", "wrongpass")
	require.Error(t, err)
	assert.True(t, IsKind(err, PermissionDenied))

	_, err = b.SignIn("nobody@clinic.test", "secret123")
	require.Error(t, err)
	assert.True(t, IsKind(err, NotFound))
}

func TestDeactivatedUserCannotSignIn(t *testing.T) {
	b := newTestBackend(t)
	user := registerUser(t, b, "gone@clinic.test", models.RolePatient)

	require.NoError(t, b.DeactivateUser(user.ID))

	_, err := b.SignIn("gone@clinic.test", "secret123")
	require.Error(t, err)
	assert.True(t, IsKind(err, NotFound))
}

func TestBookAppointmentNotifiesBothParties(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "p@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "d@clinic.test", models.RoleDoctor)

	appointment := bookTestAppointment(t, b, patient.ID, doctor.ID)
	assert.Equal(t, models.StatusPending, appointment.Status)
	assert.Equal(t, models.TypeInPerson, appointment.AppointmentType)

	require.Len(t, b.Store().NotificationsForUser(doctor.ID), 1)
	require.Len(t, b.Store().NotificationsForUser(patient.ID), 1)
	assert.Equal(t, appointment.ID, b.Store().NotificationsForUser(doctor.ID)[0].RelatedID)
}

func TestBookAppointmentValidation(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "p2@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "d2@clinic.test", models.RoleDoctor)

	cases := []struct {
		name  string
		input BookAppointmentInput
		kind  ErrorKind
	}{
		{
			name: "start after end",
			input: BookAppointmentInput{
				PatientID: patient.ID, DoctorID: doctor.ID,
				AppointmentDate: "2026-09-14", StartTime: "10:00", EndTime: "09:00",
			},
			kind: InvalidInput,
		},
		{
			name: "bad date format",
			input: BookAppointmentInput{
				PatientID: patient.ID, DoctorID: doctor.ID,
				AppointmentDate: "14/09/2026", StartTime: "09:00", EndTime: "09:30",
			},
			kind: InvalidInput,
		},
		{
			name: "unknown doctor",
			input: BookAppointmentInput{
				PatientID: patient.ID, DoctorID: "missing",
				AppointmentDate: "2026-09-14", StartTime: "09:00", EndTime: "09:30",
			},
			kind: NotFound,
		},
		{
			name: "doctor booking as patient",
			input: BookAppointmentInput{
				PatientID: doctor.ID, DoctorID: doctor.ID,
				AppointmentDate: "2026-09-14", StartTime: "09:00", EndTime: "09:30",
			},
			kind: NotFound,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.BookAppointment(tc.input)
			require.Error(t, err)
			assert.True(t, IsKind(err, tc.kind), "want %s, got %v", tc.kind, err)
		})
	}
}

func TestCancelAppointmentStatusByRequester(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "cp@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "cd@clinic.test", models.RoleDoctor)
	admin := registerUser(t, b, "ca@clinic.test", models.RoleAdmin)

	cases := []struct {
		name      string
		requester string
		want      models.AppointmentStatus
	}{
		{"patient", patient.ID, models.StatusCancelledByPatient},
		{"doctor", doctor.ID, models.StatusCancelledByDoctor},
		{"admin", admin.ID, models.StatusCancelled},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			appointment := bookTestAppointment(t, b, patient.ID, doctor.ID)
			got, err := b.CancelAppointment(appointment.ID, "conflict", tc.requester)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Status)
			assert.Equal(t, "conflict", got.Notes)
		})
	}
}

func TestCancelAppointmentRejectsStrangers(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "op@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "od@clinic.test", models.RoleDoctor)
	stranger := registerUser(t, b, "os@clinic.test", models.RolePatient)

	appointment := bookTestAppointment(t, b, patient.ID, doctor.ID)
	_, err := b.CancelAppointment(appointment.ID, "", stranger.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, PermissionDenied))
	assert.Equal(t, models.StatusPending, b.Store().AppointmentByID(appointment.ID).Status)
}

func TestRescheduleAppointment(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "rp@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "rd@clinic.test", models.RoleDoctor)
	appointment := bookTestAppointment(t, b, patient.ID, doctor.ID)

	got, err := b.RescheduleAppointment(RescheduleInput{
		AppointmentID:   appointment.ID,
		AppointmentDate: "2026-09-15",
		StartTime:       "11:00",
		EndTime:         "11:30",
		RequesterID:     patient.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRescheduled, got.Status)
	assert.Equal(t, "2026-09-15", got.AppointmentDate)

	// invalid times leave the appointment untouched
	_, err = b.RescheduleAppointment(RescheduleInput{
		AppointmentID:   appointment.ID,
		AppointmentDate: "2026-09-15",
		StartTime:       "12:00",
		EndTime:         "11:00",
		RequesterID:     patient.ID,
	})
	require.Error(t, err)
	assert.True(t, IsKind(err, InvalidInput))
	assert.Equal(t, "11:00", b.Store().AppointmentByID(appointment.ID).StartTime)
}

func TestDoctorStatusTransitions(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "tp@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "td@clinic.test", models.RoleDoctor)

	appointment := bookTestAppointment(t, b, patient.ID, doctor.ID)

	_, err := b.ConfirmAppointment(appointment.ID, patient.ID)
	require.Error(t, err)
	assert.True(t, IsKind(err, PermissionDenied))

	got, err := b.ConfirmAppointment(appointment.ID, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, got.Status)

	got, err = b.CompleteAppointment(appointment.ID, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, got.Status)

	other := bookTestAppointment(t, b, patient.ID, doctor.ID)
	got, err = b.MarkNoShow(other.ID, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoShow, got.Status)
}

func TestVerifyDoctorNotifies(t *testing.T) {
	b := newTestBackend(t)
	doctor := registerUser(t, b, "vd@clinic.test", models.RoleDoctor)

	profile, err := b.VerifyDoctor(doctor.ID, models.VerificationApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.VerificationApproved, profile.VerificationStatus)

	notifications := b.Store().NotificationsForUser(doctor.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotificationVerification, notifications[0].Type)
}

func TestListDoctorsOnlyVerified(t *testing.T) {
	b := newTestBackend(t)
	approved := registerUser(t, b, "ok@clinic.test", models.RoleDoctor)
	registerUser(t, b, "pending@clinic.test", models.RoleDoctor)

	_, err := b.VerifyDoctor(approved.ID, models.VerificationApproved, "")
	require.NoError(t, err)

	doctors, err := b.ListDoctors()
	require.NoError(t, err)
	require.Len(t, doctors, 1)
	assert.Equal(t, approved.ID, doctors[0].UserID)
}

func TestNotificationReads(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "np@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "nd@clinic.test", models.RoleDoctor)
	bookTestAppointment(t, b, patient.ID, doctor.ID)
	bookTestAppointment(t, b, patient.ID, doctor.ID)

	notifications, err := b.GetNotifications(patient.ID)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.False(t, notifications[0].IsRead)

	require.NoError(t, b.MarkNotificationRead(notifications[0].ID))
	assert.True(t, b.Store().NotificationByID(notifications[0].ID).IsRead)

	require.NoError(t, b.MarkAllNotificationsRead(patient.ID))
	for _, n := range b.Store().NotificationsForUser(patient.ID) {
		assert.True(t, n.IsRead)
	}

	err = b.MarkNotificationRead("missing")
	require.Error(t, err)
	assert.True(t, IsKind(err, NotFound))
}

func TestAuditReportsDanglingReferences(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "ap@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "ad@clinic.test", models.RoleDoctor)
	bookTestAppointment(t, b, patient.ID, doctor.ID)

	report, err := b.Audit()
	require.NoError(t, err)
	assert.Empty(t, report.Issues)

	b.Store().AddAppointment(&models.Appointment{
		ID:              "orphan",
		PatientID:       "missing-patient",
		DoctorID:        doctor.ID,
		AppointmentDate: "2026-09-14",
		StartTime:       "10:00",
		EndTime:         "10:30",
		Status:          models.StatusPending,
	})
	report, err = b.Audit()
	require.NoError(t, err)
	assert.NotEmpty(t, report.Issues)
}
