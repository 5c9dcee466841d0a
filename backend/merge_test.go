package backend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicbook/clinic-app/bus"
	"github.com/clinicbook/clinic-app/models"
)

func envelopeFrom(t *testing.T, typ bus.EventType, payload interface{}, sourceID string) bus.Envelope {
	t.Helper()
	env, err := bus.NewEnvelope(typ, payload, sourceID)
	require.NoError(t, err)
	return env
}

func TestMergeIgnoresOwnEnvelopes(t *testing.T) {
	b := newTestBackend(t)
	user := &models.User{ID: "u1", Email: "self@clinic.test", FirstName: "Self", Role: models.RolePatient, IsActive: true}

	b.applyEnvelope(envelopeFrom(t, bus.EventUserAdded, user, b.SourceID()))
	assert.Nil(t, b.Store().UserByID("u1"), "own envelope must be suppressed")

	b.applyEnvelope(envelopeFrom(t, bus.EventUserAdded, user, "other-tab"))
	assert.NotNil(t, b.Store().UserByID("u1"))
}

func TestMergeIgnoresStaleEnvelopes(t *testing.T) {
	b := newTestBackend(t)
	env := envelopeFrom(t, bus.EventUserAdded,
		&models.User{ID: "u2", Email: "old@clinic.test", Role: models.RolePatient}, "other-tab")
	env.Timestamp = time.Now().Add(-bus.MaxAge - time.Second).UnixMilli()

	b.applyEnvelope(env)
	assert.Nil(t, b.Store().UserByID("u2"))
}

func TestMergeUserUpsertIsIdempotent(t *testing.T) {
	b := newTestBackend(t)
	user := &models.User{ID: "u3", Email: "a@clinic.test", FirstName: "First", Role: models.RolePatient, IsActive: true}

	env := envelopeFrom(t, bus.EventUserAdded, user, "other-tab")
	b.applyEnvelope(env)
	b.applyEnvelope(env)
	require.Len(t, b.Store().Users(), 1)

	user.FirstName = "Renamed"
	b.applyEnvelope(envelopeFrom(t, bus.EventUserUpdated, user, "other-tab"))
	require.Len(t, b.Store().Users(), 1)
	assert.Equal(t, "Renamed", b.Store().UserByID("u3").FirstName)
}

func TestMergeCreatedDoesNotResurrectStatus(t *testing.T) {
	b := newTestBackend(t)
	appointment := &models.Appointment{
		ID:              "a1",
		PatientID:       "p1",
		DoctorID:        "d1",
		AppointmentDate: "2026-09-14",
		StartTime:       "09:00",
		EndTime:         "09:30",
		Status:          models.StatusPending,
	}

	created := envelopeFrom(t, bus.EventAppointmentCreated, appointment, "other-tab")
	b.applyEnvelope(created)
	require.NotNil(t, b.Store().AppointmentByID("a1"))

	confirmed := string(models.StatusConfirmed)
	b.applyEnvelope(envelopeFrom(t, bus.EventAppointmentUpdated,
		bus.AppointmentPatch{ID: "a1", Status: &confirmed}, "other-tab"))
	assert.Equal(t, models.StatusConfirmed, b.Store().AppointmentByID("a1").Status)

	// a duplicate of the original create must not reset CONFIRMED
	b.applyEnvelope(created)
	assert.Equal(t, models.StatusConfirmed, b.Store().AppointmentByID("a1").Status)
	require.Len(t, b.Store().Appointments(), 1)
}

func TestMergeCancelledPatchesStatusAndNotes(t *testing.T) {
	b := newTestBackend(t)
	b.Store().AddAppointment(&models.Appointment{
		ID:              "a2",
		PatientID:       "p1",
		DoctorID:        "d1",
		AppointmentDate: "2026-09-14",
		StartTime:       "10:00",
		EndTime:         "10:30",
		Status:          models.StatusConfirmed,
		Reason:          "Checkup",
	})

	cancelled := string(models.StatusCancelledByPatient)
	notes := "patient called in"
	b.applyEnvelope(envelopeFrom(t, bus.EventAppointmentCancelled,
		bus.AppointmentPatch{ID: "a2", Status: &cancelled, Notes: &notes}, "other-tab"))

	got := b.Store().AppointmentByID("a2")
	assert.Equal(t, models.StatusCancelledByPatient, got.Status)
	assert.Equal(t, "patient called in", got.Notes)
	// untouched fields survive the patch
	assert.Equal(t, "Checkup", got.Reason)
	assert.Equal(t, "10:00", got.StartTime)
}

func TestMergePatchForUnknownAppointmentIsDropped(t *testing.T) {
	b := newTestBackend(t)
	cancelled := string(models.StatusCancelled)
	b.applyEnvelope(envelopeFrom(t, bus.EventAppointmentCancelled,
		bus.AppointmentPatch{ID: "ghost", Status: &cancelled}, "other-tab"))
	assert.Empty(t, b.Store().Appointments())
}

func TestMergeNotificationRead(t *testing.T) {
	b := newTestBackend(t)
	b.Store().AddNotification(&models.Notification{ID: "n1", UserID: "u1", Title: "Hi"})

	b.applyEnvelope(envelopeFrom(t, bus.EventNotificationRead,
		bus.NotificationPatch{ID: "n1", IsRead: true}, "other-tab"))
	assert.True(t, b.Store().NotificationByID("n1").IsRead)
}

func TestMergeUserDeactivated(t *testing.T) {
	b := newTestBackend(t)
	b.Store().AddUser(&models.User{ID: "u4", Email: "x@clinic.test", Role: models.RolePatient, IsActive: true})

	b.applyEnvelope(envelopeFrom(t, bus.EventUserDeactivated,
		bus.UserFlagPatch{ID: "u4", IsActive: false}, "other-tab"))
	assert.False(t, b.Store().UserByID("u4").IsActive)
}

func TestMergeAvailabilityCreatesSkeletonProfile(t *testing.T) {
	b := newTestBackend(t)
	weekly := models.WeeklySchedule{
		"monday": {{StartTime: "09:00", EndTime: "12:00", IsAvailable: true}},
	}
	payload, err := bus.NewAvailabilityPayload("d9", weekly, []string{"2026-09-21"})
	require.NoError(t, err)

	b.applyEnvelope(envelopeFrom(t, bus.EventAvailabilityUpdated, payload, "other-tab"))

	profile := b.Store().DoctorProfileByUserID("d9")
	require.NotNil(t, profile)
	assert.Equal(t, models.StringList{"2026-09-21"}, profile.BlockedDates)
	assert.Len(t, profile.WeeklySchedule["monday"], 1)
}

func TestMergeUnknownTypeIsIgnored(t *testing.T) {
	b := newTestBackend(t)
	b.applyEnvelope(envelopeFrom(t, bus.EventType("mystery_event"), map[string]string{"x": "y"}, "other-tab"))
	assert.Empty(t, b.Store().Users())
	assert.Empty(t, b.Store().Appointments())
}
