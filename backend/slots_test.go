package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicbook/clinic-app/models"
)

// 2026-09-14 is a Monday.
const mondayDate = "2026-09-14"

func mondaySchedule(windows ...models.TimeWindow) models.WeeklySchedule {
	return models.WeeklySchedule{"monday": windows}
}

func TestGenerateSlotsWindowEndIsExclusive(t *testing.T) {
	weekly := mondaySchedule(models.TimeWindow{StartTime: "09:00", EndTime: "10:00", IsAvailable: true})
	assert.Equal(t, []string{"09:00", "09:30"}, GenerateSlots(weekly, nil, mondayDate))
}

func TestGenerateSlotsSkipsUnavailableWindows(t *testing.T) {
	weekly := mondaySchedule(
		models.TimeWindow{StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
		models.TimeWindow{StartTime: "13:00", EndTime: "14:00", IsAvailable: false},
	)
	assert.Equal(t, []string{"09:00", "09:30"}, GenerateSlots(weekly, nil, mondayDate))
}

func TestGenerateSlotsBlockedDateWins(t *testing.T) {
	weekly := mondaySchedule(models.TimeWindow{StartTime: "09:00", EndTime: "17:00", IsAvailable: true})
	assert.Empty(t, GenerateSlots(weekly, models.StringList{mondayDate}, mondayDate))
}

func TestGenerateSlotsNoWindowForWeekday(t *testing.T) {
	weekly := models.WeeklySchedule{"tuesday": {{StartTime: "09:00", EndTime: "12:00", IsAvailable: true}}}
	assert.Empty(t, GenerateSlots(weekly, nil, mondayDate))
}

func TestGenerateSlotsMergesWindowsSorted(t *testing.T) {
	weekly := mondaySchedule(
		models.TimeWindow{StartTime: "14:00", EndTime: "15:00", IsAvailable: true},
		models.TimeWindow{StartTime: "09:00", EndTime: "10:00", IsAvailable: true},
	)
	assert.Equal(t, []string{"09:00", "09:30", "14:00", "14:30"}, GenerateSlots(weekly, nil, mondayDate))
}

func TestGenerateSlotsBadDate(t *testing.T) {
	weekly := mondaySchedule(models.TimeWindow{StartTime: "09:00", EndTime: "10:00", IsAvailable: true})
	assert.Empty(t, GenerateSlots(weekly, nil, "not-a-date"))
}

func TestExcludeBookedOverlaps(t *testing.T) {
	slots := []string{"09:00", "09:30", "10:00", "10:30"}
	appointments := []*models.Appointment{
		{StartTime: "09:30", EndTime: "10:30", Status: models.StatusConfirmed},
	}
	assert.Equal(t, []string{"09:00", "10:30"}, excludeBooked(slots, appointments))
}

func TestExcludeBookedIgnoresCancelled(t *testing.T) {
	slots := []string{"09:00", "09:30"}
	appointments := []*models.Appointment{
		{StartTime: "09:00", EndTime: "09:30", Status: models.StatusCancelledByPatient},
		{StartTime: "09:30", EndTime: "10:00", Status: models.StatusCancelled},
	}
	assert.Equal(t, slots, excludeBooked(slots, appointments))
}

func TestGetAvailableSlotsEndToEnd(t *testing.T) {
	b := newTestBackend(t)
	patient := registerUser(t, b, "slotp@clinic.test", models.RolePatient)
	doctor := registerUser(t, b, "slotd@clinic.test", models.RoleDoctor)

	weekly := mondaySchedule(models.TimeWindow{StartTime: "09:00", EndTime: "11:00", IsAvailable: true})
	require.NoError(t, b.SetDoctorAvailability(doctor.ID, weekly, nil))

	slots, err := b.GetAvailableSlots(doctor.ID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slots)

	bookTestAppointment(t, b, patient.ID, doctor.ID) // 09:00-09:30

	slots, err = b.GetAvailableSlots(doctor.ID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:30", "10:00", "10:30"}, slots)

	// cancelling frees the slot again
	appointment := b.Store().Appointments()[0]
	_, err = b.CancelAppointment(appointment.ID, "", patient.ID)
	require.NoError(t, err)

	slots, err = b.GetAvailableSlots(doctor.ID, mondayDate)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30"}, slots)

	_, err = b.GetAvailableSlots("missing", mondayDate)
	require.Error(t, err)
	assert.True(t, IsKind(err, NotFound))
}
