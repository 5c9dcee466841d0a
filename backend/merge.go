package backend

import (
	"encoding/json"
	"log"

	"github.com/clinicbook/clinic-app/bus"
	"github.com/clinicbook/clinic-app/models"
)

// applyEnvelope merges one broadcast mutation from another tab into
// this tab's stores. The rules:
//
//   - own envelopes are discarded (loop suppression; the storage
//     fallback echoes everything back),
//   - stale envelopes are discarded (a reloading tab must not replay
//     old state),
//   - full objects upsert by id, patches touch only the fields present,
//   - appointment creates are insert-only, so an out-of-order create
//     can never resurrect a status the local tab already advanced.
//
// The merge itself is idempotent: applying the same envelope twice
// leaves the same state as applying it once.
func (b *MockBackend) applyEnvelope(env bus.Envelope) {
	if env.SourceID == b.sourceID {
		return
	}
	if env.Stale() {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	switch env.Type {
	case bus.EventUserAdded, bus.EventUserUpdated:
		var user models.User
		if !decode(env, &user) {
			return
		}
		b.store.UpsertUser(&user)

	case bus.EventUserDeactivated:
		var patch bus.UserFlagPatch
		if !decode(env, &patch) {
			return
		}
		if user := b.store.UserByID(patch.ID); user != nil {
			user.IsActive = patch.IsActive
		}

	case bus.EventDoctorProfileUpdated:
		var profile models.DoctorProfile
		if !decode(env, &profile) {
			return
		}
		b.store.UpsertDoctorProfile(&profile)

	case bus.EventPatientProfileUpdated:
		var profile models.PatientProfile
		if !decode(env, &profile) {
			return
		}
		b.store.UpsertPatientProfile(&profile)

	case bus.EventAvailabilityUpdated:
		var payload bus.AvailabilityPayload
		if !decode(env, &payload) {
			return
		}
		var weekly models.WeeklySchedule
		if len(payload.WeeklySchedule) > 0 {
			if err := json.Unmarshal(payload.WeeklySchedule, &weekly); err != nil {
				log.Printf("backend: bad weekly schedule in %s envelope: %v", env.Type, err)
				return
			}
		}
		profile := b.store.DoctorProfileByUserID(payload.DoctorID)
		if profile == nil {
			// Schedule arrived before the profile did; keep a skeleton
			// so slots resolve, the full profile upserts later.
			b.store.AddDoctorProfile(&models.DoctorProfile{
				UserID:             payload.DoctorID,
				VerificationStatus: models.VerificationPending,
				WeeklySchedule:     weekly,
				BlockedDates:       payload.BlockedDates,
			})
			return
		}
		profile.WeeklySchedule = weekly
		profile.BlockedDates = payload.BlockedDates

	case bus.EventAppointmentCreated:
		var appointment models.Appointment
		if !decode(env, &appointment) {
			return
		}
		// Insert-only: an existing record means local state is at
		// least as advanced as the create.
		if b.store.AppointmentByID(appointment.ID) == nil {
			b.store.AddAppointment(&appointment)
		}

	case bus.EventAppointmentUpdated, bus.EventAppointmentCancelled:
		var patch bus.AppointmentPatch
		if !decode(env, &patch) {
			return
		}
		appointment := b.store.AppointmentByID(patch.ID)
		if appointment == nil {
			return
		}
		if patch.Status != nil {
			appointment.Status = models.AppointmentStatus(*patch.Status)
		}
		if patch.Notes != nil {
			appointment.Notes = *patch.Notes
		}
		if patch.AppointmentDate != nil {
			appointment.AppointmentDate = *patch.AppointmentDate
		}
		if patch.StartTime != nil {
			appointment.StartTime = *patch.StartTime
		}
		if patch.EndTime != nil {
			appointment.EndTime = *patch.EndTime
		}

	case bus.EventNotificationAdded, bus.EventNotificationUpdated:
		var notification models.Notification
		if !decode(env, &notification) {
			return
		}
		b.store.UpsertNotification(&notification)

	case bus.EventNotificationRead:
		var patch bus.NotificationPatch
		if !decode(env, &patch) {
			return
		}
		if n := b.store.NotificationByID(patch.ID); n != nil {
			n.IsRead = patch.IsRead
		}

	default:
		log.Printf("backend: unknown sync envelope type %q", env.Type)
	}
}

func decode(env bus.Envelope, v interface{}) bool {
	if err := json.Unmarshal(env.Payload, v); err != nil {
		log.Printf("backend: bad %s payload: %v", env.Type, err)
		return false
	}
	return true
}
