// Package bus carries mutation events between simulated tabs. Every
// store mutation that must be visible elsewhere is wrapped in an
// Envelope and published on one or more transports; receivers apply an
// idempotent merge, so duplicate and out-of-order delivery are
// tolerated by construction.
package bus

import (
	"encoding/json"
	"time"
)

// EventType tags the mutation an envelope carries. The merge receiver
// switches over every value; adding a type here means adding a case
// there.
type EventType string

const (
	EventAppointmentCreated    EventType = "appointment_created"
	EventAppointmentUpdated    EventType = "appointment_updated"
	EventAppointmentCancelled  EventType = "appointment_cancelled"
	EventNotificationAdded     EventType = "notification_added"
	EventNotificationUpdated   EventType = "notification_updated"
	EventNotificationRead      EventType = "notification_read"
	EventUserAdded             EventType = "user_added"
	EventUserUpdated           EventType = "user_updated"
	EventUserDeactivated       EventType = "user_deactivated"
	EventDoctorProfileUpdated  EventType = "doctor_profile_updated"
	EventPatientProfileUpdated EventType = "patient_profile_updated"
	EventAvailabilityUpdated   EventType = "availability_updated"
)

// Envelope is the wire form of one broadcast mutation. SourceID is the
// publishing tab's random id, used only for loop suppression: a tab
// that receives its own envelope discards it.
type Envelope struct {
	Type      EventType       `json:"type"`
	Timestamp int64           `json:"timestamp"` // epoch ms
	Payload   json.RawMessage `json:"payload"`
	SourceID  string          `json:"source_id"`
}

// MaxAge is the freshness window: envelopes older than this are
// discarded so a reloading tab does not replay stale state.
const MaxAge = 5 * time.Second

// NewEnvelope wraps payload for broadcast, stamping the current time.
func NewEnvelope(t EventType, payload interface{}, sourceID string) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		Type:      t,
		Timestamp: time.Now().UnixMilli(),
		Payload:   data,
		SourceID:  sourceID,
	}, nil
}

// Stale reports whether the envelope fell out of the freshness window.
func (e Envelope) Stale() bool {
	return time.Since(time.UnixMilli(e.Timestamp)) > MaxAge
}

// AppointmentPatch is the targeted patch carried by every appointment
// envelope except creation. Only the fields present travel; status
// transitions therefore can never be resurrected by a stale
// full-object create, because creates are insert-only and everything
// else is a patch.
type AppointmentPatch struct {
	ID              string  `json:"id"`
	Status          *string `json:"status,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	AppointmentDate *string `json:"appointment_date,omitempty"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
}

// NotificationPatch marks one notification read.
type NotificationPatch struct {
	ID     string `json:"id"`
	IsRead bool   `json:"is_read"`
}

// UserFlagPatch carries a user deactivation.
type UserFlagPatch struct {
	ID       string `json:"id"`
	IsActive bool   `json:"is_active"`
}

// AvailabilityPayload carries a doctor's schedule change. The weekly
// schedule travels pre-encoded so the bus stays decoupled from the
// model types.
type AvailabilityPayload struct {
	DoctorID       string          `json:"doctor_id"`
	WeeklySchedule json.RawMessage `json:"weekly_schedule"`
	BlockedDates   []string        `json:"blocked_dates"`
}

// NewAvailabilityPayload encodes a schedule change for broadcast.
func NewAvailabilityPayload(doctorID string, weekly interface{}, blockedDates []string) (AvailabilityPayload, error) {
	data, err := json.Marshal(weekly)
	if err != nil {
		return AvailabilityPayload{}, err
	}
	return AvailabilityPayload{
		DoctorID:       doctorID,
		WeeklySchedule: data,
		BlockedDates:   blockedDates,
	}, nil
}
