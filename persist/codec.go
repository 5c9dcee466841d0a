// Package persist projects the in-memory collections into namespaced
// storage slots and rehydrates them on startup. Persistence is
// best-effort: a failed write never interrupts the mutation that
// requested it.
package persist

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/storage"
	"github.com/clinicbook/clinic-app/store"
)

// Namespace prefixes every storage slot this codec owns.
const Namespace = "clinicmock"

type Codec struct {
	store    *store.Store
	medium   storage.Storage
	autosave *cron.Cron
}

func NewCodec(st *store.Store, medium storage.Storage) *Codec {
	return &Codec{store: st, medium: medium}
}

// SlotKey returns the storage key for one collection.
func SlotKey(kind store.Kind) string {
	return fmt.Sprintf("%s:%s", Namespace, kind)
}

// Save serializes the current collection for kind into its slot.
func (c *Codec) Save(kind store.Kind) error {
	var payload interface{}
	switch kind {
	case store.KindUsers:
		payload = c.store.Users()
	case store.KindDoctorProfiles:
		payload = c.store.DoctorProfiles()
	case store.KindPatientProfiles:
		payload = c.store.PatientProfiles()
	case store.KindAppointments:
		payload = c.store.Appointments()
	case store.KindNotifications:
		payload = c.store.Notifications()
	default:
		return fmt.Errorf("unknown collection kind %q", kind)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("serialize %s: %w", kind, err)
	}
	if err := c.medium.Set(SlotKey(kind), string(data)); err != nil {
		return fmt.Errorf("write slot %s: %w", kind, err)
	}
	return nil
}

// Load reads the slot for kind and, only when the decoded collection is
// non-empty, replaces the in-memory one. An empty or missing slot never
// clears a populated store; a corrupted write must not lose a session.
func (c *Codec) Load(kind store.Kind) error {
	raw, ok := c.medium.Get(SlotKey(kind))
	if !ok || raw == "" {
		return nil
	}
	switch kind {
	case store.KindUsers:
		var users []*models.User
		if err := json.Unmarshal([]byte(raw), &users); err != nil {
			return fmt.Errorf("decode slot %s: %w", kind, err)
		}
		if len(users) > 0 {
			c.store.ReplaceUsers(users)
		}
	case store.KindDoctorProfiles:
		var profiles []*models.DoctorProfile
		if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
			return fmt.Errorf("decode slot %s: %w", kind, err)
		}
		if len(profiles) > 0 {
			c.store.ReplaceDoctorProfiles(profiles)
		}
	case store.KindPatientProfiles:
		var profiles []*models.PatientProfile
		if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
			return fmt.Errorf("decode slot %s: %w", kind, err)
		}
		if len(profiles) > 0 {
			c.store.ReplacePatientProfiles(profiles)
		}
	case store.KindAppointments:
		var appointments []*models.Appointment
		if err := json.Unmarshal([]byte(raw), &appointments); err != nil {
			return fmt.Errorf("decode slot %s: %w", kind, err)
		}
		if len(appointments) > 0 {
			c.store.ReplaceAppointments(appointments)
		}
	case store.KindNotifications:
		var notifications []*models.Notification
		if err := json.Unmarshal([]byte(raw), &notifications); err != nil {
			return fmt.Errorf("decode slot %s: %w", kind, err)
		}
		if len(notifications) > 0 {
			c.store.ReplaceNotifications(notifications)
		}
	default:
		return fmt.Errorf("unknown collection kind %q", kind)
	}
	return nil
}

// SaveAll persists every collection sequentially, logging failures.
func (c *Codec) SaveAll() {
	for _, kind := range store.Kinds {
		if err := c.Save(kind); err != nil {
			log.Printf("persist: save %s failed: %v", kind, err)
		}
	}
}

// LoadAll rehydrates every collection, logging failures.
func (c *Codec) LoadAll() {
	for _, kind := range store.Kinds {
		if err := c.Load(kind); err != nil {
			log.Printf("persist: load %s failed: %v", kind, err)
		}
	}
}

// StartAutosave schedules SaveAll at a fixed interval as a safety net
// against missed explicit saves. interval uses cron's @every syntax,
// e.g. "@every 30s".
func (c *Codec) StartAutosave(interval string) error {
	if c.autosave != nil {
		return fmt.Errorf("autosave already running")
	}
	cr := cron.New()
	if _, err := cr.AddFunc(interval, c.SaveAll); err != nil {
		return err
	}
	cr.Start()
	c.autosave = cr
	return nil
}

// StopAutosave halts the autosave schedule. Safe to call when autosave
// was never started.
func (c *Codec) StopAutosave() {
	if c.autosave != nil {
		c.autosave.Stop()
		c.autosave = nil
	}
}
