package backend

import (
	"sort"
	"strings"
	"time"

	"github.com/clinicbook/clinic-app/models"
)

// SlotDuration is the fixed length of every bookable slot.
const SlotDuration = 30 * time.Minute

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// GenerateSlots expands a doctor's weekly template into "HH:MM" slot
// starts for one date. It is schedule-only: a blocked date wins over
// any template, and excluding already-booked slots is the caller's job.
func GenerateSlots(weekly models.WeeklySchedule, blocked models.StringList, date string) []string {
	if blocked.Contains(date) {
		return []string{}
	}
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return []string{}
	}
	weekday := strings.ToLower(day.Weekday().String())

	slots := make([]string, 0)
	for _, window := range weekly[weekday] {
		if !window.IsAvailable {
			continue
		}
		start, err := time.Parse(timeLayout, window.StartTime)
		if err != nil {
			continue
		}
		end, err := time.Parse(timeLayout, window.EndTime)
		if err != nil {
			continue
		}
		// Emit from start inclusive; never a slot that would run past
		// the window's end.
		for t := start; !t.Add(SlotDuration).After(end); t = t.Add(SlotDuration) {
			slots = append(slots, t.Format(timeLayout))
		}
	}
	sort.Strings(slots)
	return slots
}

// excludeBooked drops slots consumed by a non-cancelled appointment.
// "HH:MM" 24h strings compare correctly as strings.
func excludeBooked(slots []string, appointments []*models.Appointment) []string {
	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		taken := false
		for _, a := range appointments {
			if a.Status.Cancelled() {
				continue
			}
			if slot >= a.StartTime && slot < a.EndTime {
				taken = true
				break
			}
		}
		if !taken {
			out = append(out, slot)
		}
	}
	return out
}
