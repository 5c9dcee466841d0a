package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TimeWindow is one bookable span inside a weekday, "HH:MM" 24h.
type TimeWindow struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// WeeklySchedule maps a lowercase weekday name ("monday" ...) to the
// windows the doctor works that day.
type WeeklySchedule map[string][]TimeWindow

// Value implements the driver.Valuer interface so the schedule can be
// stored in a JSONB column on the live path.
func (w WeeklySchedule) Value() (driver.Value, error) {
	if w == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface.
func (w *WeeklySchedule) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal WeeklySchedule: unsupported type %T", value)
	}
	return json.Unmarshal(data, w)
}

// StringList is a JSONB-backed list of strings (blocked dates, spoken
// languages, document URLs).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	jsonData, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to unmarshal StringList: unsupported type %T", value)
	}
	return json.Unmarshal(data, l)
}

// Contains reports whether s is present in the list.
func (l StringList) Contains(s string) bool {
	for _, v := range l {
		if v == s {
			return true
		}
	}
	return false
}
