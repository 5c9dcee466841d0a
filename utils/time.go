package utils

import "time"

// CombineDateTime parses a "YYYY-MM-DD" date and an "HH:MM" clock time
// into a single local-time instant.
func CombineDateTime(date, clock string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04", date+" "+clock, time.Local)
}
