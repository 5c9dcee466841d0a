package models

import (
	"time"
)

type NotificationType string

const (
	NotificationAppointment  NotificationType = "appointment"
	NotificationVerification NotificationType = "verification"
	NotificationSystem       NotificationType = "system"
)

type Notification struct {
	ID        string           `json:"id" gorm:"primaryKey"`
	UserID    string           `json:"user_id" gorm:"index"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	IsRead    bool             `json:"is_read"`
	Type      NotificationType `json:"type"`
	RelatedID string           `json:"related_id,omitempty"` // e.g. an appointment id
	CreatedAt time.Time        `json:"created_at"`
}
