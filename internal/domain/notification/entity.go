package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeave      NotificationType = "leave"
	TypeBalance    NotificationType = "balance"
	TypeAttendance NotificationType = "attendance"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeave,
		TypeBalance,
		TypeAttendance,
	}
}

func (t NotificationType) IsValid() bool {
	for _, v := range AllNotificationTypes() {
		if v == t {
			return true
		}
	}
	return false
}

// Notification represents a notification entity
type Notification struct {
	ID         string
	EmployeeID string
	Type       NotificationType
	Title      string
	Message    string
	Date       time.Time
	Read       bool
	ReadAt     *time.Time
}

// Validate checks the fields required before a notification is stored.
func (n Notification) Validate() error {
	if n.EmployeeID == "" {
		return ErrRecipientRequired
	}
	if !n.Type.IsValid() {
		return ErrInvalidNotificationType
	}
	if n.Title == "" {
		return ErrTitleRequired
	}
	return nil
}
