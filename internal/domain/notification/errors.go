package notification

import "errors"

// Notification domain errors
var (
	ErrNotificationNotFound    = errors.New("notification not found")
	ErrInvalidNotificationType = errors.New("invalid notification type")
	ErrRecipientRequired       = errors.New("notification recipient is required")
	ErrTitleRequired           = errors.New("notification title is required")
)
