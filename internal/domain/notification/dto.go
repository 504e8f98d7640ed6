package notification

import (
	"time"
)

// ============= Request DTOs =============

// ListRequest represents a request to list notifications
type ListRequest struct {
	UnreadOnly bool
	Limit      int
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID      string           `json:"id"`
	Type    NotificationType `json:"type"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Date    time.Time        `json:"date"`
	Read    bool             `json:"read"`
	ReadAt  *time.Time       `json:"read_at,omitempty"`
}

func ToResponse(n Notification) NotificationResponse {
	return NotificationResponse{
		ID:      n.ID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
		Date:    n.Date,
		Read:    n.Read,
		ReadAt:  n.ReadAt,
	}
}

// ListResponse represents a list of notifications
type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// MarkAllReadResponse reports how many notifications changed.
type MarkAllReadResponse struct {
	Updated int `json:"updated"`
}

// SSETokenResponse carries a short-lived token for the event stream.
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
