package notification

import (
	"context"
	"time"
)

// Repository defines the notification repository interface
type Repository interface {
	Create(ctx context.Context, n Notification) error
	// GetByID only finds notifications owned by the employee.
	GetByID(ctx context.Context, employeeID, id string) (Notification, error)
	// ListByEmployee returns newest first. limit <= 0 means no limit.
	ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool, limit int) ([]Notification, error)
	UnreadCount(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, employeeID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, employeeID string, at time.Time) (int, error)
}
