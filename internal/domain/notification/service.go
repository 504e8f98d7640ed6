package notification

import (
	"context"
)

// Subscriber receives every published notification after it is stored.
type Subscriber func(ctx context.Context, n Notification) error

// Service defines the notification service interface
type Service interface {
	Publish(ctx context.Context, n Notification) (Notification, error)
	// Notify hands the notification to the worker queue when one is configured,
	// otherwise it publishes synchronously.
	Notify(ctx context.Context, n Notification) error
	Subscribe(fn Subscriber) *Subscription

	List(ctx context.Context, employeeID string, req ListRequest) (*ListResponse, error)
	UnreadCount(ctx context.Context, employeeID string) (int, error)
	MarkRead(ctx context.Context, employeeID, id string) (Notification, error)
	MarkAllRead(ctx context.Context, employeeID string) (int, error)

	// Lifecycle
	Stop()
}
