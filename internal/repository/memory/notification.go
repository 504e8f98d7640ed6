package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
)

type notificationRepository struct {
	mu sync.RWMutex
	// per employee, oldest first; reads walk it backwards
	logs map[string][]notification.Notification
}

func NewNotificationRepository() notification.Repository {
	return &notificationRepository{logs: make(map[string][]notification.Notification)}
}

// Create implements notification.Repository.
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.logs[n.EmployeeID] = append(r.logs[n.EmployeeID], n)
	return nil
}

// GetByID implements notification.Repository.
func (r *notificationRepository) GetByID(ctx context.Context, employeeID, id string) (notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.logs[employeeID] {
		if n.ID == id {
			return n, nil
		}
	}
	return notification.Notification{}, notification.ErrNotificationNotFound
}

// ListByEmployee implements notification.Repository.
func (r *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log := r.logs[employeeID]
	out := make([]notification.Notification, 0)
	for i := len(log) - 1; i >= 0; i-- {
		if unreadOnly && log[i].Read {
			continue
		}
		out = append(out, log[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// UnreadCount implements notification.Repository.
func (r *notificationRepository) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, n := range r.logs[employeeID] {
		if !n.Read {
			count++
		}
	}
	return count, nil
}

// MarkRead implements notification.Repository.
func (r *notificationRepository) MarkRead(ctx context.Context, employeeID, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[employeeID]
	for i := range log {
		if log[i].ID != id {
			continue
		}
		if !log[i].Read {
			log[i].Read = true
			log[i].ReadAt = &at
		}
		return nil
	}
	return notification.ErrNotificationNotFound
}

// MarkAllRead implements notification.Repository.
func (r *notificationRepository) MarkAllRead(ctx context.Context, employeeID string, at time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	updated := 0
	log := r.logs[employeeID]
	for i := range log {
		if !log[i].Read {
			log[i].Read = true
			log[i].ReadAt = &at
			updated++
		}
	}
	return updated, nil
}
