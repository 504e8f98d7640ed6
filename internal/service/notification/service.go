package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
)

// Config holds notification service configuration
type Config struct {
	// WorkerCount is the number of background publishers. 0 publishes inline.
	WorkerCount int
	QueueSize   int // default: 1000
	Now         func() time.Time
}

type subscriber struct {
	id uint64
	fn notification.Subscriber
}

type service struct {
	repo   notification.Repository
	config Config

	mu     sync.RWMutex
	subs   []subscriber
	nextID uint64

	queue    chan notification.Notification
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
	stopped  bool
}

// NewNotificationService creates the notifier and starts its workers, if any.
func NewNotificationService(repo notification.Repository, cfg Config) notification.Service {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.WorkerCount < 0 {
		cfg.WorkerCount = 0
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &service{
		repo:   repo,
		config: cfg,
		stopCh: make(chan struct{}),
	}

	if cfg.WorkerCount > 0 {
		s.queue = make(chan notification.Notification, cfg.QueueSize)
		for i := 0; i < cfg.WorkerCount; i++ {
			s.wg.Add(1)
			go s.worker(i)
		}
		slog.Info("Notification service started", "workers", cfg.WorkerCount, "queue_size", cfg.QueueSize)
	}

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	publish := func(n notification.Notification) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := s.Publish(ctx, n); err != nil {
			slog.Error("Notification worker failed to publish", "worker", id, "employee_id", n.EmployeeID, "error", err)
		}
	}

	for {
		select {
		case n := <-s.queue:
			publish(n)
		case <-s.stopCh:
			// drain what is already queued
			for {
				select {
				case n := <-s.queue:
					publish(n)
				default:
					return
				}
			}
		}
	}
}

// Publish stores the notification, then hands it to every subscriber in
// subscription order. Subscriber failures are logged and never returned.
func (s *service) Publish(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	if n.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return notification.Notification{}, fmt.Errorf("generate notification id: %w", err)
		}
		n.ID = id.String()
	}
	if n.Date.IsZero() {
		n.Date = s.config.Now()
	}
	n.Read = false
	n.ReadAt = nil

	if err := n.Validate(); err != nil {
		return notification.Notification{}, err
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return notification.Notification{}, fmt.Errorf("store notification: %w", err)
	}

	s.mu.RLock()
	subs := append([]subscriber(nil), s.subs...)
	s.mu.RUnlock()

	for _, sub := range subs {
		s.deliver(ctx, sub, n)
	}
	return n, nil
}

func (s *service) deliver(ctx context.Context, sub subscriber, n notification.Notification) {
	defer func() {
		if p := recover(); p != nil {
			slog.Error("Notification subscriber panicked", "subscriber", sub.id, "notification_id", n.ID, "panic", p)
		}
	}()
	if err := sub.fn(ctx, n); err != nil {
		slog.Warn("Notification subscriber failed", "subscriber", sub.id, "notification_id", n.ID, "error", err)
	}
}

// Notify queues the notification when workers are running. A full queue, or a
// stopped service, falls back to publishing inline.
func (s *service) Notify(ctx context.Context, n notification.Notification) error {
	if s.enqueue(n) {
		return nil
	}
	_, err := s.Publish(ctx, n)
	return err
}

// enqueue never blocks. Holding the read lock keeps Stop from closing the
// workers between the check and the send.
func (s *service) enqueue(n notification.Notification) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.queue == nil || s.stopped {
		return false
	}
	select {
	case s.queue <- n:
		return true
	default:
		slog.Warn("Notification queue full, publishing inline", "employee_id", n.EmployeeID)
		return false
	}
}

// Subscribe registers fn for every notification published from now on.
func (s *service) Subscribe(fn notification.Subscriber) *notification.Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return notification.NewSubscription(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	})
}

// List returns the employee's notifications, newest first.
func (s *service) List(ctx context.Context, employeeID string, req notification.ListRequest) (*notification.ListResponse, error) {
	if req.Limit < 0 || req.Limit > 100 {
		req.Limit = 100
	}

	items, err := s.repo.ListByEmployee(ctx, employeeID, req.UnreadOnly, req.Limit)
	if err != nil {
		return nil, err
	}
	unread, err := s.repo.UnreadCount(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(items))
	for i, n := range items {
		responses[i] = notification.ToResponse(n)
	}
	return &notification.ListResponse{
		Notifications: responses,
		Total:         len(responses),
		UnreadCount:   unread,
	}, nil
}

// UnreadCount returns the count of unread notifications
func (s *service) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	return s.repo.UnreadCount(ctx, employeeID)
}

// MarkRead marks one of the employee's notifications as read and returns it.
func (s *service) MarkRead(ctx context.Context, employeeID, id string) (notification.Notification, error) {
	if err := s.repo.MarkRead(ctx, employeeID, id, s.config.Now()); err != nil {
		return notification.Notification{}, err
	}
	return s.repo.GetByID(ctx, employeeID, id)
}

// MarkAllRead marks all notifications as read for an employee
func (s *service) MarkAllRead(ctx context.Context, employeeID string) (int, error) {
	return s.repo.MarkAllRead(ctx, employeeID, s.config.Now())
}

// Stop waits for queued notifications to be published. Later Notify calls publish inline.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		slog.Info("Notification service stopped")
	})
}
