package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/memory"
)

var fixedNow = time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, workers int) notification.Service {
	t.Helper()
	svc := NewNotificationService(memory.NewNotificationRepository(), Config{
		WorkerCount: workers,
		QueueSize:   16,
		Now:         func() time.Time { return fixedNow },
	})
	t.Cleanup(svc.Stop)
	return svc
}

func leaveNote(employeeID, title string) notification.Notification {
	return notification.Notification{
		EmployeeID: employeeID,
		Type:       notification.TypeLeave,
		Title:      title,
		Message:    title,
	}
}

func TestPublishStoresAndAssignsDefaults(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	n, err := svc.Publish(ctx, leaveNote("E1", "Leave Request Submitted"))
	require.NoError(t, err)
	assert.NotEmpty(t, n.ID)
	assert.Equal(t, fixedNow, n.Date)
	assert.False(t, n.Read)

	list, err := svc.List(ctx, "E1", notification.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.UnreadCount)

	_, err = svc.Publish(ctx, notification.Notification{EmployeeID: "E1", Type: "email", Title: "x"})
	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
}

func TestPublishSurvivesFailingSubscribers(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	var got []string
	svc.Subscribe(func(ctx context.Context, n notification.Notification) error {
		panic("subscriber bug")
	})
	svc.Subscribe(func(ctx context.Context, n notification.Notification) error {
		return errors.New("downstream unavailable")
	})
	svc.Subscribe(func(ctx context.Context, n notification.Notification) error {
		got = append(got, n.Title)
		return nil
	})

	_, err := svc.Publish(ctx, leaveNote("E1", "Leave Request Approved"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Leave Request Approved"}, got)

	count, err := svc.UnreadCount(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "storage is not affected by subscriber failures")
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	calls := 0
	sub := svc.Subscribe(func(ctx context.Context, n notification.Notification) error {
		calls++
		return nil
	})
	other := svc.Subscribe(func(ctx context.Context, n notification.Notification) error { return nil })
	defer other.Close()

	_, err := svc.Publish(ctx, leaveNote("E1", "one"))
	require.NoError(t, err)

	sub.Close()
	sub.Close()

	_, err = svc.Publish(ctx, leaveNote("E1", "two"))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestListIsNewestFirstAndMarkRead(t *testing.T) {
	svc := newTestService(t, 0)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"first", "second", "third"} {
		n, err := svc.Publish(ctx, leaveNote("E1", title))
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	list, err := svc.List(ctx, "E1", notification.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)
	assert.Equal(t, "third", list.Notifications[0].Title)
	assert.Equal(t, "first", list.Notifications[2].Title)

	read, err := svc.MarkRead(ctx, "E1", ids[0])
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)
	assert.Equal(t, fixedNow, *read.ReadAt)

	_, err = svc.MarkRead(ctx, "E2", ids[1])
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	updated, err := svc.MarkAllRead(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 2, updated)

	count, err := svc.UnreadCount(ctx, "E1")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotifyWithWorkers(t *testing.T) {
	svc := newTestService(t, 2)
	ctx := context.Background()

	var (
		mu   sync.Mutex
		seen int
		done = make(chan struct{})
	)
	svc.Subscribe(func(ctx context.Context, n notification.Notification) error {
		mu.Lock()
		defer mu.Unlock()
		seen++
		if seen == 5 {
			close(done)
		}
		return nil
	})

	for i := 0; i < 5; i++ {
		require.NoError(t, svc.Notify(ctx, leaveNote("E1", "queued")))
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("queued notifications were not published")
	}

	count, err := svc.UnreadCount(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestNotifyAfterStopPublishesInline(t *testing.T) {
	svc := newTestService(t, 1)
	ctx := context.Background()
	svc.Stop()

	require.NoError(t, svc.Notify(ctx, leaveNote("E1", "late")))
	count, err := svc.UnreadCount(ctx, "E1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHubSubscriberForwardsToStream(t *testing.T) {
	svc := newTestService(t, 0)
	hub := sse.NewHub(4)
	sub := svc.Subscribe(HubSubscriber(hub))
	defer sub.Close()

	stream, cleanup := hub.Subscribe("E1")
	defer cleanup()

	_, err := svc.Publish(context.Background(), leaveNote("E1", "Leave Request Rejected"))
	require.NoError(t, err)

	ev := <-stream
	assert.Equal(t, "notification", ev.Event)
	resp, ok := ev.Data.(notification.NotificationResponse)
	require.True(t, ok)
	assert.Equal(t, "Leave Request Rejected", resp.Title)
}
