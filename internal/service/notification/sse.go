package notification

import (
	"context"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/sse"
)

const sseEventName = "notification"

// HubSubscriber forwards published notifications to the employee's open streams.
func HubSubscriber(hub *sse.Hub) notification.Subscriber {
	return func(ctx context.Context, n notification.Notification) error {
		hub.Publish(n.EmployeeID, sse.Event{
			EmployeeID: n.EmployeeID,
			Event:      sseEventName,
			Data:       notification.ToResponse(n),
		})
		return nil
	}
}
