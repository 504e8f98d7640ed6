package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationSelect = `
	SELECT id, employee_id, type, title, message, date, is_read, read_at
	FROM notifications
`

func scanNotification(row pgx.Row) (notification.Notification, error) {
	var (
		n     notification.Notification
		nType string
	)
	if err := row.Scan(&n.ID, &n.EmployeeID, &nType, &n.Title, &n.Message, &n.Date, &n.Read, &n.ReadAt); err != nil {
		return notification.Notification{}, err
	}
	n.Type = notification.NotificationType(nType)
	return n, nil
}

// Create creates a new notification
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notifications (id, employee_id, type, title, message, date, is_read, read_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := q.Exec(ctx, query,
		n.ID, n.EmployeeID, string(n.Type), n.Title, n.Message, n.Date, n.Read, n.ReadAt,
	); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification owned by the employee
func (r *notificationRepository) GetByID(ctx context.Context, employeeID, id string) (notification.Notification, error) {
	if !isUUID(id) {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	q := GetQuerier(ctx, r.db)

	n, err := scanNotification(q.QueryRow(ctx, notificationSelect+` WHERE id = $1 AND employee_id = $2`, id, employeeID))
	if err == pgx.ErrNoRows {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	if err != nil {
		return notification.Notification{}, fmt.Errorf("failed to get notification: %w", err)
	}
	return n, nil
}

// ListByEmployee retrieves notifications newest first
func (r *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	q := GetQuerier(ctx, r.db)

	query := notificationSelect + ` WHERE employee_id = $1`
	args := []interface{}{employeeID}
	if unreadOnly {
		query += ` AND is_read = FALSE`
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount returns the count of unread notifications
func (r *notificationRepository) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE employee_id = $1 AND is_read = FALSE`, employeeID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks one notification as read, keeping the first read_at
func (r *notificationRepository) MarkRead(ctx context.Context, employeeID, id string, at time.Time) error {
	if !isUUID(id) {
		return notification.ErrNotificationNotFound
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND employee_id = $2
	`, id, employeeID, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks all unread notifications of the employee as read
func (r *notificationRepository) MarkAllRead(ctx context.Context, employeeID string, at time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = $2 WHERE employee_id = $1 AND is_read = FALSE`,
		employeeID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
