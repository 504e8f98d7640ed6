package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db}
}

const notificationColumns = `id, employee_id, type, title, message, date, read, read_at`

func scanNotification(row interface{ Scan(dest ...any) error }) (notification.Notification, error) {
	var (
		n      notification.Notification
		date   string
		readAt sql.NullString
	)
	if err := row.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Message, &date, &n.Read, &readAt); err != nil {
		return notification.Notification{}, err
	}
	var err error
	if n.Date, err = parseTime(date); err != nil {
		return notification.Notification{}, fmt.Errorf("parsing date: %w", err)
	}
	if readAt.Valid {
		t, err := parseTime(readAt.String)
		if err != nil {
			return notification.Notification{}, fmt.Errorf("parsing read at: %w", err)
		}
		n.ReadAt = &t
	}
	return n, nil
}

// Create implements notification.Repository.
func (r *notificationRepository) Create(ctx context.Context, n notification.Notification) error {
	query := `INSERT INTO notifications (` + notificationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		n.ID, n.EmployeeID, n.Type, n.Title, n.Message, formatTime(n.Date), n.Read, nullTime(n.ReadAt))
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// GetByID implements notification.Repository.
func (r *notificationRepository) GetByID(ctx context.Context, employeeID, id string) (notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ? AND employee_id = ?`
	n, err := scanNotification(r.db.conn(ctx).QueryRowContext(ctx, query, id, employeeID))
	if err == sql.ErrNoRows {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	if err != nil {
		return notification.Notification{}, fmt.Errorf("querying notification: %w", err)
	}
	return n, nil
}

// ListByEmployee implements notification.Repository.
func (r *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, unreadOnly bool, limit int) ([]notification.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE employee_id = ?`
	args := []any{employeeID}
	if unreadOnly {
		query += ` AND read = 0`
	}
	query += ` ORDER BY seq DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	out := make([]notification.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// UnreadCount implements notification.Repository.
func (r *notificationRepository) UnreadCount(ctx context.Context, employeeID string) (int, error) {
	var count int
	err := r.db.conn(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE employee_id = ? AND read = 0`, employeeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead implements notification.Repository. Marking an already read notification keeps its read_at.
func (r *notificationRepository) MarkRead(ctx context.Context, employeeID, id string, at time.Time) error {
	result, err := r.db.conn(ctx).ExecContext(ctx, `
		UPDATE notifications
		SET read = 1, read_at = COALESCE(read_at, ?)
		WHERE id = ? AND employee_id = ?
	`, formatTime(at), id, employeeID)
	if err != nil {
		return fmt.Errorf("marking notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return notification.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead implements notification.Repository.
func (r *notificationRepository) MarkAllRead(ctx context.Context, employeeID string, at time.Time) (int, error) {
	result, err := r.db.conn(ctx).ExecContext(ctx,
		`UPDATE notifications SET read = 1, read_at = ? WHERE employee_id = ? AND read = 0`,
		formatTime(at), employeeID)
	if err != nil {
		return 0, fmt.Errorf("marking notifications read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}
	return int(rows), nil
}
