package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type leaveRequestRepository struct {
	db *DB
}

func NewLeaveRequestRepository(db *DB) leave.RequestRepository {
	return &leaveRequestRepository{db: db}
}

const requestColumns = `id, employee_id, leave_type, from_date, to_date, days, reason, status,
	applied_on, reviewed_on, reviewed_by, comments`

func scanRequest(row interface{ Scan(dest ...any) error }) (leave.LeaveRequest, error) {
	var (
		req                  leave.LeaveRequest
		fromDate, toDate     string
		appliedOn            string
		reviewedOn           sql.NullString
		reviewedBy, comments sql.NullString
	)
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &req.LeaveType, &fromDate, &toDate, &req.Days, &req.Reason, &req.Status,
		&appliedOn, &reviewedOn, &reviewedBy, &comments,
	); err != nil {
		return leave.LeaveRequest{}, err
	}

	var err error
	if req.FromDate, err = timemath.ParseDate(fromDate); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("parsing from date: %w", err)
	}
	if req.ToDate, err = timemath.ParseDate(toDate); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("parsing to date: %w", err)
	}
	if req.AppliedOn, err = parseTime(appliedOn); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("parsing applied on: %w", err)
	}
	if reviewedOn.Valid {
		t, err := parseTime(reviewedOn.String)
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("parsing reviewed on: %w", err)
		}
		req.ReviewedOn = &t
	}
	if reviewedBy.Valid {
		req.ReviewedBy = &reviewedBy.String
	}
	if comments.Valid {
		req.Comments = &comments.String
	}
	return req, nil
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) error {
	query := `INSERT INTO leave_requests (` + requestColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		req.ID, req.EmployeeID, req.LeaveType,
		req.FromDate.Format(timemath.DateLayout), req.ToDate.Format(timemath.DateLayout),
		req.Days, req.Reason, req.Status, formatTime(req.AppliedOn),
		nullTime(req.ReviewedOn), nullString(req.ReviewedBy), nullString(req.Comments),
	)
	if err != nil {
		return fmt.Errorf("inserting leave request: %w", err)
	}
	return nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM leave_requests WHERE id = ?`
	req, err := scanRequest(r.db.conn(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("querying leave request: %w", err)
	}
	return req, nil
}

// Update implements leave.RequestRepository. applied_on is never rewritten.
func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	query := `
		UPDATE leave_requests
		SET leave_type = ?, from_date = ?, to_date = ?, days = ?, reason = ?, status = ?,
		    reviewed_on = ?, reviewed_by = ?, comments = ?
		WHERE id = ?
	`
	result, err := r.db.conn(ctx).ExecContext(ctx, query,
		req.LeaveType, req.FromDate.Format(timemath.DateLayout), req.ToDate.Format(timemath.DateLayout),
		req.Days, req.Reason, req.Status,
		nullTime(req.ReviewedOn), nullString(req.ReviewedBy), nullString(req.Comments),
		req.ID,
	)
	if err != nil {
		return fmt.Errorf("updating leave request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.RequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	var (
		where []string
		args  []any
	)
	if filter.EmployeeID != "" {
		where = append(where, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + requestColumns + ` FROM leave_requests`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY applied_on DESC, id DESC`

	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// IsOnLeave implements leave.RequestRepository.
func (r *leaveRequestRepository) IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = ?1 AND status = 'approved' AND from_date <= ?2 AND to_date >= ?2
		)
	`

	var exists bool
	if err := r.db.conn(ctx).QueryRowContext(ctx, query, employeeID, date.Format(timemath.DateLayout)).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking leave coverage: %w", err)
	}
	return exists, nil
}
