package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveRequestSelect = `
	SELECT id, employee_id, leave_type, from_date, to_date, days, reason, status,
		   applied_on, reviewed_on, reviewed_by, comments
	FROM leave_requests
`

func scanLeaveRequest(row pgx.Row) (leave.LeaveRequest, error) {
	var (
		req               leave.LeaveRequest
		leaveType, status string
	)
	if err := row.Scan(
		&req.ID, &req.EmployeeID, &leaveType, &req.FromDate, &req.ToDate, &req.Days, &req.Reason, &status,
		&req.AppliedOn, &req.ReviewedOn, &req.ReviewedBy, &req.Comments,
	); err != nil {
		return leave.LeaveRequest{}, err
	}
	req.LeaveType = leave.LeaveType(leaveType)
	req.Status = leave.RequestStatus(status)
	return req, nil
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, req leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type, from_date, to_date, days, reason, status,
			applied_on, reviewed_on, reviewed_by, comments
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	if _, err := q.Exec(ctx, query,
		req.ID, req.EmployeeID, string(req.LeaveType),
		timemath.Date(req.FromDate), timemath.Date(req.ToDate),
		req.Days, req.Reason, string(req.Status),
		req.AppliedOn, req.ReviewedOn, req.ReviewedBy, req.Comments,
	); err != nil {
		return fmt.Errorf("failed to create leave request: %w", err)
	}
	return nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	if !isUUID(id) {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRow(ctx, leaveRequestSelect+` WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request: %w", err)
	}
	return req, nil
}

// Update implements leave.RequestRepository. applied_on is never rewritten.
func (r *leaveRequestRepositoryImpl) Update(ctx context.Context, req leave.LeaveRequest) error {
	if !isUUID(req.ID) {
		return leave.ErrLeaveRequestNotFound
	}
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET leave_type = $2, from_date = $3, to_date = $4, days = $5, reason = $6, status = $7,
			reviewed_on = $8, reviewed_by = $9, comments = $10
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		req.ID, string(req.LeaveType), timemath.Date(req.FromDate), timemath.Date(req.ToDate),
		req.Days, req.Reason, string(req.Status),
		req.ReviewedOn, req.ReviewedBy, req.Comments,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

// List implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	var (
		where []string
		args  []interface{}
	)
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where = append(where, fmt.Sprintf("employee_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}

	query := leaveRequestSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY applied_on DESC, id DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := make([]leave.LeaveRequest, 0)
	for rows.Next() {
		req, err := scanLeaveRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// IsOnLeave implements leave.RequestRepository.
func (r *leaveRequestRepositoryImpl) IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1 AND status = 'approved' AND $2::date BETWEEN from_date AND to_date
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, employeeID, timemath.Date(date)).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check leave coverage: %w", err)
	}
	return exists, nil
}
