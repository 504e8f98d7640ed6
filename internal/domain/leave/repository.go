package leave

import (
	"context"
	"time"
)

// BalanceRepository - storage for leave balances and their ledger entries
type BalanceRepository interface {
	// Get returns ErrBalanceNotFound when the employee has no balance of that type.
	Get(ctx context.Context, employeeID string, leaveType LeaveType) (Balance, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Balance, error)
	// Save inserts or replaces the balance.
	Save(ctx context.Context, balance Balance) error
	// Apply adds the deltas in one atomic step. It fails with ErrInsufficientBalance,
	// leaving the row untouched, when the result would have negative remaining days.
	Apply(ctx context.Context, employeeID string, leaveType LeaveType, totalDelta, usedDelta int) (Balance, error)
	// ListEmployeeIDs returns every employee holding at least one balance.
	ListEmployeeIDs(ctx context.Context) ([]string, error)

	AppendEntry(ctx context.Context, entry Entry) error
	// ListEntries returns entries oldest first.
	ListEntries(ctx context.Context, employeeID string, leaveType LeaveType) ([]Entry, error)
}

// RequestRepository - storage for leave requests
type RequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) error
	// GetByID returns ErrLeaveRequestNotFound when missing.
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) error
	// List returns matching requests, newest applied first.
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, error)
	// IsOnLeave reports whether an approved request of the employee covers the date.
	IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}
