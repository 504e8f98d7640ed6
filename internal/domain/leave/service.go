package leave

import (
	"context"
)

// Ledger maintains the per-employee, per-type balance invariant.
type Ledger interface {
	Credit(ctx context.Context, employeeID string, leaveType LeaveType, days int, reason string) (Balance, error)
	Debit(ctx context.Context, employeeID string, leaveType LeaveType, days int, reason string) (Balance, error)
	BalanceOf(ctx context.Context, employeeID string, leaveType LeaveType) (Balance, error)
	Balances(ctx context.Context, employeeID string) ([]Balance, error)
	History(ctx context.Context, employeeID string, leaveType LeaveType) ([]Entry, error)
	// Provision creates the policy's default balances the employee does not have yet.
	Provision(ctx context.Context, employeeID string) ([]Balance, error)
}

// Workflow drives a leave request from pending to approved or rejected.
type Workflow interface {
	Submit(ctx context.Context, req SubmitRequest) (LeaveRequest, error)
	Review(ctx context.Context, req ReviewRequest) (LeaveRequest, error)
	Get(ctx context.Context, id string) (LeaveRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]LeaveRequest, error)
}
