package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type WorkflowService struct {
	requests   leave.RequestRepository
	ledger     *LedgerService
	transactor database.Transactor
	notifier   notification.Service
	now        func() time.Time
}

// NewWorkflowService wires the request workflow. The ledger must share the transactor
// so an approval and its debit commit together. notifier may be nil.
func NewWorkflowService(requests leave.RequestRepository, ledger *LedgerService, transactor database.Transactor, notifier notification.Service) *WorkflowService {
	return &WorkflowService{
		requests:   requests,
		ledger:     ledger,
		transactor: transactor,
		notifier:   notifier,
		now:        time.Now,
	}
}

// Submit files a pending request. The ledger is not touched until approval.
func (w *WorkflowService) Submit(ctx context.Context, req leave.SubmitRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	leaveType, err := leave.ParseLeaveType(req.LeaveType)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	from, err := timemath.ParseDate(req.FromDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse from date: %w", err)
	}
	to, err := timemath.ParseDate(req.ToDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse to date: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("generate request id: %w", err)
	}
	request, err := leave.NewLeaveRequest(id.String(), req.EmployeeID, leaveType, from, to, req.Reason, w.now())
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	if err := w.requests.Create(ctx, request); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	slog.Info("Leave request submitted",
		"request_id", request.ID,
		"employee_id", request.EmployeeID,
		"leave_type", request.LeaveType,
		"days", request.Days,
	)

	w.notify(ctx, request.EmployeeID, "Leave Request Submitted",
		fmt.Sprintf("Your %s request for %s is pending review.", request.LeaveType.Label(), spanOf(request)))
	return request, nil
}

// Review approves or rejects a pending request. An approval debits the ledger in the
// same transaction as the status change; leave.ErrInsufficientBalance leaves both
// untouched. Notifications go out only after commit.
func (w *WorkflowService) Review(ctx context.Context, req leave.ReviewRequest) (leave.LeaveRequest, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequest{}, err
	}
	decision, err := leave.ParseDecision(req.Decision)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	var (
		request  leave.LeaveRequest
		balance  leave.Balance
		debited  bool
		reviewed = w.now()
	)
	err = w.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		request, err = w.requests.GetByID(ctx, req.RequestID)
		if err != nil {
			return err
		}
		if request.Status != leave.RequestStatusPending {
			return leave.ErrNotPending
		}

		if decision == leave.RequestStatusApproved {
			balance, err = w.ledger.apply(ctx, request.EmployeeID, request.LeaveType, leave.EntryDebit,
				request.Days, "leave request "+request.ID)
			if err != nil {
				return err
			}
			debited = true
		}

		if err := request.Resolve(decision, req.Comments, req.ReviewerID, reviewed); err != nil {
			return err
		}
		if err := w.requests.Update(ctx, request); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, leave.ErrInsufficientBalance) {
			slog.Info("Leave request approval refused", "request_id", req.RequestID, "error", err)
		}
		return leave.LeaveRequest{}, err
	}

	slog.Info("Leave request reviewed",
		"request_id", request.ID,
		"employee_id", request.EmployeeID,
		"status", request.Status,
		"reviewer_id", req.ReviewerID,
	)

	if debited {
		w.ledger.notifyBalance(ctx, balance, leave.EntryDebit, request.Days, "approved leave request")
	}

	title, message := "Leave Request Rejected",
		fmt.Sprintf("Your %s request for %s was rejected.", request.LeaveType.Label(), spanOf(request))
	if request.Status == leave.RequestStatusApproved {
		title, message = "Leave Request Approved",
			fmt.Sprintf("Your %s request for %s was approved. %d day(s) remaining.",
				request.LeaveType.Label(), spanOf(request), balance.Remaining())
	}
	if request.Comments != nil {
		message += " Comments: " + *request.Comments
	}
	w.notify(ctx, request.EmployeeID, title, message)

	return request, nil
}

func (w *WorkflowService) Get(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return w.requests.GetByID(ctx, id)
}

func (w *WorkflowService) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	if filter.Status != "" {
		if _, err := leave.ParseStatus(string(filter.Status)); err != nil {
			return nil, err
		}
	}
	requests, err := w.requests.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return requests, nil
}

func (w *WorkflowService) notify(ctx context.Context, employeeID, title, message string) {
	if w.notifier == nil {
		return
	}
	err := w.notifier.Notify(ctx, notification.Notification{
		EmployeeID: employeeID,
		Type:       notification.TypeLeave,
		Title:      title,
		Message:    message,
	})
	if err != nil {
		slog.Warn("Failed to send leave notification", "employee_id", employeeID, "title", title, "error", err)
	}
}

// spanOf renders "2025-06-10" or "2025-06-10 to 2025-06-12 (3 days)".
func spanOf(r leave.LeaveRequest) string {
	from := r.FromDate.Format(timemath.DateLayout)
	if r.Days <= 1 {
		return from
	}
	return fmt.Sprintf("%s to %s (%d days)", from, r.ToDate.Format(timemath.DateLayout), r.Days)
}

var _ leave.Workflow = (*WorkflowService)(nil)
