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
)

type LedgerService struct {
	balances   leave.BalanceRepository
	transactor database.Transactor
	notifier   notification.Service
	policy     leave.Policy
	now        func() time.Time
}

// NewLedgerService wires the ledger. notifier may be nil.
func NewLedgerService(balances leave.BalanceRepository, transactor database.Transactor, notifier notification.Service, policy leave.Policy) *LedgerService {
	return &LedgerService{
		balances:   balances,
		transactor: transactor,
		notifier:   notifier,
		policy:     policy,
		now:        time.Now,
	}
}

// Credit adds days to the employee's total, creating the balance when missing.
func (l *LedgerService) Credit(ctx context.Context, employeeID string, leaveType leave.LeaveType, days int, reason string) (leave.Balance, error) {
	if err := checkMovement(employeeID, leaveType, days); err != nil {
		return leave.Balance{}, err
	}

	var balance leave.Balance
	err := l.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.ensure(ctx, employeeID, leaveType); err != nil {
			return err
		}
		var err error
		balance, err = l.apply(ctx, employeeID, leaveType, leave.EntryCredit, days, reason)
		return err
	})
	if err != nil {
		return leave.Balance{}, err
	}

	l.notifyBalance(ctx, balance, leave.EntryCredit, days, reason)
	return balance, nil
}

// Debit moves days from remaining to used. It fails with leave.ErrInsufficientBalance,
// changing nothing, when days exceeds the remaining balance.
func (l *LedgerService) Debit(ctx context.Context, employeeID string, leaveType leave.LeaveType, days int, reason string) (leave.Balance, error) {
	if err := checkMovement(employeeID, leaveType, days); err != nil {
		return leave.Balance{}, err
	}

	var balance leave.Balance
	err := l.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		balance, err = l.apply(ctx, employeeID, leaveType, leave.EntryDebit, days, reason)
		return err
	})
	if err != nil {
		return leave.Balance{}, err
	}

	l.notifyBalance(ctx, balance, leave.EntryDebit, days, reason)
	return balance, nil
}

func checkMovement(employeeID string, leaveType leave.LeaveType, days int) error {
	if employeeID == "" {
		return leave.ErrEmployeeRequired
	}
	if _, err := leave.ParseLeaveType(string(leaveType)); err != nil {
		return err
	}
	if days <= 0 {
		return leave.ErrInvalidDays
	}
	return nil
}

// ensure creates an empty balance when the employee has none of this type.
func (l *LedgerService) ensure(ctx context.Context, employeeID string, leaveType leave.LeaveType) error {
	_, err := l.balances.Get(ctx, employeeID, leaveType)
	if err == nil {
		return nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return fmt.Errorf("failed to get leave balance: %w", err)
	}
	if err := l.balances.Save(ctx, leave.Balance{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		UpdatedAt:  l.now(),
	}); err != nil {
		return fmt.Errorf("failed to create leave balance: %w", err)
	}
	return nil
}

// apply performs the movement and records it. It must run inside a transaction
// opened by the caller and publishes nothing.
func (l *LedgerService) apply(ctx context.Context, employeeID string, leaveType leave.LeaveType, kind leave.EntryKind, days int, reason string) (leave.Balance, error) {
	totalDelta, usedDelta := days, 0
	if kind == leave.EntryDebit {
		totalDelta, usedDelta = 0, days
	}

	balance, err := l.balances.Apply(ctx, employeeID, leaveType, totalDelta, usedDelta)
	if err != nil {
		if errors.Is(err, leave.ErrInsufficientBalance) || errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.Balance{}, err
		}
		return leave.Balance{}, fmt.Errorf("failed to apply leave balance change: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return leave.Balance{}, fmt.Errorf("generate entry id: %w", err)
	}
	entry := leave.Entry{
		ID:         id.String(),
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		Kind:       kind,
		Days:       days,
		Reason:     reason,
		Total:      balance.Total,
		Used:       balance.Used,
		CreatedAt:  l.now(),
	}
	if err := l.balances.AppendEntry(ctx, entry); err != nil {
		return leave.Balance{}, fmt.Errorf("failed to record ledger entry: %w", err)
	}

	slog.Info("Leave balance updated",
		"employee_id", employeeID,
		"leave_type", leaveType,
		"kind", kind,
		"days", days,
		"total", balance.Total,
		"used", balance.Used,
	)
	return balance, nil
}

func (l *LedgerService) notifyBalance(ctx context.Context, b leave.Balance, kind leave.EntryKind, days int, reason string) {
	if l.notifier == nil {
		return
	}
	verb := "credited"
	if kind == leave.EntryDebit {
		verb = "debited"
	}
	message := fmt.Sprintf("%s: %d day(s) %s. Remaining %d of %d.", b.LeaveType.Label(), days, verb, b.Remaining(), b.Total)
	if reason != "" {
		message = fmt.Sprintf("%s: %d day(s) %s (%s). Remaining %d of %d.", b.LeaveType.Label(), days, verb, reason, b.Remaining(), b.Total)
	}

	err := l.notifier.Notify(ctx, notification.Notification{
		EmployeeID: b.EmployeeID,
		Type:       notification.TypeBalance,
		Title:      "Leave Balance Updated",
		Message:    message,
	})
	if err != nil {
		slog.Warn("Failed to send balance notification", "employee_id", b.EmployeeID, "error", err)
	}
}

// BalanceOf returns leave.ErrBalanceNotFound when the employee has no balance of that type.
func (l *LedgerService) BalanceOf(ctx context.Context, employeeID string, leaveType leave.LeaveType) (leave.Balance, error) {
	if _, err := leave.ParseLeaveType(string(leaveType)); err != nil {
		return leave.Balance{}, err
	}
	return l.balances.Get(ctx, employeeID, leaveType)
}

func (l *LedgerService) Balances(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	balances, err := l.balances.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	return balances, nil
}

func (l *LedgerService) History(ctx context.Context, employeeID string, leaveType leave.LeaveType) ([]leave.Entry, error) {
	entries, err := l.balances.ListEntries(ctx, employeeID, leaveType)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	return entries, nil
}

// Provision credits the policy allotment for every leave type the employee has no
// balance of yet. Existing balances are left alone. It returns the created balances.
func (l *LedgerService) Provision(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	if employeeID == "" {
		return nil, leave.ErrEmployeeRequired
	}

	created := make([]leave.Balance, 0)
	err := l.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, leaveType := range leave.AllLeaveTypes() {
			allotment := l.policy.Allotment(leaveType)
			if allotment <= 0 {
				slog.Debug("Skipping leave type without allotment", "leave_type", leaveType)
				continue
			}

			_, err := l.balances.Get(ctx, employeeID, leaveType)
			if err == nil {
				slog.Debug("Balance already exists", "employee_id", employeeID, "leave_type", leaveType)
				continue
			}
			if !errors.Is(err, leave.ErrBalanceNotFound) {
				return fmt.Errorf("failed to get leave balance: %w", err)
			}

			if err := l.ensure(ctx, employeeID, leaveType); err != nil {
				return err
			}
			balance, err := l.apply(ctx, employeeID, leaveType, leave.EntryCredit, allotment, "yearly allotment")
			if err != nil {
				return err
			}
			created = append(created, balance)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Provisioned leave balances", "employee_id", employeeID, "created", len(created))
	return created, nil
}

var _ leave.Ledger = (*LedgerService)(nil)
