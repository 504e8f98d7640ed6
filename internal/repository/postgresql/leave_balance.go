package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

func scanBalance(row pgx.Row) (leave.Balance, error) {
	var (
		b         leave.Balance
		leaveType string
	)
	if err := row.Scan(&b.EmployeeID, &leaveType, &b.Total, &b.Used, &b.UpdatedAt); err != nil {
		return leave.Balance{}, err
	}
	b.LeaveType = leave.LeaveType(leaveType)
	return b, nil
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Get(ctx context.Context, employeeID string, leaveType leave.LeaveType) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, leave_type, total, used, updated_at
		FROM leave_balances
		WHERE employee_id = $1 AND leave_type = $2
	`
	b, err := scanBalance(q.QueryRow(ctx, query, employeeID, string(leaveType)))
	if err == pgx.ErrNoRows {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	if err != nil {
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}
	return b, nil
}

// ListByEmployee implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, leave_type, total, used, updated_at
		FROM leave_balances
		WHERE employee_id = $1
		ORDER BY leave_type
	`
	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Save implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Save(ctx context.Context, balance leave.Balance) error {
	if balance.Total < 0 || balance.Used < 0 {
		return leave.ErrInvalidDays
	}
	if balance.Remaining() < 0 {
		return leave.ErrInsufficientBalance
	}
	if balance.UpdatedAt.IsZero() {
		balance.UpdatedAt = time.Now()
	}
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (employee_id, leave_type, total, used, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, leave_type) DO UPDATE SET
			total = EXCLUDED.total,
			used = EXCLUDED.used,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := q.Exec(ctx, query,
		balance.EmployeeID, string(balance.LeaveType), balance.Total, balance.Used, balance.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to save leave balance: %w", err)
	}
	return nil
}

// Apply implements leave.BalanceRepository as one guarded UPDATE.
func (r *leaveBalanceRepositoryImpl) Apply(ctx context.Context, employeeID string, leaveType leave.LeaveType, totalDelta, usedDelta int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET total = total + $1, used = used + $2, updated_at = NOW()
		WHERE employee_id = $3 AND leave_type = $4
		  AND total + $1 >= 0
		  AND used + $2 >= 0
		  AND (total + $1) - (used + $2) >= 0
		RETURNING employee_id, leave_type, total, used, updated_at
	`
	b, err := scanBalance(q.QueryRow(ctx, query, totalDelta, usedDelta, employeeID, string(leaveType)))
	if err == nil {
		return b, nil
	}
	if err != pgx.ErrNoRows {
		return leave.Balance{}, fmt.Errorf("failed to apply leave balance: %w", err)
	}

	// Nothing matched: tell a missing row from a failed guard.
	current, err := r.Get(ctx, employeeID, leaveType)
	if err != nil {
		return leave.Balance{}, err
	}
	if _, err := current.Apply(totalDelta, usedDelta); err != nil {
		return leave.Balance{}, err
	}
	return leave.Balance{}, leave.ErrInsufficientBalance
}

// ListEmployeeIDs implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT DISTINCT employee_id FROM leave_balances ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AppendEntry implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) AppendEntry(ctx context.Context, e leave.Entry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balance_entries (id, employee_id, leave_type, kind, days, reason, total, used, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := q.Exec(ctx, query,
		e.ID, e.EmployeeID, string(e.LeaveType), string(e.Kind), e.Days, e.Reason, e.Total, e.Used, e.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}
	return nil
}

// ListEntries implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListEntries(ctx context.Context, employeeID string, leaveType leave.LeaveType) ([]leave.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, leave_type, kind, days, reason, total, used, created_at
		FROM leave_balance_entries
		WHERE employee_id = $1 AND leave_type = $2
		ORDER BY seq ASC
	`
	rows, err := q.Query(ctx, query, employeeID, string(leaveType))
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]leave.Entry, 0)
	for rows.Next() {
		var (
			e            leave.Entry
			leaveTypeStr string
			kind         string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &leaveTypeStr, &kind, &e.Days, &e.Reason, &e.Total, &e.Used, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		e.LeaveType = leave.LeaveType(leaveTypeStr)
		e.Kind = leave.EntryKind(kind)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
