package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
)

type leaveBalanceRepository struct {
	db *DB
}

func NewLeaveBalanceRepository(db *DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

func scanBalance(row interface{ Scan(dest ...any) error }) (leave.Balance, error) {
	var (
		b         leave.Balance
		updatedAt string
	)
	if err := row.Scan(&b.EmployeeID, &b.LeaveType, &b.Total, &b.Used, &updatedAt); err != nil {
		return leave.Balance{}, err
	}
	t, err := parseTime(updatedAt)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("parsing updated at: %w", err)
	}
	b.UpdatedAt = t
	return b, nil
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepository) Get(ctx context.Context, employeeID string, leaveType leave.LeaveType) (leave.Balance, error) {
	query := `
		SELECT employee_id, leave_type, total, used, updated_at
		FROM leave_balances
		WHERE employee_id = ? AND leave_type = ?
	`
	b, err := scanBalance(r.db.conn(ctx).QueryRowContext(ctx, query, employeeID, leaveType))
	if err == sql.ErrNoRows {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	if err != nil {
		return leave.Balance{}, fmt.Errorf("querying balance: %w", err)
	}
	return b, nil
}

// ListByEmployee implements leave.BalanceRepository.
func (r *leaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	query := `
		SELECT employee_id, leave_type, total, used, updated_at
		FROM leave_balances
		WHERE employee_id = ?
		ORDER BY leave_type
	`
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("querying balances: %w", err)
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Save implements leave.BalanceRepository.
func (r *leaveBalanceRepository) Save(ctx context.Context, balance leave.Balance) error {
	if balance.Total < 0 || balance.Used < 0 {
		return leave.ErrInvalidDays
	}
	if balance.Remaining() < 0 {
		return leave.ErrInsufficientBalance
	}
	if balance.UpdatedAt.IsZero() {
		balance.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO leave_balances (employee_id, leave_type, total, used, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, leave_type) DO UPDATE SET
			total = excluded.total,
			used = excluded.used,
			updated_at = excluded.updated_at
	`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		balance.EmployeeID, balance.LeaveType, balance.Total, balance.Used, formatTime(balance.UpdatedAt))
	if err != nil {
		return fmt.Errorf("saving balance: %w", err)
	}
	return nil
}

// Apply implements leave.BalanceRepository. The guard in the WHERE clause makes the
// check and the write one statement.
func (r *leaveBalanceRepository) Apply(ctx context.Context, employeeID string, leaveType leave.LeaveType, totalDelta, usedDelta int) (leave.Balance, error) {
	query := `
		UPDATE leave_balances
		SET total = total + ?1, used = used + ?2, updated_at = ?3
		WHERE employee_id = ?4 AND leave_type = ?5
		  AND total + ?1 >= 0
		  AND used + ?2 >= 0
		  AND (total + ?1) - (used + ?2) >= 0
		RETURNING employee_id, leave_type, total, used, updated_at
	`
	q := r.db.conn(ctx)
	b, err := scanBalance(q.QueryRowContext(ctx, query, totalDelta, usedDelta, formatTime(time.Now()), employeeID, leaveType))
	if err == nil {
		return b, nil
	}
	if err != sql.ErrNoRows {
		return leave.Balance{}, fmt.Errorf("applying balance: %w", err)
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
func (r *leaveBalanceRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, `SELECT DISTINCT employee_id FROM leave_balances ORDER BY employee_id`)
	if err != nil {
		return nil, fmt.Errorf("querying employees: %w", err)
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
func (r *leaveBalanceRepository) AppendEntry(ctx context.Context, e leave.Entry) error {
	query := `
		INSERT INTO leave_balance_entries (id, employee_id, leave_type, kind, days, reason, total, used, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		e.ID, e.EmployeeID, e.LeaveType, e.Kind, e.Days, e.Reason, e.Total, e.Used, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("inserting ledger entry: %w", err)
	}
	return nil
}

// ListEntries implements leave.BalanceRepository.
func (r *leaveBalanceRepository) ListEntries(ctx context.Context, employeeID string, leaveType leave.LeaveType) ([]leave.Entry, error) {
	query := `
		SELECT id, employee_id, leave_type, kind, days, reason, total, used, created_at
		FROM leave_balance_entries
		WHERE employee_id = ? AND leave_type = ?
		ORDER BY seq ASC
	`
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, employeeID, leaveType)
	if err != nil {
		return nil, fmt.Errorf("querying ledger entries: %w", err)
	}
	defer rows.Close()

	entries := make([]leave.Entry, 0)
	for rows.Next() {
		var (
			e         leave.Entry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.LeaveType, &e.Kind, &e.Days, &e.Reason, &e.Total, &e.Used, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		if e.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing created at: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
