package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
)

type balanceKey struct {
	employeeID string
	leaveType  leave.LeaveType
}

type leaveBalanceRepository struct {
	mu       sync.Mutex
	balances map[balanceKey]leave.Balance
	entries  map[balanceKey][]leave.Entry
	now      func() time.Time
}

func NewLeaveBalanceRepository() leave.BalanceRepository {
	return &leaveBalanceRepository{
		balances: make(map[balanceKey]leave.Balance),
		entries:  make(map[balanceKey][]leave.Entry),
		now:      time.Now,
	}
}

// Get implements leave.BalanceRepository.
func (r *leaveBalanceRepository) Get(ctx context.Context, employeeID string, leaveType leave.LeaveType) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.balances[balanceKey{employeeID, leaveType}]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

// ListByEmployee implements leave.BalanceRepository.
func (r *leaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]leave.Balance, 0)
	for k, b := range r.balances {
		if k.employeeID == employeeID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LeaveType < out[j].LeaveType })
	return out, nil
}

// Save implements leave.BalanceRepository.
func (r *leaveBalanceRepository) Save(ctx context.Context, balance leave.Balance) error {
	if balance.Total < 0 || balance.Used < 0 {
		return leave.ErrInvalidDays
	}
	if balance.Remaining() < 0 {
		return leave.ErrInsufficientBalance
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if balance.UpdatedAt.IsZero() {
		balance.UpdatedAt = r.now()
	}
	r.balances[balanceKey{balance.EmployeeID, balance.LeaveType}] = balance
	return nil
}

// Apply implements leave.BalanceRepository.
func (r *leaveBalanceRepository) Apply(ctx context.Context, employeeID string, leaveType leave.LeaveType, totalDelta, usedDelta int) (leave.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := balanceKey{employeeID, leaveType}
	b, ok := r.balances[k]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}

	next, err := b.Apply(totalDelta, usedDelta)
	if err != nil {
		return leave.Balance{}, err
	}
	next.UpdatedAt = r.now()
	r.balances[k] = next
	return next, nil
}

// ListEmployeeIDs implements leave.BalanceRepository.
func (r *leaveBalanceRepository) ListEmployeeIDs(ctx context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for k := range r.balances {
		if _, ok := seen[k.employeeID]; ok {
			continue
		}
		seen[k.employeeID] = struct{}{}
		ids = append(ids, k.employeeID)
	}
	sort.Strings(ids)
	return ids, nil
}

// AppendEntry implements leave.BalanceRepository.
func (r *leaveBalanceRepository) AppendEntry(ctx context.Context, entry leave.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := balanceKey{entry.EmployeeID, entry.LeaveType}
	r.entries[k] = append(r.entries[k], entry)
	return nil
}

// ListEntries implements leave.BalanceRepository.
func (r *leaveBalanceRepository) ListEntries(ctx context.Context, employeeID string, leaveType leave.LeaveType) ([]leave.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := r.entries[balanceKey{employeeID, leaveType}]
	return append(make([]leave.Entry, 0, len(entries)), entries...), nil
}
