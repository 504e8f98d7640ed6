// Package repotest holds the behaviour every storage backend must share.
// Backends call these from their own tests with fresh repositories.
package repotest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

func clock(s string) *timemath.Clock {
	c := timemath.MustParseClock(s)
	return &c
}

// Attendance checks an empty attendance.Repository.
func Attendance(t *testing.T, repo attendance.Repository) {
	ctx := context.Background()
	day := timemath.MustParseDate("2025-06-02")

	t.Run("missing record is nil", func(t *testing.T) {
		rec, err := repo.Get(ctx, "E1", day)
		require.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("save then get round trips clocks", func(t *testing.T) {
		rec := attendance.Record{
			EmployeeID: "E1",
			Date:       day,
			CheckIn:    clock("22:00:00"),
			CheckOut:   clock("06:00:00"),
			Status:     attendance.StatusPresent,
			CreatedAt:  time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC),
			UpdatedAt:  time.Date(2025, 6, 3, 6, 0, 0, 0, time.UTC),
		}
		require.NoError(t, repo.Save(ctx, rec))

		got, err := repo.Get(ctx, "E1", day)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "22:00:00", got.CheckIn.String())
		assert.Equal(t, "06:00:00", got.CheckOut.String())
		assert.Equal(t, attendance.StatusPresent, got.Status)
		assert.True(t, got.Date.Equal(day))

		hours, ok := got.WorkingHours()
		require.True(t, ok)
		assert.Equal(t, "8h 0m", hours.Formatted)
	})

	t.Run("save replaces the same day", func(t *testing.T) {
		rec, err := attendance.NewRecord("E2", day, attendance.StatusPending)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, rec))

		rec.Status = attendance.StatusLate
		rec.CheckIn = clock("11:30:00")
		require.NoError(t, repo.Save(ctx, rec))

		all, err := repo.ListByEmployee(ctx, "E2", day, day)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, attendance.StatusLate, all[0].Status)
		assert.Nil(t, all[0].CheckOut)
	})

	t.Run("rejects checkout without checkin", func(t *testing.T) {
		err := repo.Save(ctx, attendance.Record{
			EmployeeID: "E3", Date: day, CheckOut: clock("17:00:00"), Status: attendance.StatusPresent,
		})
		assert.ErrorIs(t, err, attendance.ErrCheckOutWithoutCheckIn)
	})

	t.Run("list by employee is ascending and bounded", func(t *testing.T) {
		for _, d := range []string{"2025-06-10", "2025-06-05", "2025-06-07", "2025-07-01"} {
			rec, err := attendance.NewRecord("E4", timemath.MustParseDate(d), attendance.StatusAbsent)
			require.NoError(t, err)
			require.NoError(t, repo.Save(ctx, rec))
		}

		got, err := repo.ListByEmployee(ctx, "E4", timemath.MustParseDate("2025-06-01"), timemath.MustParseDate("2025-06-30"))
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "2025-06-05", got[0].Date.Format(timemath.DateLayout))
		assert.Equal(t, "2025-06-07", got[1].Date.Format(timemath.DateLayout))
		assert.Equal(t, "2025-06-10", got[2].Date.Format(timemath.DateLayout))
	})

	t.Run("list by date", func(t *testing.T) {
		got, err := repo.ListByDate(ctx, day)
		require.NoError(t, err)
		ids := make([]string, 0, len(got))
		for _, r := range got {
			ids = append(ids, r.EmployeeID)
		}
		assert.ElementsMatch(t, []string{"E1", "E2"}, ids)
	})
}

// Balances checks an empty leave.BalanceRepository.
func Balances(t *testing.T, repo leave.BalanceRepository) {
	ctx := context.Background()

	t.Run("missing balance", func(t *testing.T) {
		_, err := repo.Get(ctx, "E1", leave.TypeCasual)
		assert.ErrorIs(t, err, leave.ErrBalanceNotFound)

		_, err = repo.Apply(ctx, "E1", leave.TypeCasual, 0, 1)
		assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
	})

	t.Run("save and apply", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, leave.Balance{EmployeeID: "E1", LeaveType: leave.TypeCasual, Total: 12, Used: 3}))

		b, err := repo.Apply(ctx, "E1", leave.TypeCasual, 0, 3)
		require.NoError(t, err)
		assert.Equal(t, 12, b.Total)
		assert.Equal(t, 6, b.Used)
		assert.Equal(t, 6, b.Remaining())

		b, err = repo.Apply(ctx, "E1", leave.TypeCasual, 2, 0)
		require.NoError(t, err)
		assert.Equal(t, 14, b.Total)
	})

	t.Run("insufficient leaves the row untouched", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, leave.Balance{EmployeeID: "E2", LeaveType: leave.TypeSick, Total: 12, Used: 10}))

		_, err := repo.Apply(ctx, "E2", leave.TypeSick, 0, 3)
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

		b, err := repo.Get(ctx, "E2", leave.TypeSick)
		require.NoError(t, err)
		assert.Equal(t, 10, b.Used)
		assert.Equal(t, 2, b.Remaining())
	})

	t.Run("concurrent debits never overdraw", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, leave.Balance{EmployeeID: "E3", LeaveType: leave.TypeEarned, Total: 5}))

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			success int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Apply(ctx, "E3", leave.TypeEarned, 0, 1)
				if err == nil {
					mu.Lock()
					success++
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, 5, success)
		b, err := repo.Get(ctx, "E3", leave.TypeEarned)
		require.NoError(t, err)
		assert.Equal(t, 0, b.Remaining())
	})

	t.Run("list by employee and ids", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, leave.Balance{EmployeeID: "E1", LeaveType: leave.TypeSick, Total: 10}))

		got, err := repo.ListByEmployee(ctx, "E1")
		require.NoError(t, err)
		assert.Len(t, got, 2)

		ids, err := repo.ListEmployeeIDs(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"E1", "E2", "E3"}, ids)
	})

	t.Run("entries keep insertion order", func(t *testing.T) {
		base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
		for i, kind := range []leave.EntryKind{leave.EntryCredit, leave.EntryDebit} {
			require.NoError(t, repo.AppendEntry(ctx, leave.Entry{
				ID:         uuid.NewString(),
				EmployeeID: "E1",
				LeaveType:  leave.TypeCasual,
				Kind:       kind,
				Days:       i + 1,
				Reason:     string(kind),
				Total:      12,
				Used:       i,
				CreatedAt:  base.Add(time.Duration(i) * time.Minute),
			}))
		}

		entries, err := repo.ListEntries(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, leave.EntryCredit, entries[0].Kind)
		assert.Equal(t, leave.EntryDebit, entries[1].Kind)
		assert.Equal(t, 2, entries[1].Days)

		none, err := repo.ListEntries(ctx, "E1", leave.TypeSick)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func newRequest(t *testing.T, employeeID, from, to string, applied time.Time) leave.LeaveRequest {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	req, err := leave.NewLeaveRequest(id.String(), employeeID, leave.TypeCasual,
		timemath.MustParseDate(from), timemath.MustParseDate(to), "family", applied)
	require.NoError(t, err)
	return req
}

// Requests checks an empty leave.RequestRepository.
func Requests(t *testing.T, repo leave.RequestRepository) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	first := newRequest(t, "E1", "2025-06-10", "2025-06-12", base)
	second := newRequest(t, "E1", "2025-07-01", "2025-07-01", base.Add(time.Hour))
	other := newRequest(t, "E2", "2025-06-10", "2025-06-10", base.Add(2*time.Hour))

	t.Run("create and get", func(t *testing.T) {
		for _, r := range []leave.LeaveRequest{first, second, other} {
			require.NoError(t, repo.Create(ctx, r))
		}

		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.Days)
		assert.Equal(t, leave.RequestStatusPending, got.Status)
		assert.True(t, got.FromDate.Equal(first.FromDate))
		assert.Nil(t, got.Comments)

		_, err = repo.GetByID(ctx, uuid.NewString())
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)

		_, err = repo.GetByID(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound, "malformed ids are simply unknown")
	})

	t.Run("update resolves", func(t *testing.T) {
		got, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.NoError(t, got.Resolve(leave.RequestStatusApproved, "enjoy", "HR1", base.Add(3*time.Hour)))
		require.NoError(t, repo.Update(ctx, got))

		again, err := repo.GetByID(ctx, first.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.RequestStatusApproved, again.Status)
		require.NotNil(t, again.Comments)
		assert.Equal(t, "enjoy", *again.Comments)
		require.NotNil(t, again.ReviewedBy)
		assert.Equal(t, "HR1", *again.ReviewedBy)
		assert.True(t, again.AppliedOn.Equal(base))

		missing := newRequest(t, "E9", "2025-06-10", "2025-06-10", base)
		assert.ErrorIs(t, repo.Update(ctx, missing), leave.ErrLeaveRequestNotFound)
	})

	t.Run("list filters newest first", func(t *testing.T) {
		mine, err := repo.List(ctx, leave.RequestFilter{EmployeeID: "E1"})
		require.NoError(t, err)
		require.Len(t, mine, 2)
		assert.Equal(t, second.ID, mine[0].ID)
		assert.Equal(t, first.ID, mine[1].ID)

		pending, err := repo.List(ctx, leave.RequestFilter{Status: leave.RequestStatusPending})
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.Equal(t, other.ID, pending[0].ID)
	})

	t.Run("is on leave only for approved coverage", func(t *testing.T) {
		on, err := repo.IsOnLeave(ctx, "E1", timemath.MustParseDate("2025-06-11"))
		require.NoError(t, err)
		assert.True(t, on)

		on, err = repo.IsOnLeave(ctx, "E1", timemath.MustParseDate("2025-06-13"))
		require.NoError(t, err)
		assert.False(t, on)

		on, err = repo.IsOnLeave(ctx, "E2", timemath.MustParseDate("2025-06-10"))
		require.NoError(t, err)
		assert.False(t, on, "pending requests do not count")
	})
}

// Notifications checks an empty notification.Repository.
func Notifications(t *testing.T, repo notification.Repository) {
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	ids := make([]string, 3)
	for i := range ids {
		ids[i] = uuid.NewString()
		require.NoError(t, repo.Create(ctx, notification.Notification{
			ID:         ids[i],
			EmployeeID: "E1",
			Type:       notification.TypeLeave,
			Title:      "Leave Request Submitted",
			Message:    "message",
			Date:       base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, repo.Create(ctx, notification.Notification{
		ID: uuid.NewString(), EmployeeID: "E2", Type: notification.TypeBalance, Title: "Leave Balance Updated", Date: base,
	}))

	t.Run("newest first with limit", func(t *testing.T) {
		got, err := repo.ListByEmployee(ctx, "E1", false, 0)
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, ids[2], got[0].ID)
		assert.Equal(t, ids[0], got[2].ID)
		assert.False(t, got[0].Read)

		limited, err := repo.ListByEmployee(ctx, "E1", false, 2)
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})

	t.Run("mark read", func(t *testing.T) {
		readAt := base.Add(time.Hour)
		require.NoError(t, repo.MarkRead(ctx, "E1", ids[1], readAt))

		got, err := repo.GetByID(ctx, "E1", ids[1])
		require.NoError(t, err)
		assert.True(t, got.Read)
		require.NotNil(t, got.ReadAt)
		assert.True(t, got.ReadAt.Equal(readAt))

		count, err := repo.UnreadCount(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		unread, err := repo.ListByEmployee(ctx, "E1", true, 0)
		require.NoError(t, err)
		assert.Len(t, unread, 2)

		err = repo.MarkRead(ctx, "E2", ids[0], readAt)
		assert.True(t, errors.Is(err, notification.ErrNotificationNotFound), "other employees cannot mark it")

		err = repo.MarkRead(ctx, "E1", "not-a-uuid", readAt)
		assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
		_, err = repo.GetByID(ctx, "E1", "not-a-uuid")
		assert.ErrorIs(t, err, notification.ErrNotificationNotFound)
	})

	t.Run("mark all read", func(t *testing.T) {
		n, err := repo.MarkAllRead(ctx, "E1", base.Add(2*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		count, err := repo.UnreadCount(ctx, "E1")
		require.NoError(t, err)
		assert.Equal(t, 0, count)

		count, err = repo.UnreadCount(ctx, "E2")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

// Transactor checks that a failed unit of work surfaces its error.
func Transactor(t *testing.T, tx database.Transactor, repo leave.BalanceRepository) {
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, leave.Balance{EmployeeID: "TX1", LeaveType: leave.TypeCasual, Total: 4}))

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Apply(ctx, "TX1", leave.TypeCasual, 0, 1); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		_, err := repo.Apply(ctx, "TX1", leave.TypeCasual, 0, 2)
		return err
	})
	require.NoError(t, err)
}

// TransactorRollsBack checks backends that can undo a failed unit of work.
func TransactorRollsBack(t *testing.T, tx database.Transactor, repo leave.BalanceRepository) {
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, leave.Balance{EmployeeID: "TX2", LeaveType: leave.TypeCasual, Total: 4}))

	boom := errors.New("boom")
	err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := repo.Apply(ctx, "TX2", leave.TypeCasual, 0, 3); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	b, err := repo.Get(ctx, "TX2", leave.TypeCasual)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Used)
}
