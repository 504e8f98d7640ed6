package leave

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/validator"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/memory"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/sqlite"
	notificationsvc "github.com/cmlabs-hris/attendance-leave-go/internal/service/notification"
)

type fixture struct {
	balances leave.BalanceRepository
	requests leave.RequestRepository
	notifier notification.Service
	ledger   *LedgerService
	workflow *WorkflowService
}

func build(t *testing.T, balances leave.BalanceRepository, requests leave.RequestRepository, notifications notification.Repository, tx database.Transactor) *fixture {
	notifier := notificationsvc.NewNotificationService(notifications, notificationsvc.Config{})
	t.Cleanup(notifier.Stop)
	ledger := NewLedgerService(balances, tx, notifier, leave.DefaultPolicy())
	return &fixture{
		balances: balances,
		requests: requests,
		notifier: notifier,
		ledger:   ledger,
		workflow: NewWorkflowService(requests, ledger, tx, notifier),
	}
}

// backends runs fn against the in-memory and the SQLite store.
func backends(t *testing.T, fn func(t *testing.T, f *fixture)) {
	t.Run("memory", func(t *testing.T) {
		s := memory.NewStore()
		fn(t, build(t, s.Balances, s.Requests, s.Notifications, s.Transactor))
	})
	t.Run("sqlite", func(t *testing.T) {
		db, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "leave.db"))
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		s := sqlite.NewStore(db)
		fn(t, build(t, s.Balances, s.Requests, s.Notifications, s.Transactor))
	})
}

func seed(t *testing.T, f *fixture, employeeID string, leaveType leave.LeaveType, total, used int) {
	t.Helper()
	require.NoError(t, f.balances.Save(context.Background(), leave.Balance{
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		Total:      total,
		Used:       used,
	}))
}

func submit(t *testing.T, f *fixture, employeeID, from, to string) leave.LeaveRequest {
	t.Helper()
	req, err := f.workflow.Submit(context.Background(), leave.SubmitRequest{
		EmployeeID: employeeID,
		LeaveType:  "Casual Leave",
		FromDate:   from,
		ToDate:     to,
		Reason:     "family trip",
	})
	require.NoError(t, err)
	return req
}

func notificationsOf(t *testing.T, f *fixture, employeeID string) []notification.NotificationResponse {
	t.Helper()
	list, err := f.notifier.List(context.Background(), employeeID, notification.ListRequest{Limit: 100})
	require.NoError(t, err)
	return list.Notifications
}

func TestReviewApproved(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		seed(t, f, "E1", leave.TypeCasual, 12, 3)

		req := submit(t, f, "E1", "2025-06-10", "2025-06-12")
		assert.Equal(t, leave.RequestStatusPending, req.Status)
		assert.Equal(t, 3, req.Days)

		untouched, err := f.ledger.BalanceOf(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Equal(t, 9, untouched.Remaining(), "submitting does not touch the ledger")

		before := notificationsOf(t, f, "E1")

		reviewed, err := f.workflow.Review(ctx, leave.ReviewRequest{
			RequestID:  req.ID,
			ReviewerID: "HR1",
			Decision:   "approved",
			Comments:   "enjoy",
		})
		require.NoError(t, err)
		assert.Equal(t, leave.RequestStatusApproved, reviewed.Status)
		require.NotNil(t, reviewed.ReviewedOn)
		require.NotNil(t, reviewed.Comments)
		assert.Equal(t, "enjoy", *reviewed.Comments)

		balance, err := f.ledger.BalanceOf(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Equal(t, 12, balance.Total)
		assert.Equal(t, 6, balance.Used)
		assert.Equal(t, 6, balance.Remaining())

		after := notificationsOf(t, f, "E1")
		var leaveNotes []notification.NotificationResponse
		for _, n := range after[:len(after)-len(before)] {
			if n.Type == notification.TypeLeave {
				leaveNotes = append(leaveNotes, n)
			}
		}
		require.Len(t, leaveNotes, 1)
		assert.Contains(t, leaveNotes[0].Title, "Approved")

		stored, err := f.workflow.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.RequestStatusApproved, stored.Status)
	})
}

func TestReviewInsufficientBalance(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		seed(t, f, "E1", leave.TypeCasual, 12, 10)
		req := submit(t, f, "E1", "2025-06-10", "2025-06-12")
		before := notificationsOf(t, f, "E1")

		_, err := f.workflow.Review(ctx, leave.ReviewRequest{RequestID: req.ID, ReviewerID: "HR1", Decision: "approved"})
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

		stored, err := f.workflow.Get(ctx, req.ID)
		require.NoError(t, err)
		assert.Equal(t, leave.RequestStatusPending, stored.Status)
		assert.Nil(t, stored.ReviewedOn)

		balance, err := f.ledger.BalanceOf(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Equal(t, 12, balance.Total)
		assert.Equal(t, 10, balance.Used)

		assert.Len(t, notificationsOf(t, f, "E1"), len(before), "nothing is published")

		history, err := f.ledger.History(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}

func TestReviewRejectedAndTwice(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		seed(t, f, "E1", leave.TypeCasual, 12, 0)
		req := submit(t, f, "E1", "2025-06-10", "2025-06-10")

		reviewed, err := f.workflow.Review(ctx, leave.ReviewRequest{RequestID: req.ID, ReviewerID: "HR1", Decision: "rejected"})
		require.NoError(t, err)
		assert.Equal(t, leave.RequestStatusRejected, reviewed.Status)

		_, err = f.workflow.Review(ctx, leave.ReviewRequest{RequestID: req.ID, ReviewerID: "HR1", Decision: "approved"})
		assert.ErrorIs(t, err, leave.ErrNotPending)

		balance, err := f.ledger.BalanceOf(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Equal(t, 0, balance.Used, "a rejection never debits")

		notes := notificationsOf(t, f, "E1")
		require.NotEmpty(t, notes)
		assert.Equal(t, "Leave Request Rejected", notes[0].Title)
	})
}

func TestReviewUnknownRequest(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		_, err := f.workflow.Review(context.Background(), leave.ReviewRequest{RequestID: "missing", ReviewerID: "HR1", Decision: "approved"})
		assert.ErrorIs(t, err, leave.ErrLeaveRequestNotFound)
	})
}

func TestSubmitValidation(t *testing.T) {
	s := memory.NewStore()
	f := build(t, s.Balances, s.Requests, s.Notifications, s.Transactor)
	ctx := context.Background()

	_, err := f.workflow.Submit(ctx, leave.SubmitRequest{
		EmployeeID: "E1",
		LeaveType:  "casual",
		FromDate:   "2025-06-12",
		ToDate:     "2025-06-10",
		Reason:     "trip",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidRange)

	_, err = f.workflow.Submit(ctx, leave.SubmitRequest{EmployeeID: "E1", LeaveType: "vacation", FromDate: "2025-06-10", ToDate: "2025-06-10"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := verrs.ToMap()
	assert.Contains(t, fields, "leave_type")
	assert.NotContains(t, fields, "reason")

	req := submit(t, f, "E1", "2025-06-10", "2025-06-11")
	notes := notificationsOf(t, f, "E1")
	require.Len(t, notes, 1)
	assert.Equal(t, "Leave Request Submitted", notes[0].Title)
	assert.Equal(t, notification.TypeLeave, notes[0].Type)

	list, err := f.workflow.List(ctx, leave.RequestFilter{Status: leave.RequestStatusPending})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, req.ID, list[0].ID)

	_, err = f.workflow.List(ctx, leave.RequestFilter{Status: "archived"})
	assert.ErrorIs(t, err, leave.ErrInvalidStatus)
}

func TestCreditDebitRoundTrip(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		seed(t, f, "E1", leave.TypeSick, 10, 2)

		credited, err := f.ledger.Credit(ctx, "E1", leave.TypeSick, 5, "carry over")
		require.NoError(t, err)
		assert.Equal(t, 15, credited.Total)

		debited, err := f.ledger.Debit(ctx, "E1", leave.TypeSick, 5, "flu")
		require.NoError(t, err)
		assert.Equal(t, 15, debited.Total)
		assert.Equal(t, 7, debited.Used)
		assert.Equal(t, 8, debited.Remaining(), "remaining is unchanged after the round trip")

		history, err := f.ledger.History(ctx, "E1", leave.TypeSick)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, leave.EntryCredit, history[0].Kind)
		assert.Equal(t, "carry over", history[0].Reason)
		assert.Equal(t, leave.EntryDebit, history[1].Kind)
		assert.Equal(t, 7, history[1].Used)

		notes := notificationsOf(t, f, "E1")
		require.Len(t, notes, 2)
		assert.Equal(t, notification.TypeBalance, notes[0].Type)
		assert.True(t, strings.Contains(notes[0].Message, "debited"))
	})
}

func TestCreditCreatesBalance(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()

		_, err := f.ledger.BalanceOf(ctx, "E9", leave.TypeEarned)
		assert.ErrorIs(t, err, leave.ErrBalanceNotFound)

		balance, err := f.ledger.Credit(ctx, "E9", leave.TypeEarned, 3, "")
		require.NoError(t, err)
		assert.Equal(t, 3, balance.Total)
		assert.Equal(t, 0, balance.Used)

		_, err = f.ledger.Credit(ctx, "E9", leave.TypeEarned, 0, "")
		assert.ErrorIs(t, err, leave.ErrInvalidDays)
	})
}

func TestDebitInsufficient(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		seed(t, f, "E1", leave.TypeCasual, 5, 4)

		_, err := f.ledger.Debit(ctx, "E1", leave.TypeCasual, 2, "")
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

		_, err = f.ledger.Debit(ctx, "E2", leave.TypeCasual, 1, "")
		assert.ErrorIs(t, err, leave.ErrBalanceNotFound)

		balance, err := f.ledger.BalanceOf(ctx, "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Equal(t, 4, balance.Used)
		assert.Empty(t, notificationsOf(t, f, "E1"))
	})
}

func TestConcurrentDebits(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		seed(t, f, "E1", leave.TypeCasual, 5, 0)

		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			succeeded int
		)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := f.ledger.Debit(context.Background(), "E1", leave.TypeCasual, 1, "")
				if err == nil {
					mu.Lock()
					succeeded++
					mu.Unlock()
					return
				}
				assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
			}()
		}
		wg.Wait()

		assert.Equal(t, 5, succeeded)
		balance, err := f.ledger.BalanceOf(context.Background(), "E1", leave.TypeCasual)
		require.NoError(t, err)
		assert.Equal(t, 0, balance.Remaining())
	})
}

func TestProvision(t *testing.T) {
	backends(t, func(t *testing.T, f *fixture) {
		ctx := context.Background()
		seed(t, f, "E1", leave.TypeCasual, 20, 4)

		created, err := f.ledger.Provision(ctx, "E1")
		require.NoError(t, err)
		assert.Len(t, created, 4)

		balances, err := f.ledger.Balances(ctx, "E1")
		require.NoError(t, err)
		totals := make(map[leave.LeaveType]int)
		for _, b := range balances {
			totals[b.LeaveType] = b.Total
		}
		assert.Equal(t, map[leave.LeaveType]int{
			leave.TypeCasual:    20,
			leave.TypeSick:      10,
			leave.TypeEarned:    15,
			leave.TypeMaternity: 90,
			leave.TypePaternity: 15,
		}, totals)

		again, err := f.ledger.Provision(ctx, "E1")
		require.NoError(t, err)
		assert.Empty(t, again)
	})
}
