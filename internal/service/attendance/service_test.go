package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/memory"
	notificationsvc "github.com/cmlabs-hris/attendance-leave-go/internal/service/notification"
)

type fixture struct {
	svc      *AttendanceServiceImpl
	repo     attendance.Repository
	balances leave.BalanceRepository
	requests leave.RequestRepository
	notifier notification.Service
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	if cfg.LateCutoff == (timemath.Clock{}) {
		cfg.LateCutoff = timemath.MustParseClock("11:00:00")
	}
	store := memory.NewStore()
	notifier := notificationsvc.NewNotificationService(store.Notifications, notificationsvc.Config{})
	t.Cleanup(notifier.Stop)

	return &fixture{
		svc:      NewAttendanceService(store.Attendance, store.Balances, store.Requests, notifier, cfg),
		repo:     store.Attendance,
		balances: store.Balances,
		requests: store.Requests,
		notifier: notifier,
	}
}

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCheckInCheckOutDay(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	rec, err := f.svc.CheckIn(ctx, "E1", at("2025-06-02T09:05:00Z"))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
	assert.Equal(t, "09:05:00", rec.CheckIn.String())

	_, err = f.svc.CheckIn(ctx, "E1", at("2025-06-02T09:06:00Z"))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn)

	rec, err = f.svc.CheckOut(ctx, "E1", at("2025-06-02T17:35:00Z"))
	require.NoError(t, err)
	hours, ok := rec.WorkingHours()
	require.True(t, ok)
	assert.Equal(t, "8h 30m", hours.Formatted)
	assert.Equal(t, 8.5, hours.TotalHours)

	_, err = f.svc.CheckOut(ctx, "E1", at("2025-06-02T18:00:00Z"))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)

	_, err = f.svc.CheckIn(ctx, "E1", at("2025-06-02T19:00:00Z"))
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedIn, "re-check-in after check-out stays rejected")
}

func TestCheckOutBeforeCheckIn(t *testing.T) {
	f := newFixture(t, Config{})

	_, err := f.svc.CheckOut(context.Background(), "E1", at("2025-06-02T17:00:00Z"))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	stored, err := f.repo.Get(context.Background(), "E1", timemath.MustParseDate("2025-06-02"))
	require.NoError(t, err)
	assert.Nil(t, stored, "nothing is written on failure")
}

func TestLateCheckIn(t *testing.T) {
	t.Run("mark", func(t *testing.T) {
		f := newFixture(t, Config{LatePolicy: LatePolicyMark})
		rec, err := f.svc.CheckIn(context.Background(), "E1", at("2025-06-02T11:30:00Z"))
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusLate, rec.Status)
	})

	t.Run("cutoff itself is on time", func(t *testing.T) {
		f := newFixture(t, Config{})
		rec, err := f.svc.CheckIn(context.Background(), "E1", at("2025-06-02T11:00:00Z"))
		require.NoError(t, err)
		assert.Equal(t, attendance.StatusPresent, rec.Status)
	})

	t.Run("reject", func(t *testing.T) {
		f := newFixture(t, Config{LatePolicy: LatePolicyReject})
		_, err := f.svc.CheckIn(context.Background(), "E1", at("2025-06-02T11:30:00Z"))
		assert.ErrorIs(t, err, attendance.ErrCheckInClosed)
	})
}

func TestNightShiftClosesYesterday(t *testing.T) {
	f := newFixture(t, Config{LateCutoff: timemath.MustParseClock("23:00:00")})
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "E1", at("2025-06-02T22:00:00Z"))
	require.NoError(t, err)

	rec, err := f.svc.CheckOut(ctx, "E1", at("2025-06-03T06:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", rec.Date.Format(timemath.DateLayout))
	hours, _ := rec.WorkingHours()
	assert.Equal(t, "8h 0m", hours.Formatted)

	today, err := f.repo.Get(ctx, "E1", timemath.MustParseDate("2025-06-03"))
	require.NoError(t, err)
	assert.Nil(t, today)
}

func TestCheckOutNextDaytimeIsNotANightShift(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "E1", at("2025-06-02T09:00:00Z"))
	require.NoError(t, err)

	_, err = f.svc.CheckOut(ctx, "E1", at("2025-06-03T17:00:00Z"))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	// same clock as the check-in is not overnight either
	_, err = f.svc.CheckOut(ctx, "E1", at("2025-06-03T09:00:00Z"))
	assert.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	prev, err := f.repo.Get(ctx, "E1", timemath.MustParseDate("2025-06-02"))
	require.NoError(t, err)
	require.NotNil(t, prev)
	assert.Nil(t, prev.CheckOut)
}

func TestCheckInUsesConfiguredLocation(t *testing.T) {
	f := newFixture(t, Config{Location: time.FixedZone("UTC+7", 7*3600)})

	rec, err := f.svc.CheckIn(context.Background(), "E1", at("2025-06-02T20:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", rec.Date.Format(timemath.DateLayout))
	assert.Equal(t, "03:00:00", rec.CheckIn.String())
}

func TestConcurrentCheckInAcceptsOne(t *testing.T) {
	f := newFixture(t, Config{})
	now := at("2025-06-02T09:00:00Z")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		rejected int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.CheckIn(context.Background(), "E1", now)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				accepted++
			case errors.Is(err, attendance.ErrAlreadyCheckedIn):
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
	assert.Equal(t, 19, rejected)
}

type countingRepo struct {
	attendance.Repository
	lists int
}

func (c *countingRepo) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	c.lists++
	return c.Repository.ListByEmployee(ctx, employeeID, from, to)
}

func TestListForEmployeeIsLazyAndRestartable(t *testing.T) {
	repo := &countingRepo{Repository: memory.NewAttendanceRepository()}
	svc := NewAttendanceService(repo, memory.NewLeaveBalanceRepository(), nil, nil, Config{LateCutoff: timemath.MustParseClock("11:00:00")})
	ctx := context.Background()

	for _, d := range []string{"2025-06-04", "2025-06-02", "2025-06-03", "2025-07-01"} {
		_, err := svc.CheckIn(ctx, "E1", at(d+"T09:00:00Z"))
		require.NoError(t, err)
	}

	dates, err := attendance.NewDateRange(timemath.MustParseDate("2025-06-01"), timemath.MustParseDate("2025-06-30"))
	require.NoError(t, err)

	seq := svc.ListForEmployee(ctx, "E1", dates)
	assert.Equal(t, 0, repo.lists, "nothing is loaded before ranging")

	var got []string
	for rec, err := range seq {
		require.NoError(t, err)
		got = append(got, rec.Date.Format(timemath.DateLayout))
	}
	assert.Equal(t, []string{"2025-06-02", "2025-06-03", "2025-06-04"}, got)

	// a second pass reloads and stops early
	count := 0
	for _, err := range seq {
		require.NoError(t, err)
		count++
		if count == 1 {
			break
		}
	}
	assert.Equal(t, 1, count)
	assert.Equal(t, 2, repo.lists)
}

func TestSummary(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "E1", at("2025-06-02T09:05:00Z"))
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, "E1", at("2025-06-02T17:35:00Z"))
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, "E1", at("2025-06-03T11:30:00Z"))
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, "E1", at("2025-06-03T18:00:00Z"))
	require.NoError(t, err)

	dates, err := attendance.NewDateRange(timemath.MustParseDate("2025-06-01"), timemath.MustParseDate("2025-06-30"))
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, "E1", dates, attendance.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, "15h 0m", summary.WorkingHours.Formatted)
	assert.Equal(t, 50.0, summary.AttendanceRate)
	require.Len(t, summary.Periods, 1)
	assert.Equal(t, "2025-06", summary.Periods[0].Period)
	assert.Equal(t, 1, summary.Periods[0].Present)
	assert.Equal(t, 1, summary.Periods[0].Late)
}

func TestRollOver(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	for _, id := range []string{"E1", "E2", "E3"} {
		require.NoError(t, f.balances.Save(ctx, leave.Balance{EmployeeID: id, LeaveType: leave.TypeCasual, Total: 12}))
	}

	yesterday := timemath.MustParseDate("2025-06-02")
	pending, err := attendance.NewRecord("E1", yesterday, attendance.StatusPending)
	require.NoError(t, err)
	require.NoError(t, f.repo.Save(ctx, pending))
	_, err = f.svc.CheckIn(ctx, "E3", at("2025-06-02T09:00:00Z"))
	require.NoError(t, err)

	approved, err := leave.NewLeaveRequest("L1", "E2", leave.TypeCasual,
		timemath.MustParseDate("2025-06-03"), timemath.MustParseDate("2025-06-04"), "trip", yesterday)
	require.NoError(t, err)
	require.NoError(t, approved.Resolve(leave.RequestStatusApproved, "", "HR1", yesterday))
	require.NoError(t, f.requests.Create(ctx, approved))

	result, err := f.svc.RollOver(ctx, at("2025-06-03T00:10:00Z"))
	require.NoError(t, err)
	assert.Equal(t, "2025-06-03", result.Date)
	assert.Equal(t, 3, result.Created)
	assert.Equal(t, 1, result.MarkedAbsent)

	e1, err := f.repo.Get(ctx, "E1", yesterday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, e1.Status)

	e3, err := f.repo.Get(ctx, "E3", yesterday)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, e3.Status, "checked in days are untouched")

	today := timemath.MustParseDate("2025-06-03")
	e2, err := f.repo.Get(ctx, "E2", today)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLeave, e2.Status)

	e1Today, err := f.repo.Get(ctx, "E1", today)
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPending, e1Today.Status)

	list, err := f.notifier.List(ctx, "E1", notification.ListRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, notification.TypeAttendance, list.Notifications[0].Type)
	assert.Equal(t, "Marked Absent", list.Notifications[0].Title)

	again, err := f.svc.RollOver(ctx, at("2025-06-03T01:10:00Z"))
	require.NoError(t, err)
	assert.Zero(t, again.Created)
	assert.Zero(t, again.MarkedAbsent)

	// a check-in on a pending day still works
	rec, err := f.svc.CheckIn(ctx, "E1", at("2025-06-03T09:00:00Z"))
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, rec.Status)
}

func TestRollOverWeekend(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()
	require.NoError(t, f.balances.Save(ctx, leave.Balance{EmployeeID: "E1", LeaveType: leave.TypeSick, Total: 10}))

	_, err := f.svc.RollOver(ctx, at("2025-06-07T00:00:00Z"))
	require.NoError(t, err)

	rec, err := f.repo.Get(ctx, "E1", timemath.MustParseDate("2025-06-07"))
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, attendance.StatusWeekend, rec.Status)
}
