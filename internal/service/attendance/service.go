package attendance

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/moby/locker"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

// LatePolicy decides what happens to a check-in after the cutoff.
type LatePolicy string

const (
	LatePolicyMark   LatePolicy = "mark"   // accept and mark late
	LatePolicyReject LatePolicy = "reject" // refuse with ErrCheckInClosed
)

var ErrInvalidLatePolicy = errors.New("late policy must be mark or reject")

func ParseLatePolicy(s string) (LatePolicy, error) {
	switch p := LatePolicy(s); p {
	case LatePolicyMark, LatePolicyReject:
		return p, nil
	}
	return "", ErrInvalidLatePolicy
}

type Config struct {
	LateCutoff timemath.Clock
	LatePolicy LatePolicy
	// Location decides which calendar day a timestamp belongs to.
	Location *time.Location
}

// Roster lists the employees the day rollover prepares records for.
type Roster interface {
	ListEmployeeIDs(ctx context.Context) ([]string, error)
}

// LeaveCalendar reports approved leave.
type LeaveCalendar interface {
	IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error)
}

type AttendanceServiceImpl struct {
	repo     attendance.Repository
	roster   Roster
	leaves   LeaveCalendar
	notifier notification.Service
	config   Config
	locks    *locker.Locker
}

// NewAttendanceService wires the service. notifier may be nil.
func NewAttendanceService(repo attendance.Repository, roster Roster, leaves LeaveCalendar, notifier notification.Service, cfg Config) *AttendanceServiceImpl {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.LatePolicy == "" {
		cfg.LatePolicy = LatePolicyMark
	}
	return &AttendanceServiceImpl{
		repo:     repo,
		roster:   roster,
		leaves:   leaves,
		notifier: notifier,
		config:   cfg,
		locks:    locker.New(),
	}
}

// lock serializes attendance writes of one employee and returns the release func.
func (a *AttendanceServiceImpl) lock(employeeID string) func() {
	a.locks.Lock(employeeID)
	return func() {
		if err := a.locks.Unlock(employeeID); err != nil {
			slog.Error("Failed to release attendance lock", "employee_id", employeeID, "error", err)
		}
	}
}

// localDay splits now into its calendar date and wall clock in the configured location.
func (a *AttendanceServiceImpl) localDay(now time.Time) (time.Time, timemath.Clock) {
	local := now.In(a.config.Location)
	return timemath.Date(local), timemath.ClockOf(local)
}

// CheckIn implements attendance.Service.
func (a *AttendanceServiceImpl) CheckIn(ctx context.Context, employeeID string, now time.Time) (attendance.Record, error) {
	if employeeID == "" {
		return attendance.Record{}, attendance.ErrEmployeeRequired
	}
	date, at := a.localDay(now)

	unlock := a.lock(employeeID)
	defer unlock()

	existing, err := a.repo.Get(ctx, employeeID, date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	if existing != nil && existing.CheckIn != nil {
		return attendance.Record{}, attendance.ErrAlreadyCheckedIn
	}

	status := attendance.StatusPresent
	if at.After(a.config.LateCutoff) {
		if a.config.LatePolicy == LatePolicyReject {
			return attendance.Record{}, attendance.ErrCheckInClosed
		}
		status = attendance.StatusLate
	}

	var rec attendance.Record
	if existing != nil {
		rec = *existing
	} else {
		rec, err = attendance.NewRecord(employeeID, date, attendance.StatusPending)
		if err != nil {
			return attendance.Record{}, err
		}
		rec.CreatedAt = now
	}
	rec.CheckIn = &at
	rec.Status = status
	rec.UpdatedAt = now

	if err := a.repo.Save(ctx, rec); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance: %w", err)
	}

	slog.Info("Employee checked in", "employee_id", employeeID, "date", date.Format(timemath.DateLayout),
		"check_in", at.String(), "status", status)
	return rec, nil
}

// CheckOut implements attendance.Service. With no check-in today, an open session
// from yesterday is closed instead when the clock is still before yesterday's
// check-in (night shift). Any later check-out fails with ErrNotCheckedIn.
func (a *AttendanceServiceImpl) CheckOut(ctx context.Context, employeeID string, now time.Time) (attendance.Record, error) {
	if employeeID == "" {
		return attendance.Record{}, attendance.ErrEmployeeRequired
	}
	date, at := a.localDay(now)

	unlock := a.lock(employeeID)
	defer unlock()

	rec, err := a.repo.Get(ctx, employeeID, date)
	if err != nil {
		return attendance.Record{}, fmt.Errorf("failed to load attendance: %w", err)
	}

	if rec == nil || rec.CheckIn == nil {
		prev, err := a.repo.Get(ctx, employeeID, date.AddDate(0, 0, -1))
		if err != nil {
			return attendance.Record{}, fmt.Errorf("failed to load attendance: %w", err)
		}
		if prev == nil || !prev.IsOpen() || !prev.CheckIn.After(at) {
			return attendance.Record{}, attendance.ErrNotCheckedIn
		}
		rec = prev
	}

	if rec.CheckOut != nil {
		return attendance.Record{}, attendance.ErrAlreadyCheckedOut
	}

	rec.CheckOut = &at
	rec.UpdatedAt = now
	if err := a.repo.Save(ctx, *rec); err != nil {
		return attendance.Record{}, fmt.Errorf("failed to save attendance: %w", err)
	}

	hours, _ := rec.WorkingHours()
	slog.Info("Employee checked out", "employee_id", employeeID, "date", rec.Date.Format(timemath.DateLayout),
		"check_out", at.String(), "working_hours", hours.Formatted)
	return *rec, nil
}

// ListForEmployee implements attendance.Service. Nothing is read until the
// sequence is ranged over; each range reloads from the store.
func (a *AttendanceServiceImpl) ListForEmployee(ctx context.Context, employeeID string, dates attendance.DateRange) iter.Seq2[attendance.Record, error] {
	return func(yield func(attendance.Record, error) bool) {
		records, err := a.repo.ListByEmployee(ctx, employeeID, dates.From, dates.To)
		if err != nil {
			yield(attendance.Record{}, fmt.Errorf("failed to list attendance: %w", err))
			return
		}
		for _, rec := range records {
			if !dates.Contains(rec.Date) {
				continue
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// collect drains a record sequence, stopping at the first error.
func collect(seq iter.Seq2[attendance.Record, error]) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0)
	for rec, err := range seq {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Summary implements attendance.Service.
func (a *AttendanceServiceImpl) Summary(ctx context.Context, employeeID string, dates attendance.DateRange, period attendance.Period) (attendance.SummaryResponse, error) {
	records, err := collect(a.ListForEmployee(ctx, employeeID, dates))
	if err != nil {
		return attendance.SummaryResponse{}, err
	}
	if period == "" {
		period = attendance.PeriodDay
	}

	return attendance.SummaryResponse{
		EmployeeID:     employeeID,
		From:           dates.From.Format(timemath.DateLayout),
		To:             dates.To.Format(timemath.DateLayout),
		Period:         period,
		WorkingHours:   attendance.AggregateWorkingHours(records),
		AttendanceRate: attendance.AttendanceRate(records),
		Periods:        attendance.Summarize(records, period),
	}, nil
}

// RollOver implements attendance.Service. Yesterday's pending records that never
// checked in become absent; every rostered employee without a record for day gets one,
// weekend on Saturday and Sunday, leave when approved leave covers it, pending otherwise.
func (a *AttendanceServiceImpl) RollOver(ctx context.Context, day time.Time) (attendance.RolloverResult, error) {
	date := timemath.Date(day.In(a.config.Location))
	result := attendance.RolloverResult{Date: date.Format(timemath.DateLayout)}

	yesterday := date.AddDate(0, 0, -1)
	stale, err := a.repo.ListByDate(ctx, yesterday)
	if err != nil {
		return result, fmt.Errorf("failed to list attendance for %s: %w", yesterday.Format(timemath.DateLayout), err)
	}
	for _, rec := range stale {
		if rec.Status != attendance.StatusPending || rec.CheckIn != nil {
			continue
		}
		if err := a.markAbsent(ctx, rec, day); err != nil {
			return result, err
		}
		result.MarkedAbsent++
	}

	employees, err := a.roster.ListEmployeeIDs(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to list employees: %w", err)
	}
	for _, employeeID := range employees {
		created, err := a.openDay(ctx, employeeID, date, day)
		if err != nil {
			return result, err
		}
		if created {
			result.Created++
		}
	}

	return result, nil
}

func (a *AttendanceServiceImpl) markAbsent(ctx context.Context, rec attendance.Record, now time.Time) error {
	unlock := a.lock(rec.EmployeeID)
	defer unlock()

	// re-read under the lock; a late check-in may have landed
	current, err := a.repo.Get(ctx, rec.EmployeeID, rec.Date)
	if err != nil {
		return fmt.Errorf("failed to load attendance: %w", err)
	}
	if current == nil || current.Status != attendance.StatusPending || current.CheckIn != nil {
		return nil
	}

	current.Status = attendance.StatusAbsent
	current.UpdatedAt = now
	if err := a.repo.Save(ctx, *current); err != nil {
		return fmt.Errorf("failed to mark absent: %w", err)
	}

	day := current.Date.Format(timemath.DateLayout)
	a.notify(ctx, notification.Notification{
		EmployeeID: current.EmployeeID,
		Type:       notification.TypeAttendance,
		Title:      "Marked Absent",
		Message:    fmt.Sprintf("No check-in was recorded on %s, the day is marked absent.", day),
	})
	return nil
}

func (a *AttendanceServiceImpl) openDay(ctx context.Context, employeeID string, date, now time.Time) (bool, error) {
	unlock := a.lock(employeeID)
	defer unlock()

	existing, err := a.repo.Get(ctx, employeeID, date)
	if err != nil {
		return false, fmt.Errorf("failed to load attendance: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	status := attendance.StatusPending
	switch {
	case timemath.IsWeekend(date):
		status = attendance.StatusWeekend
	case a.leaves != nil:
		onLeave, err := a.leaves.IsOnLeave(ctx, employeeID, date)
		if err != nil {
			return false, fmt.Errorf("failed to check leave: %w", err)
		}
		if onLeave {
			status = attendance.StatusLeave
		}
	}

	rec, err := attendance.NewRecord(employeeID, date, status)
	if err != nil {
		return false, err
	}
	rec.CreatedAt, rec.UpdatedAt = now, now
	if err := a.repo.Save(ctx, rec); err != nil {
		return false, fmt.Errorf("failed to create attendance: %w", err)
	}
	return true, nil
}

func (a *AttendanceServiceImpl) notify(ctx context.Context, n notification.Notification) {
	if a.notifier == nil {
		return
	}
	if err := a.notifier.Notify(ctx, n); err != nil {
		slog.Warn("Failed to send attendance notification", "employee_id", n.EmployeeID, "error", err)
	}
}

var _ attendance.Service = (*AttendanceServiceImpl)(nil)
