package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type attendanceKey struct {
	employeeID string
	date       string
}

type attendanceRepository struct {
	mu      sync.RWMutex
	records map[attendanceKey]attendance.Record
}

func NewAttendanceRepository() attendance.Repository {
	return &attendanceRepository{records: make(map[attendanceKey]attendance.Record)}
}

func keyOf(employeeID string, date time.Time) attendanceKey {
	return attendanceKey{employeeID: employeeID, date: date.Format(timemath.DateLayout)}
}

// Get implements attendance.Repository.
func (r *attendanceRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[keyOf(employeeID, date)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

// Save implements attendance.Repository.
func (r *attendanceRepository) Save(ctx context.Context, record attendance.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	record.Date = timemath.Date(record.Date)

	r.mu.Lock()
	defer r.mu.Unlock()

	k := keyOf(record.EmployeeID, record.Date)
	if prev, ok := r.records[k]; ok && record.CreatedAt.IsZero() {
		record.CreatedAt = prev.CreatedAt
	}
	r.records[k] = record
	return nil
}

// ListByEmployee implements attendance.Repository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dates := attendance.DateRange{From: timemath.Date(from), To: timemath.Date(to)}
	out := make([]attendance.Record, 0)
	for k, rec := range r.records {
		if k.employeeID == employeeID && dates.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// ListByDate implements attendance.Repository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	day := date.Format(timemath.DateLayout)
	out := make([]attendance.Record, 0)
	for k, rec := range r.records {
		if k.date == day {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}
