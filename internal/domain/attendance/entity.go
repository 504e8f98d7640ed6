package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusLeave   Status = "leave"
	StatusWeekend Status = "weekend"
	StatusPending Status = "pending"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusLeave, StatusWeekend, StatusPending:
		return true
	}
	return false
}

// Record is one employee's attendance for one calendar day.
type Record struct {
	EmployeeID string
	Date       time.Time
	CheckIn    *timemath.Clock
	CheckOut   *timemath.Clock
	Status     Status
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewRecord creates a record with no clock entries yet.
func NewRecord(employeeID string, date time.Time, status Status) (Record, error) {
	r := Record{
		EmployeeID: employeeID,
		Date:       timemath.Date(date),
		Status:     status,
	}
	if err := r.Validate(); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Validate checks the record invariants.
func (r Record) Validate() error {
	if r.EmployeeID == "" {
		return ErrEmployeeRequired
	}
	if r.Date.IsZero() {
		return ErrDateRequired
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	if r.CheckOut != nil && r.CheckIn == nil {
		return ErrCheckOutWithoutCheckIn
	}
	return nil
}

// IsOpen reports whether the employee checked in and has not checked out.
func (r Record) IsOpen() bool {
	return r.CheckIn != nil && r.CheckOut == nil
}

// WorkingHours returns the check-in to check-out duration. It is false if either clock is missing.
func (r Record) WorkingHours() (timemath.Duration, bool) {
	if r.CheckIn == nil || r.CheckOut == nil {
		return timemath.Duration{}, false
	}
	return timemath.Between(*r.CheckIn, *r.CheckOut), true
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	From time.Time
	To   time.Time
}

func NewDateRange(from, to time.Time) (DateRange, error) {
	from, to = timemath.Date(from), timemath.Date(to)
	if to.Before(from) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{From: from, To: to}, nil
}

// Contains reports whether the date lies inside the range.
func (d DateRange) Contains(date time.Time) bool {
	date = timemath.Date(date)
	return !date.Before(d.From) && !date.After(d.To)
}
