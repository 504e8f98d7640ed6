package attendance

import (
	"context"
	"time"
)

// Repository defines data access methods for attendance records.
// Implementations keep at most one record per (employeeID, date).
type Repository interface {
	// Get returns the record for an employee on a date, or nil if none exists.
	Get(ctx context.Context, employeeID string, date time.Time) (*Record, error)

	// Save inserts or replaces the record keyed by (EmployeeID, Date).
	Save(ctx context.Context, record Record) error

	// ListByEmployee returns records in [from, to] ordered by date ascending.
	ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)

	// ListByDate returns every employee's record for a date.
	ListByDate(ctx context.Context, date time.Time) ([]Record, error)
}
