package attendance

import (
	"context"
	"io"
	"iter"
	"time"
)

// Service defines business logic for attendance operations
type Service interface {
	// CheckIn records the employee's arrival for the day containing now.
	CheckIn(ctx context.Context, employeeID string, now time.Time) (Record, error)

	// CheckOut records the employee's departure, closing today's or last night's open session.
	CheckOut(ctx context.Context, employeeID string, now time.Time) (Record, error)

	// ListForEmployee yields the employee's records in the range, date ascending.
	// Every range over the sequence reloads from the store.
	ListForEmployee(ctx context.Context, employeeID string, dates DateRange) iter.Seq2[Record, error]

	// Summary aggregates the employee's records per day, week or month.
	Summary(ctx context.Context, employeeID string, dates DateRange, period Period) (SummaryResponse, error)

	// Export writes the records of the employees, or of everyone when none are given,
	// as an xlsx workbook.
	Export(ctx context.Context, w io.Writer, employeeIDs []string, dates DateRange) error

	// RollOver closes the previous day and opens records for the given day.
	RollOver(ctx context.Context, day time.Time) (RolloverResult, error)
}
