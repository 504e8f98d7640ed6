package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.Repository {
	return &attendanceRepositoryImpl{db: db}
}

// Clocks travel as text so the pgx time codec never sees a full timestamp.
const attendanceSelect = `
	SELECT employee_id, date,
		   to_char(check_in, 'HH24:MI:SS'), to_char(check_out, 'HH24:MI:SS'),
		   status, created_at, updated_at
	FROM attendance_records
`

func clockText(c *timemath.Clock) *string {
	if c == nil {
		return nil
	}
	s := c.String()
	return &s
}

func parseClockText(s *string) (*timemath.Clock, error) {
	if s == nil {
		return nil, nil
	}
	c, err := timemath.ParseClock(*s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var (
		rec               attendance.Record
		status            string
		checkIn, checkOut *string
	)
	if err := row.Scan(&rec.EmployeeID, &rec.Date, &checkIn, &checkOut, &status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return attendance.Record{}, err
	}
	rec.Status = attendance.Status(status)

	var err error
	if rec.CheckIn, err = parseClockText(checkIn); err != nil {
		return attendance.Record{}, fmt.Errorf("parse check in: %w", err)
	}
	if rec.CheckOut, err = parseClockText(checkOut); err != nil {
		return attendance.Record{}, fmt.Errorf("parse check out: %w", err)
	}
	return rec, nil
}

// Get implements attendance.Repository.
func (r *attendanceRepositoryImpl) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rec, err := scanAttendance(q.QueryRow(ctx, attendanceSelect+` WHERE employee_id = $1 AND date = $2`,
		employeeID, timemath.Date(date)))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance: %w", err)
	}
	return &rec, nil
}

// Save implements attendance.Repository.
func (r *attendanceRepositoryImpl) Save(ctx context.Context, record attendance.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}
	q := GetQuerier(ctx, r.db)

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	query := `
		INSERT INTO attendance_records (employee_id, date, check_in, check_out, status, created_at, updated_at)
		VALUES ($1, $2, CAST($3::text AS time), CAST($4::text AS time), $5, $6, $7)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in = EXCLUDED.check_in,
			check_out = EXCLUDED.check_out,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err := q.Exec(ctx, query,
		record.EmployeeID,
		timemath.Date(record.Date),
		clockText(record.CheckIn),
		clockText(record.CheckOut),
		string(record.Status),
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

func (r *attendanceRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]attendance.Record, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		rec, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListByEmployee implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	return r.list(ctx, attendanceSelect+` WHERE employee_id = $1 AND date BETWEEN $2 AND $3 ORDER BY date ASC`,
		employeeID, timemath.Date(from), timemath.Date(to))
}

// ListByDate implements attendance.Repository.
func (r *attendanceRepositoryImpl) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	return r.list(ctx, attendanceSelect+` WHERE date = $1 ORDER BY employee_id`, timemath.Date(date))
}
