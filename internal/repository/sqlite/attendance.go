package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

type attendanceRepository struct {
	db *DB
}

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func nullClock(c *timemath.Clock) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: c.String(), Valid: true}
}

func scanClock(s sql.NullString) (*timemath.Clock, error) {
	if !s.Valid {
		return nil, nil
	}
	c, err := timemath.ParseClock(s.String)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const attendanceColumns = `employee_id, date, check_in, check_out, status, created_at, updated_at`

func scanRecord(row interface{ Scan(dest ...any) error }) (attendance.Record, error) {
	var (
		rec                  attendance.Record
		date                 string
		checkIn, checkOut    sql.NullString
		createdAt, updatedAt string
	)
	if err := row.Scan(&rec.EmployeeID, &date, &checkIn, &checkOut, &rec.Status, &createdAt, &updatedAt); err != nil {
		return attendance.Record{}, err
	}

	var err error
	if rec.Date, err = timemath.ParseDate(date); err != nil {
		return attendance.Record{}, fmt.Errorf("parsing date: %w", err)
	}
	if rec.CheckIn, err = scanClock(checkIn); err != nil {
		return attendance.Record{}, fmt.Errorf("parsing check in: %w", err)
	}
	if rec.CheckOut, err = scanClock(checkOut); err != nil {
		return attendance.Record{}, fmt.Errorf("parsing check out: %w", err)
	}
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return attendance.Record{}, fmt.Errorf("parsing created at: %w", err)
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return attendance.Record{}, fmt.Errorf("parsing updated at: %w", err)
	}
	return rec, nil
}

// Get implements attendance.Repository.
func (r *attendanceRepository) Get(ctx context.Context, employeeID string, date time.Time) (*attendance.Record, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE employee_id = ? AND date = ?`

	rec, err := scanRecord(r.db.conn(ctx).QueryRowContext(ctx, query, employeeID, date.Format(timemath.DateLayout)))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	return &rec, nil
}

// Save implements attendance.Repository.
func (r *attendanceRepository) Save(ctx context.Context, record attendance.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	now := time.Now()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = now
	}

	query := `
		INSERT INTO attendance_records (` + attendanceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (employee_id, date) DO UPDATE SET
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			status = excluded.status,
			updated_at = excluded.updated_at
	`
	_, err := r.db.conn(ctx).ExecContext(ctx, query,
		record.EmployeeID,
		record.Date.Format(timemath.DateLayout),
		nullClock(record.CheckIn),
		nullClock(record.CheckOut),
		record.Status,
		formatTime(record.CreatedAt),
		formatTime(record.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving attendance: %w", err)
	}
	return nil
}

func (r *attendanceRepository) list(ctx context.Context, query string, args ...any) ([]attendance.Record, error) {
	rows, err := r.db.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying attendance: %w", err)
	}
	defer rows.Close()

	records := make([]attendance.Record, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning attendance: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListByEmployee implements attendance.Repository.
func (r *attendanceRepository) ListByEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Record, error) {
	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`
	return r.list(ctx, query, employeeID, from.Format(timemath.DateLayout), to.Format(timemath.DateLayout))
}

// ListByDate implements attendance.Repository.
func (r *attendanceRepository) ListByDate(ctx context.Context, date time.Time) ([]attendance.Record, error) {
	query := `SELECT ` + attendanceColumns + ` FROM attendance_records WHERE date = ? ORDER BY employee_id`
	return r.list(ctx, query, date.Format(timemath.DateLayout))
}
