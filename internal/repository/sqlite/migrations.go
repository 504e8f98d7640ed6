package sqlite

import (
	"context"
	"fmt"
)

var migrations = []struct {
	name  string
	query string
}{
	{"pragmas", `
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`},
	{"attendance_records", `
		CREATE TABLE IF NOT EXISTS attendance_records (
			employee_id TEXT NOT NULL,
			date        DATE NOT NULL,
			check_in    TIME,
			check_out   TIME,
			status      TEXT NOT NULL CHECK(status IN ('present', 'absent', 'late', 'leave', 'weekend', 'pending')),
			created_at  DATETIME NOT NULL,
			updated_at  DATETIME NOT NULL,
			PRIMARY KEY (employee_id, date),
			CHECK (check_out IS NULL OR check_in IS NOT NULL)
		);

		CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance_records(date);
	`},
	{"leave_balances", `
		CREATE TABLE IF NOT EXISTS leave_balances (
			employee_id TEXT NOT NULL,
			leave_type  TEXT NOT NULL,
			total       INTEGER NOT NULL CHECK(total >= 0),
			used        INTEGER NOT NULL CHECK(used >= 0),
			updated_at  DATETIME NOT NULL,
			PRIMARY KEY (employee_id, leave_type),
			CHECK (total - used >= 0)
		);

		CREATE TABLE IF NOT EXISTS leave_balance_entries (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			employee_id TEXT NOT NULL,
			leave_type  TEXT NOT NULL,
			kind        TEXT NOT NULL CHECK(kind IN ('credit', 'debit')),
			days        INTEGER NOT NULL,
			reason      TEXT NOT NULL DEFAULT '',
			total       INTEGER NOT NULL,
			used        INTEGER NOT NULL,
			created_at  DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_entries_balance ON leave_balance_entries(employee_id, leave_type);
	`},
	{"leave_requests", `
		CREATE TABLE IF NOT EXISTS leave_requests (
			id          TEXT PRIMARY KEY,
			employee_id TEXT NOT NULL,
			leave_type  TEXT NOT NULL,
			from_date   DATE NOT NULL,
			to_date     DATE NOT NULL,
			days        INTEGER NOT NULL,
			reason      TEXT NOT NULL DEFAULT '',
			status      TEXT NOT NULL DEFAULT 'pending' CHECK(status IN ('pending', 'approved', 'rejected')),
			applied_on  DATETIME NOT NULL,
			reviewed_on DATETIME,
			reviewed_by TEXT,
			comments    TEXT,
			CHECK (to_date >= from_date)
		);

		CREATE INDEX IF NOT EXISTS idx_leave_requests_employee ON leave_requests(employee_id, applied_on);
		CREATE INDEX IF NOT EXISTS idx_leave_requests_status ON leave_requests(status);
	`},
	{"notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			seq         INTEGER PRIMARY KEY AUTOINCREMENT,
			id          TEXT NOT NULL UNIQUE,
			employee_id TEXT NOT NULL,
			type        TEXT NOT NULL CHECK(type IN ('leave', 'balance', 'attendance')),
			title       TEXT NOT NULL,
			message     TEXT NOT NULL DEFAULT '',
			date        DATETIME NOT NULL,
			read        INTEGER NOT NULL DEFAULT 0,
			read_at     DATETIME
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_employee ON notifications(employee_id, seq);
	`},
}

// migrate creates the schema. Every statement is idempotent.
func (s *DB) migrate(ctx context.Context) error {
	for _, m := range migrations {
		if _, err := s.db.ExecContext(ctx, m.query); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
	}
	return nil
}
