package sqlite

import (
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
)

// Store groups the SQLite repositories sharing one database.
type Store struct {
	DB            *DB
	Attendance    attendance.Repository
	Balances      leave.BalanceRepository
	Requests      leave.RequestRepository
	Notifications notification.Repository
	Transactor    database.Transactor
}

func NewStore(db *DB) *Store {
	return &Store{
		DB:            db,
		Attendance:    NewAttendanceRepository(db),
		Balances:      NewLeaveBalanceRepository(db),
		Requests:      NewLeaveRequestRepository(db),
		Notifications: NewNotificationRepository(db),
		Transactor:    db,
	}
}
