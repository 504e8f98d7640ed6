package postgresql

import (
	"github.com/google/uuid"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
)

// Store groups the PostgreSQL repositories sharing one pool.
type Store struct {
	Attendance    attendance.Repository
	Balances      leave.BalanceRepository
	Requests      leave.RequestRepository
	Notifications notification.Repository
	Transactor    database.Transactor
}

func NewStore(db *database.DB) *Store {
	return &Store{
		Attendance:    NewAttendanceRepository(db),
		Balances:      NewLeaveBalanceRepository(db),
		Requests:      NewLeaveRequestRepository(db),
		Notifications: NewNotificationRepository(db),
		Transactor:    NewTransactor(db),
	}
}

// isUUID reports whether id can be compared against a uuid column without a 22P02 error.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
