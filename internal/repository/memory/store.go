// Package memory keeps every repository in process memory. Data is lost on exit.
package memory

import (
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/database"
)

// Store groups the in-memory repositories.
type Store struct {
	Attendance    attendance.Repository
	Balances      leave.BalanceRepository
	Requests      leave.RequestRepository
	Notifications notification.Repository
	Transactor    database.Transactor
}

func NewStore() *Store {
	return &Store{
		Attendance:    NewAttendanceRepository(),
		Balances:      NewLeaveBalanceRepository(),
		Requests:      NewLeaveRequestRepository(),
		Notifications: NewNotificationRepository(),
		Transactor:    database.NewLockTransactor(),
	}
}
