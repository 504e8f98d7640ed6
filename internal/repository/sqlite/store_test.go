package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/repotest"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestAttendanceRepository(t *testing.T) {
	repotest.Attendance(t, NewAttendanceRepository(newTestDB(t)))
}

func TestLeaveBalanceRepository(t *testing.T) {
	repotest.Balances(t, NewLeaveBalanceRepository(newTestDB(t)))
}

func TestLeaveRequestRepository(t *testing.T) {
	repotest.Requests(t, NewLeaveRequestRepository(newTestDB(t)))
}

func TestNotificationRepository(t *testing.T) {
	repotest.Notifications(t, NewNotificationRepository(newTestDB(t)))
}

func TestTransactor(t *testing.T) {
	s := NewStore(newTestDB(t))
	repotest.Transactor(t, s.Transactor, s.Balances)
	repotest.TransactorRollsBack(t, s.Transactor, s.Balances)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	ctx := context.Background()

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, NewLeaveBalanceRepository(db).Save(ctx, leave.Balance{EmployeeID: "E1", LeaveType: leave.TypeCasual, Total: 12}))
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	defer db.Close()

	b, err := NewLeaveBalanceRepository(db).Get(ctx, "E1", leave.TypeCasual)
	require.NoError(t, err)
	assert.Equal(t, 12, b.Total)
}
