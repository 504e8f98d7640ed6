package postgresql_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/postgresql"
	"github.com/cmlabs-hris/attendance-leave-go/internal/repository/repotest"
)

// freshStore skips the test when no database is configured.
func freshStore(t *testing.T) *postgresql.Store {
	t.Helper()
	ctx := context.Background()

	setup, err := NewTestDatabase(ctx)
	require.NoError(t, err)
	if setup == nil {
		t.Skip("TEST_DATABASE_URL not set")
	}
	t.Cleanup(setup.Close)

	require.NoError(t, setup.TruncateAllTables(ctx))
	return postgresql.NewStore(setup.DB)
}

func TestAttendanceRepository(t *testing.T) {
	repotest.Attendance(t, freshStore(t).Attendance)
}

func TestLeaveBalanceRepository(t *testing.T) {
	repotest.Balances(t, freshStore(t).Balances)
}

func TestLeaveRequestRepository(t *testing.T) {
	repotest.Requests(t, freshStore(t).Requests)
}

func TestNotificationRepository(t *testing.T) {
	repotest.Notifications(t, freshStore(t).Notifications)
}

func TestTransactor(t *testing.T) {
	s := freshStore(t)
	repotest.Transactor(t, s.Transactor, s.Balances)
	repotest.TransactorRollsBack(t, s.Transactor, s.Balances)
}
