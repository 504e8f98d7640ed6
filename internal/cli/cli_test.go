package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/app"
	"github.com/cmlabs-hris/attendance-leave-go/internal/config"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	DisableColor()

	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageMemory},
		JWT:     config.JWTConfig{Secret: "cli-test-secret", AccessExpiration: "1h"},
		Attendance: config.AttendanceConfig{
			LateCutoff:       timemath.MustParseClock("11:00:00"),
			LatePolicy:       "mark",
			Location:         time.UTC,
			RolloverInterval: time.Hour,
		},
		Notification: config.NotificationConfig{QueueSize: 10, SSEBuffer: 4},
		Leave:        config.LeaveConfig{Policy: leave.DefaultPolicy()},
	}

	c := New(func(ctx context.Context) (*app.App, error) {
		return app.New(ctx, cfg)
	})
	t.Cleanup(c.Close)

	var out bytes.Buffer
	c.Root().SetOut(&out)
	c.Root().SetErr(&bytes.Buffer{})
	return c, &out
}

func run(t *testing.T, c *CLI, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	require.NoError(t, c.Execute(context.Background(), args))
	return out.String()
}

func TestVersionNeedsNoApplication(t *testing.T) {
	c := New(func(context.Context) (*app.App, error) {
		t.Fatal("factory must not be called")
		return nil, nil
	})
	var out bytes.Buffer
	c.Root().SetOut(&out)

	require.NoError(t, c.Execute(context.Background(), []string{"version"}))
	assert.Equal(t, "hrisctl dev\n", out.String())
}

func TestBalanceCommands(t *testing.T) {
	c, out := newTestCLI(t)

	got := run(t, c, out, "balance", "credit", "E1", "casual", "5", "--reason", "carry over")
	assert.Contains(t, got, "E1 Casual Leave: 5 days, remaining 5")

	got = run(t, c, out, "balance", "debit", "E1", "Casual Leave", "2")
	assert.Contains(t, got, "remaining 3")

	got = run(t, c, out, "balance", "show", "E1")
	assert.Contains(t, got, "Casual Leave")
	assert.Regexp(t, `Casual Leave\s+5\s+2\s+3`, got)

	got = run(t, c, out, "balance", "history", "E1", "casual")
	lines := strings.Split(strings.TrimSpace(got), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "carry over")
	assert.Contains(t, lines[1], "manual adjustment")

	err := c.Execute(context.Background(), []string{"balance", "debit", "E1", "casual", "9"})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	err = c.Execute(context.Background(), []string{"balance", "credit", "E1", "sabbatical", "1"})
	assert.ErrorIs(t, err, leave.ErrInvalidLeaveType)
}

func TestProvisionAndRollover(t *testing.T) {
	c, out := newTestCLI(t)

	got := run(t, c, out, "provision", "E1")
	assert.Equal(t, len(leave.AllLeaveTypes()), strings.Count(got, "provisioned"))

	got = run(t, c, out, "provision", "E1")
	assert.Contains(t, got, "already provisioned")

	got = run(t, c, out, "rollover", "--date", "2025-06-02")
	assert.Contains(t, got, "2025-06-02")
	assert.Contains(t, got, "created:       1")

	day := timemath.MustParseDate("2025-06-02")
	var records []attendance.Record
	for rec, err := range c.app.Attendance.ListForEmployee(context.Background(), "E1", attendance.DateRange{From: day, To: day}) {
		require.NoError(t, err)
		records = append(records, rec)
	}
	require.Len(t, records, 1)
	assert.Equal(t, attendance.StatusPending, records[0].Status)

	got = run(t, c, out, "rollover", "--date", "2025-06-02")
	assert.Contains(t, got, "created:       0")
}

func TestTokenCommand(t *testing.T) {
	c, out := newTestCLI(t)

	got := strings.TrimSpace(run(t, c, out, "token", "E1", "--role", "hr"))
	require.NotEmpty(t, got)
	assert.Equal(t, 2, strings.Count(got, "."), "compact JWT")

	err := c.Execute(context.Background(), []string{"token", "E1", "--role", "owner"})
	assert.Error(t, err)
}
