package attendance

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

func TestExport(t *testing.T) {
	f := newFixture(t, Config{})
	ctx := context.Background()

	_, err := f.svc.CheckIn(ctx, "E1", at("2025-06-02T09:05:00Z"))
	require.NoError(t, err)
	_, err = f.svc.CheckOut(ctx, "E1", at("2025-06-02T17:35:00Z"))
	require.NoError(t, err)
	_, err = f.svc.CheckIn(ctx, "E2", at("2025-06-02T11:15:00Z"))
	require.NoError(t, err)

	dates, err := attendance.NewDateRange(timemath.MustParseDate("2025-06-01"), timemath.MustParseDate("2025-06-30"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, &buf, []string{"E1", "E2"}, dates))

	book, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(recordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, recordHeaders, rows[0])
	assert.Equal(t, []string{"E1", "2025-06-02", "present", "09:05:00", "17:35:00", "8h 30m", "8.5"}, rows[1])
	assert.Equal(t, "late", rows[2][2])

	summary, err := book.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, "E1", summary[1][0])
	assert.Equal(t, "100", summary[1][7])
	assert.Equal(t, "0", summary[2][7])
}
