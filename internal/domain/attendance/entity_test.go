package attendance

import (
	"testing"

	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	r, err := NewRecord("E1", timemath.MustParseDate("2025-05-15"), StatusPending)
	require.NoError(t, err)
	assert.Nil(t, r.CheckIn)
	assert.False(t, r.IsOpen())

	_, err = NewRecord("", timemath.MustParseDate("2025-05-15"), StatusPending)
	assert.ErrorIs(t, err, ErrEmployeeRequired)

	_, err = NewRecord("E1", timemath.MustParseDate("2025-05-15"), Status("holiday"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestRecordValidate_CheckOutRequiresCheckIn(t *testing.T) {
	r := record("2025-05-15", StatusPresent, "", "")
	r.CheckOut = clock("17:00:00")
	assert.ErrorIs(t, r.Validate(), ErrCheckOutWithoutCheckIn)

	r.CheckIn = clock("18:00:00")
	assert.NoError(t, r.Validate())
	hours, ok := r.WorkingHours()
	require.True(t, ok)
	assert.Equal(t, "23h 0m", hours.Formatted)
}

func TestDateRange(t *testing.T) {
	dates, err := NewDateRange(timemath.MustParseDate("2025-05-01"), timemath.MustParseDate("2025-05-31"))
	require.NoError(t, err)
	assert.True(t, dates.Contains(timemath.MustParseDate("2025-05-01")))
	assert.True(t, dates.Contains(timemath.MustParseDate("2025-05-31")))
	assert.False(t, dates.Contains(timemath.MustParseDate("2025-06-01")))

	_, err = NewDateRange(timemath.MustParseDate("2025-05-31"), timemath.MustParseDate("2025-05-01"))
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestToResponse(t *testing.T) {
	resp := ToResponse(record("2025-05-15", StatusPresent, "09:05:00", "17:35:00"))

	assert.Equal(t, "2025-05-15", resp.Date)
	require.NotNil(t, resp.CheckInDisplay)
	assert.Equal(t, "9:05 AM", *resp.CheckInDisplay)
	assert.Equal(t, "5:35 PM", *resp.CheckOutDisplay)
	require.NotNil(t, resp.WorkingHours)
	assert.Equal(t, "8h 30m", resp.WorkingHours.Formatted)

	open := ToResponse(record("2025-05-16", StatusLate, "11:20:00", ""))
	assert.Nil(t, open.WorkingHours)
	assert.Nil(t, open.CheckOutTime)
}
