package timemath

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	valid := map[string]Clock{
		"00:00:00": {0, 0, 0},
		"09:05:00": {9, 5, 0},
		"23:59:59": {23, 59, 59},
	}
	for input, want := range valid {
		got, err := ParseClock(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	invalid := []string{"", "24:00:00", "12:60:00", "12:00", "noon", "12:00:61"}
	for _, input := range invalid {
		_, err := ParseClock(input)
		assert.ErrorIs(t, err, ErrInvalidTime, input)
	}
}

func TestBetween_SameDay(t *testing.T) {
	d := Between(MustParseClock("09:05:00"), MustParseClock("17:35:00"))

	assert.Equal(t, 8, d.Hours)
	assert.Equal(t, 30, d.Minutes)
	assert.Equal(t, 8.5, d.TotalHours)
	assert.Equal(t, "8h 30m", d.Formatted)
}

func TestBetween_Equal(t *testing.T) {
	for _, s := range []string{"00:00:00", "09:00:00", "23:59:59"} {
		c := MustParseClock(s)
		d := Between(c, c)
		assert.Equal(t, 0, d.Hours)
		assert.Equal(t, 0, d.Minutes)
		assert.Equal(t, "0h 0m", d.Formatted)
	}
}

func TestBetween_MidnightWraparound(t *testing.T) {
	for in := 0; in < secondsPerDay; in += 3607 {
		for out := 0; out < in; out += 1999 {
			inClock := Clock{Hour: in / 3600, Minute: in % 3600 / 60, Second: in % 60}
			outClock := Clock{Hour: out / 3600, Minute: out % 3600 / 60, Second: out % 60}

			want := float64(secondsPerDay-in+out) / 3600
			got := Between(inClock, outClock)

			assert.InDelta(t, want, got.TotalHours, 0.0051, fmt.Sprintf("%s -> %s", inClock, outClock))
		}
	}
}

func TestBetween_NightShift(t *testing.T) {
	d := Between(MustParseClock("22:00:00"), MustParseClock("06:15:00"))
	assert.Equal(t, "8h 15m", d.Formatted)
	assert.Equal(t, 8.25, d.TotalHours)
}

func TestElapsed_InvalidInput(t *testing.T) {
	_, err := Elapsed("9am", "17:00:00")
	assert.ErrorIs(t, err, ErrInvalidTime)

	_, err = Elapsed("09:00:00", "")
	assert.ErrorIs(t, err, ErrInvalidTime)

	d, err := Elapsed("08:00:00", "12:20:30")
	require.NoError(t, err)
	assert.Equal(t, "4h 20m", d.Formatted)
	assert.Equal(t, 4.34, d.TotalHours)
}

func TestDurationAdd(t *testing.T) {
	a := FromSeconds(8*3600 + 30*60)
	b := FromSeconds(7*3600 + 45*60)

	sum := a.Add(b)
	assert.Equal(t, 16, sum.Hours)
	assert.Equal(t, 15, sum.Minutes)
	assert.Equal(t, "16h 15m", sum.Formatted)
}

func TestFormatForDisplay(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"00:00:00", "12:00 AM"},
		{"00:30:00", "12:30 AM"},
		{"09:05:00", "9:05 AM"},
		{"11:59:59", "11:59 AM"},
		{"12:00:00", "12:00 PM"},
		{"13:07:00", "1:07 PM"},
		{"23:45:00", "11:45 PM"},
	}
	for _, c := range cases {
		got := FormatForDisplay(MustParseClock(c.input))
		if got != c.want {
			t.Errorf("FormatForDisplay(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 3, DaysInclusive(MustParseDate("2025-05-15"), MustParseDate("2025-05-17")))
	assert.Equal(t, 1, DaysInclusive(MustParseDate("2025-05-15"), MustParseDate("2025-05-15")))
	assert.Equal(t, 0, DaysInclusive(MustParseDate("2025-05-17"), MustParseDate("2025-05-15")))
	assert.Equal(t, 31, DaysInclusive(MustParseDate("2025-03-01"), MustParseDate("2025-03-31")))
	assert.Equal(t, 146098, DaysInclusive(MustParseDate("2000-01-01"), MustParseDate("2400-01-01")))
}

func TestDate(t *testing.T) {
	loc := time.FixedZone("WIB", 7*3600)
	local := time.Date(2025, 5, 15, 1, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC), Date(local))
	assert.True(t, IsWeekend(MustParseDate("2025-05-17")))
	assert.False(t, IsWeekend(MustParseDate("2025-05-15")))
}
