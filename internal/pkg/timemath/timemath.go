// Package timemath holds the wall-clock and calendar arithmetic used by attendance and leave.
package timemath

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// ClockLayout is the wire and storage form of a wall-clock time.
	ClockLayout = "15:04:05"
	// DateLayout is the wire and storage form of a calendar date.
	DateLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

var ErrInvalidTime = errors.New("invalid time, expected HH:MM:SS")

// Clock is a wall-clock time without a date component.
type Clock struct {
	Hour   int
	Minute int
	Second int
}

// ParseClock parses "HH:MM:SS".
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return Clock{}, fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}, nil
}

// MustParseClock is ParseClock for constants and tests.
func MustParseClock(s string) Clock {
	c, err := ParseClock(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ClockOf returns the wall-clock part of t in t's location.
func ClockOf(t time.Time) Clock {
	return Clock{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

// Seconds returns the number of seconds since midnight.
func (c Clock) Seconds() int {
	return c.Hour*3600 + c.Minute*60 + c.Second
}

// After reports whether c is strictly later in the day than o.
func (c Clock) After(o Clock) bool {
	return c.Seconds() > o.Seconds()
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", c.Hour, c.Minute, c.Second)
}

func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Clock) UnmarshalText(b []byte) error {
	parsed, err := ParseClock(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Duration is an elapsed working time.
type Duration struct {
	Seconds    int     `json:"seconds"`
	Hours      int     `json:"hours"`
	Minutes    int     `json:"minutes"`
	TotalHours float64 `json:"total_hours"`
	Formatted  string  `json:"formatted"`
}

// FromSeconds builds a Duration from a second count. Negative input is treated as zero.
func FromSeconds(seconds int) Duration {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return Duration{
		Seconds:    seconds,
		Hours:      hours,
		Minutes:    minutes,
		TotalHours: decimal.NewFromInt(int64(seconds)).Div(decimal.NewFromInt(3600)).Round(2).InexactFloat64(),
		Formatted:  fmt.Sprintf("%dh %dm", hours, minutes),
	}
}

// Add returns the sum of d and o.
func (d Duration) Add(o Duration) Duration {
	return FromSeconds(d.Seconds + o.Seconds)
}

// Between returns out - in. A negative difference means the shift crossed midnight,
// so a full day is added.
func Between(in, out Clock) Duration {
	diff := out.Seconds() - in.Seconds()
	if diff < 0 {
		diff += secondsPerDay
	}
	return FromSeconds(diff)
}

// Elapsed parses both clocks and returns the duration between them.
func Elapsed(checkIn, checkOut string) (Duration, error) {
	in, err := ParseClock(checkIn)
	if err != nil {
		return Duration{}, err
	}
	out, err := ParseClock(checkOut)
	if err != nil {
		return Duration{}, err
	}
	return Between(in, out), nil
}

// FormatForDisplay renders c as "h:mm AM/PM".
func FormatForDisplay(c Clock) string {
	suffix := "AM"
	if c.Hour >= 12 {
		suffix = "PM"
	}
	h := c.Hour % 12
	if h == 0 {
		h = 12
	}
	return fmt.Sprintf("%d:%02d %s", h, c.Minute, suffix)
}

// Date truncates t to its calendar date in t's location, returned as midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses "YYYY-MM-DD".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// MustParseDate is ParseDate for constants and tests.
func MustParseDate(s string) time.Time {
	t, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

// DaysInclusive counts calendar days in [from, to]. It returns 0 when to is before from.
func DaysInclusive(from, to time.Time) int {
	from, to = Date(from), Date(to)
	if to.Before(from) {
		return 0
	}
	return int((to.Unix()-from.Unix())/86400) + 1
}

// IsWeekend reports whether the date falls on Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}
