package attendance

import (
	"fmt"
	"sort"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

func ParsePeriod(s string) (Period, error) {
	switch p := Period(s); p {
	case PeriodDay, PeriodWeek, PeriodMonth:
		return p, nil
	case "":
		return PeriodDay, nil
	}
	return "", ErrInvalidPeriod
}

// Key returns the bucket label of a date: 2006-01-02, 2006-W01 (ISO week) or 2006-01.
func (p Period) Key(date time.Time) string {
	switch p {
	case PeriodWeek:
		year, week := date.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case PeriodMonth:
		return date.Format("2006-01")
	default:
		return date.Format(timemath.DateLayout)
	}
}

// AggregateWorkingHours sums the working hours of every record with both clocks set.
func AggregateWorkingHours(records []Record) timemath.Duration {
	total := 0
	for _, r := range records {
		if d, ok := r.WorkingHours(); ok {
			total += d.Seconds
		}
	}
	return timemath.FromSeconds(total)
}

// AttendanceRate returns present / (present + absent + late) as a percentage rounded to
// two decimals. Leave, weekend and pending days are not counted. It is 0 when nothing counts.
func AttendanceRate(records []Record) float64 {
	var present, counted int64
	for _, r := range records {
		switch r.Status {
		case StatusPresent:
			present++
			counted++
		case StatusAbsent, StatusLate:
			counted++
		}
	}
	if counted == 0 {
		return 0
	}
	return decimal.NewFromInt(present).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(counted)).
		Round(2).
		InexactFloat64()
}

// PeriodSummary is the aggregate of one day, week or month.
type PeriodSummary struct {
	Period         string            `json:"period"`
	WorkingHours   timemath.Duration `json:"working_hours"`
	Present        int               `json:"present"`
	Late           int               `json:"late"`
	Absent         int               `json:"absent"`
	Leave          int               `json:"leave"`
	Weekend        int               `json:"weekend"`
	Pending        int               `json:"pending"`
	AttendanceRate float64           `json:"attendance_rate"`
}

// Summarize groups records into period buckets, ordered by bucket label.
func Summarize(records []Record, period Period) []PeriodSummary {
	buckets := make(map[string][]Record)
	for _, r := range records {
		key := period.Key(r.Date)
		buckets[key] = append(buckets[key], r)
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	summaries := make([]PeriodSummary, 0, len(keys))
	for _, k := range keys {
		group := buckets[k]
		s := PeriodSummary{
			Period:         k,
			WorkingHours:   AggregateWorkingHours(group),
			AttendanceRate: AttendanceRate(group),
		}
		for _, r := range group {
			switch r.Status {
			case StatusPresent:
				s.Present++
			case StatusLate:
				s.Late++
			case StatusAbsent:
				s.Absent++
			case StatusLeave:
				s.Leave++
			case StatusWeekend:
				s.Weekend++
			case StatusPending:
				s.Pending++
			}
		}
		summaries = append(summaries, s)
	}
	return summaries
}
