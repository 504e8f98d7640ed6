package attendance

import (
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type AttendanceResponse struct {
	EmployeeID      string             `json:"employee_id"`
	Date            string             `json:"date"`
	CheckInTime     *string            `json:"check_in_time,omitempty"`
	CheckInDisplay  *string            `json:"check_in_display,omitempty"`
	CheckOutTime    *string            `json:"check_out_time,omitempty"`
	CheckOutDisplay *string            `json:"check_out_display,omitempty"`
	WorkingHours    *timemath.Duration `json:"working_hours,omitempty"`
	Status          Status             `json:"status"`
}

// ToResponse maps a record to its API shape.
func ToResponse(r Record) AttendanceResponse {
	resp := AttendanceResponse{
		EmployeeID: r.EmployeeID,
		Date:       r.Date.Format(timemath.DateLayout),
		Status:     r.Status,
	}
	if r.CheckIn != nil {
		raw, display := r.CheckIn.String(), timemath.FormatForDisplay(*r.CheckIn)
		resp.CheckInTime, resp.CheckInDisplay = &raw, &display
	}
	if r.CheckOut != nil {
		raw, display := r.CheckOut.String(), timemath.FormatForDisplay(*r.CheckOut)
		resp.CheckOutTime, resp.CheckOutDisplay = &raw, &display
	}
	if d, ok := r.WorkingHours(); ok {
		resp.WorkingHours = &d
	}
	return resp
}

// RangeFilter is the query of list, summary and export endpoints.
type RangeFilter struct {
	EmployeeID string `json:"employee_id,omitempty"`
	From       string `json:"from"`   // YYYY-MM-DD
	To         string `json:"to"`     // YYYY-MM-DD
	Period     string `json:"period"` // day, week, month
}

// Validate checks the filter and resolves it to a DateRange. Missing bounds default to
// the month containing now.
func (f *RangeFilter) Validate(now time.Time) (DateRange, error) {
	var errs validator.ValidationErrors

	today := timemath.Date(now)
	from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	if !validator.IsEmpty(f.From) {
		d, ok := validator.IsValidDate(f.From)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "from",
				Message: "from must be in YYYY-MM-DD format",
			})
		}
		from = d
	}
	if !validator.IsEmpty(f.To) {
		d, ok := validator.IsValidDate(f.To)
		if !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must be in YYYY-MM-DD format",
			})
		}
		to = d
	}
	if _, err := ParsePeriod(f.Period); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "period",
			Message: "period must be one of day, week, month",
		})
	}

	if len(errs) > 0 {
		return DateRange{}, errs
	}

	return NewDateRange(from, to)
}

type ListAttendanceResponse struct {
	EmployeeID   string               `json:"employee_id"`
	From         string               `json:"from"`
	To           string               `json:"to"`
	TotalCount   int                  `json:"total_count"`
	WorkingHours timemath.Duration    `json:"working_hours"`
	Attendances  []AttendanceResponse `json:"attendances"`
}

type SummaryResponse struct {
	EmployeeID     string            `json:"employee_id"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	Period         Period            `json:"period"`
	WorkingHours   timemath.Duration `json:"working_hours"`
	AttendanceRate float64           `json:"attendance_rate"`
	Periods        []PeriodSummary   `json:"periods"`
}

type RolloverResult struct {
	Date         string `json:"date"`
	Created      int    `json:"created"`
	MarkedAbsent int    `json:"marked_absent"`
}
