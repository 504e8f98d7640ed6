package attendance

import "errors"

// Attendance domain errors
var (
	// Check-in errors
	ErrAlreadyCheckedIn  = errors.New("you have already checked in today")
	ErrCheckInClosed     = errors.New("check-in is closed for today, the late cutoff has passed")
	ErrNotCheckedIn      = errors.New("you have not checked in yet")
	ErrAlreadyCheckedOut = errors.New("you have already checked out today")

	// Record invariants
	ErrEmployeeRequired       = errors.New("employee id is required")
	ErrDateRequired           = errors.New("attendance date is required")
	ErrInvalidStatus          = errors.New("invalid attendance status")
	ErrCheckOutWithoutCheckIn = errors.New("check-out requires a check-in")
	ErrInvalidDateRange       = errors.New("end date must not be before start date")
	ErrInvalidPeriod          = errors.New("period must be one of day, week, month")

	// General errors
	ErrAttendanceNotFound = errors.New("attendance record not found")
)
