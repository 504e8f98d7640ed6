package leave

import "errors"

var (
	// Ledger errors
	ErrInsufficientBalance = errors.New("insufficient leave balance remaining")
	ErrBalanceNotFound     = errors.New("leave balance not found")
	ErrInvalidDays         = errors.New("days must be a positive whole number")

	// Request errors
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrInvalidRange         = errors.New("leave end date must not be before the start date")
	ErrNotPending           = errors.New("leave request has already been reviewed")
	ErrInvalidDecision      = errors.New("decision must be approved or rejected")
	ErrInvalidStatus        = errors.New("invalid leave request status")

	// Shared
	ErrInvalidLeaveType = errors.New("invalid leave type")
	ErrEmployeeRequired = errors.New("employee id is required")
)
