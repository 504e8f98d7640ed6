package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, jwt.ErrReviewerRequired):
		Forbidden(w, "HR or admin role required")
	case errors.Is(err, jwt.ErrInvalidRole):
		BadRequest(w, "Invalid role", nil)

	// Time errors
	case errors.Is(err, timemath.ErrInvalidTime):
		BadRequest(w, "Invalid time, expected HH:MM:SS", nil)

	// Attendance domain errors
	case errors.Is(err, attendance.ErrAlreadyCheckedIn):
		Conflict(w, "Already checked in today")
	case errors.Is(err, attendance.ErrAlreadyCheckedOut):
		Conflict(w, "Already checked out today")
	case errors.Is(err, attendance.ErrNotCheckedIn):
		BadRequest(w, "Not checked in yet", nil)
	case errors.Is(err, attendance.ErrCheckInClosed):
		Forbidden(w, "Check-in is closed for today")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance record not found")
	case errors.Is(err, attendance.ErrInvalidDateRange):
		BadRequest(w, "End date must not be before start date", nil)
	case errors.Is(err, attendance.ErrInvalidPeriod):
		BadRequest(w, "Period must be one of day, week, month", nil)
	case errors.Is(err, attendance.ErrInvalidStatus):
		BadRequest(w, "Invalid attendance status", nil)
	case errors.Is(err, attendance.ErrEmployeeRequired), errors.Is(err, leave.ErrEmployeeRequired):
		BadRequest(w, "Employee ID is required", nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrInvalidDays):
		BadRequest(w, "Days must be a positive whole number", nil)
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrNotPending):
		Conflict(w, "Leave request already reviewed")
	case errors.Is(err, leave.ErrInvalidRange):
		BadRequest(w, "Leave end date must not be before the start date", nil)
	case errors.Is(err, leave.ErrInvalidDecision):
		BadRequest(w, "Decision must be approved or rejected", nil)
	case errors.Is(err, leave.ErrInvalidStatus):
		BadRequest(w, "Invalid leave request status", nil)
	case errors.Is(err, leave.ErrInvalidLeaveType):
		BadRequest(w, "Invalid leave type", nil)

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidNotificationType):
		BadRequest(w, "Invalid notification type", nil)
	case errors.Is(err, notification.ErrRecipientRequired):
		BadRequest(w, "Notification recipient is required", nil)
	case errors.Is(err, notification.ErrTitleRequired):
		BadRequest(w, "Notification title is required", nil)

	// Default
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
