package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/validator"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", validator.ValidationErrors{{Field: "reason", Message: "reason is required"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{"invalid token", jwt.ErrInvalidToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"reviewer required", jwt.ErrReviewerRequired, http.StatusForbidden, "FORBIDDEN"},
		{"already checked in", attendance.ErrAlreadyCheckedIn, http.StatusConflict, "CONFLICT"},
		{"not checked in", attendance.ErrNotCheckedIn, http.StatusBadRequest, "BAD_REQUEST"},
		{"check-in closed", attendance.ErrCheckInClosed, http.StatusForbidden, "FORBIDDEN"},
		{"wrapped attendance not found", fmt.Errorf("today: %w", attendance.ErrAttendanceNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"insufficient balance", leave.ErrInsufficientBalance, http.StatusBadRequest, "BAD_REQUEST"},
		{"balance not found", leave.ErrBalanceNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"not pending", leave.ErrNotPending, http.StatusConflict, "CONFLICT"},
		{"invalid leave type", leave.ErrInvalidLeaveType, http.StatusBadRequest, "BAD_REQUEST"},
		{"notification not found", notification.ErrNotificationNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestHandleErrorValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, validator.ValidationErrors{
		{Field: "from_date", Message: "from_date must be YYYY-MM-DD"},
		{Field: "leave_type", Message: "leave_type is required"},
	})

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.NotNil(t, body.Error)
	assert.Equal(t, map[string]string{
		"from_date":  "from_date must be YYYY-MM-DD",
		"leave_type": "leave_type is required",
	}, body.Error.Details)
}
