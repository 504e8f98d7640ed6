package leave

import (
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/validator"
)

// ========================================
// LEAVE REQUEST DTOs
// ========================================

type SubmitRequest struct {
	EmployeeID string `json:"-"`
	LeaveType  string `json:"leave_type"`
	FromDate   string `json:"from_date"` // YYYY-MM-DD
	ToDate     string `json:"to_date"`   // YYYY-MM-DD
	Reason     string `json:"reason"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if _, err := ParseLeaveType(r.LeaveType); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of casual, sick, earned, maternity, paternity",
		})
	}
	if _, ok := validator.IsValidDate(r.FromDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "from_date",
			Message: "from_date must be in YYYY-MM-DD format",
		})
	}
	if _, ok := validator.IsValidDate(r.ToDate); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "to_date",
			Message: "to_date must be in YYYY-MM-DD format",
		})
	}
	if len(r.Reason) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReviewRequest struct {
	RequestID  string `json:"-"`
	ReviewerID string `json:"-"`
	Decision   string `json:"decision"` // approved, rejected
	Comments   string `json:"comments"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "request id is required",
		})
	}
	if _, err := ParseDecision(r.Decision); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be approved or rejected",
		})
	}
	if len(r.Comments) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: "comments must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// RequestFilter narrows a request listing. Empty fields match everything.
type RequestFilter struct {
	EmployeeID string
	Status     RequestStatus
}

type LeaveRequestResponse struct {
	ID         string        `json:"id"`
	EmployeeID string        `json:"employee_id"`
	LeaveType  LeaveType     `json:"leave_type"`
	LeaveLabel string        `json:"leave_label"`
	FromDate   string        `json:"from_date"`
	ToDate     string        `json:"to_date"`
	Days       int           `json:"days"`
	Reason     string        `json:"reason"`
	Status     RequestStatus `json:"status"`
	AppliedOn  time.Time     `json:"applied_on"`
	ReviewedOn *time.Time    `json:"reviewed_on,omitempty"`
	ReviewedBy *string       `json:"reviewed_by,omitempty"`
	Comments   *string       `json:"comments,omitempty"`
}

func ToRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:         r.ID,
		EmployeeID: r.EmployeeID,
		LeaveType:  r.LeaveType,
		LeaveLabel: r.LeaveType.Label(),
		FromDate:   r.FromDate.Format(timemath.DateLayout),
		ToDate:     r.ToDate.Format(timemath.DateLayout),
		Days:       r.Days,
		Reason:     r.Reason,
		Status:     r.Status,
		AppliedOn:  r.AppliedOn,
		ReviewedOn: r.ReviewedOn,
		ReviewedBy: r.ReviewedBy,
		Comments:   r.Comments,
	}
}

// ========================================
// BALANCE DTOs
// ========================================

type AdjustBalanceRequest struct {
	LeaveType string `json:"leave_type"`
	Days      int    `json:"days"`
	Reason    string `json:"reason"`
}

func (r *AdjustBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, err := ParseLeaveType(r.LeaveType); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type",
			Message: "leave_type must be one of casual, sick, earned, maternity, paternity",
		})
	}
	if r.Days <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be greater than 0",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BalanceResponse struct {
	EmployeeID string    `json:"employee_id"`
	LeaveType  LeaveType `json:"leave_type"`
	LeaveLabel string    `json:"leave_label"`
	Total      int       `json:"total"`
	Used       int       `json:"used"`
	Remaining  int       `json:"remaining"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func ToBalanceResponse(b Balance) BalanceResponse {
	return BalanceResponse{
		EmployeeID: b.EmployeeID,
		LeaveType:  b.LeaveType,
		LeaveLabel: b.LeaveType.Label(),
		Total:      b.Total,
		Used:       b.Used,
		Remaining:  b.Remaining(),
		UpdatedAt:  b.UpdatedAt,
	}
}

type EntryResponse struct {
	ID        string    `json:"id"`
	Kind      EntryKind `json:"kind"`
	Days      int       `json:"days"`
	Reason    string    `json:"reason"`
	Total     int       `json:"total"`
	Used      int       `json:"used"`
	CreatedAt time.Time `json:"created_at"`
}

func ToEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		Kind:      e.Kind,
		Days:      e.Days,
		Reason:    e.Reason,
		Total:     e.Total,
		Used:      e.Used,
		CreatedAt: e.CreatedAt,
	}
}
