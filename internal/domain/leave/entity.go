package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

// LeaveType is a leave category with its own balance.
type LeaveType string

const (
	TypeCasual    LeaveType = "casual"
	TypeSick      LeaveType = "sick"
	TypeEarned    LeaveType = "earned"
	TypeMaternity LeaveType = "maternity"
	TypePaternity LeaveType = "paternity"
)

// AllLeaveTypes returns all available leave types
func AllLeaveTypes() []LeaveType {
	return []LeaveType{
		TypeCasual,
		TypeSick,
		TypeEarned,
		TypeMaternity,
		TypePaternity,
	}
}

// ParseLeaveType accepts "casual", "Casual" or "Casual Leave".
func ParseLeaveType(s string) (LeaveType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSpace(strings.TrimSuffix(s, "leave"))
	for _, t := range AllLeaveTypes() {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrInvalidLeaveType
}

// Label returns the display name, e.g. "Casual Leave".
func (t LeaveType) Label() string {
	if t == "" {
		return "Leave"
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:]) + " Leave"
}

// Balance is the (total, used, remaining) tuple of one employee and leave type.
type Balance struct {
	EmployeeID string
	LeaveType  LeaveType
	Total      int
	Used       int
	UpdatedAt  time.Time
}

// Remaining is derived, never stored.
func (b Balance) Remaining() int {
	return b.Total - b.Used
}

// Apply returns the balance after adding the deltas. The receiver is not modified.
func (b Balance) Apply(totalDelta, usedDelta int) (Balance, error) {
	next := b
	next.Total += totalDelta
	next.Used += usedDelta
	if next.Total < 0 || next.Used < 0 {
		return Balance{}, ErrInvalidDays
	}
	if next.Remaining() < 0 {
		return Balance{}, ErrInsufficientBalance
	}
	return next, nil
}

type EntryKind string

const (
	EntryCredit EntryKind = "credit"
	EntryDebit  EntryKind = "debit"
)

// Entry is one ledger movement, kept for audit.
type Entry struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType
	Kind       EntryKind
	Days       int
	Reason     string
	Total      int // balance after the movement
	Used       int
	CreatedAt  time.Time
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// ParseStatus accepts the three request states.
func ParseStatus(s string) (RequestStatus, error) {
	switch st := RequestStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// ParseDecision accepts only the terminal states.
func ParseDecision(s string) (RequestStatus, error) {
	st, err := ParseStatus(s)
	if err != nil || !st.IsTerminal() {
		return "", ErrInvalidDecision
	}
	return st, nil
}

// LeaveRequest entity
type LeaveRequest struct {
	ID         string
	EmployeeID string
	LeaveType  LeaveType

	FromDate time.Time
	ToDate   time.Time
	Days     int

	Reason string
	Status RequestStatus

	AppliedOn  time.Time
	ReviewedOn *time.Time
	ReviewedBy *string
	Comments   *string
}

// NewLeaveRequest builds a pending request. Days is the inclusive calendar day count.
func NewLeaveRequest(id, employeeID string, leaveType LeaveType, fromDate, toDate time.Time, reason string, appliedOn time.Time) (LeaveRequest, error) {
	if employeeID == "" {
		return LeaveRequest{}, ErrEmployeeRequired
	}
	if _, err := ParseLeaveType(string(leaveType)); err != nil {
		return LeaveRequest{}, err
	}
	fromDate, toDate = timemath.Date(fromDate), timemath.Date(toDate)
	if toDate.Before(fromDate) {
		return LeaveRequest{}, ErrInvalidRange
	}
	return LeaveRequest{
		ID:         id,
		EmployeeID: employeeID,
		LeaveType:  leaveType,
		FromDate:   fromDate,
		ToDate:     toDate,
		Days:       timemath.DaysInclusive(fromDate, toDate),
		Reason:     reason,
		Status:     RequestStatusPending,
		AppliedOn:  appliedOn,
	}, nil
}

// Resolve moves a pending request to a terminal state.
func (r *LeaveRequest) Resolve(decision RequestStatus, comments string, reviewerID string, at time.Time) error {
	if r.Status != RequestStatusPending {
		return ErrNotPending
	}
	if !decision.IsTerminal() {
		return ErrInvalidDecision
	}
	r.Status = decision
	r.ReviewedOn = &at
	if reviewerID != "" {
		r.ReviewedBy = &reviewerID
	}
	if comments != "" {
		r.Comments = &comments
	}
	return nil
}

// Covers reports whether the date lies inside the request's range.
func (r LeaveRequest) Covers(date time.Time) bool {
	date = timemath.Date(date)
	return !date.Before(r.FromDate) && !date.After(r.ToDate)
}

// Policy holds the default yearly allotment per leave type.
type Policy struct {
	Allotments map[LeaveType]int
}

// DefaultPolicy returns the built-in allotments.
func DefaultPolicy() Policy {
	return Policy{Allotments: map[LeaveType]int{
		TypeCasual:    12,
		TypeSick:      10,
		TypeEarned:    15,
		TypeMaternity: 90,
		TypePaternity: 15,
	}}
}

func (p Policy) Allotment(t LeaveType) int {
	return p.Allotments[t]
}
