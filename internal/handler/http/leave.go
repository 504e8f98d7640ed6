package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/response"
)

type LeaveHandler interface {
	// Requests
	Submit(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	ListRequests(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)

	// Balances
	GetMyBalances(w http.ResponseWriter, r *http.Request)
	GetEmployeeBalances(w http.ResponseWriter, r *http.Request)
	Credit(w http.ResponseWriter, r *http.Request)
	Debit(w http.ResponseWriter, r *http.Request)
	History(w http.ResponseWriter, r *http.Request)
	Provision(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	workflow leave.Workflow
	ledger   leave.Ledger
}

func NewLeaveHandler(workflow leave.Workflow, ledger leave.Ledger) LeaveHandler {
	return &LeaveHandlerImpl{
		workflow: workflow,
		ledger:   ledger,
	}
}

// Submit implements LeaveHandler.
func (l *LeaveHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req leave.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = middleware.EmployeeID(r.Context())

	result, err := l.workflow.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted", leave.ToRequestResponse(result))
}

// GetMyRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.RequestFilter{
		EmployeeID: middleware.EmployeeID(r.Context()),
		Status:     leave.RequestStatus(r.URL.Query().Get("status")),
	}
	l.listRequests(w, r, filter)
}

// ListRequests implements LeaveHandler.
func (l *LeaveHandlerImpl) ListRequests(w http.ResponseWriter, r *http.Request) {
	filter := leave.RequestFilter{
		EmployeeID: r.URL.Query().Get("employee_id"),
		Status:     leave.RequestStatus(r.URL.Query().Get("status")),
	}
	l.listRequests(w, r, filter)
}

func (l *LeaveHandlerImpl) listRequests(w http.ResponseWriter, r *http.Request, filter leave.RequestFilter) {
	requests, err := l.workflow.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, req := range requests {
		result = append(result, leave.ToRequestResponse(req))
	}
	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// GetRequest implements LeaveHandler. Employees only see their own requests.
func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	result, err := l.workflow.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if result.EmployeeID != middleware.EmployeeID(r.Context()) && !middleware.RoleOf(r.Context()).IsReviewer() {
		response.HandleError(w, leave.ErrLeaveRequestNotFound)
		return
	}

	response.Success(w, leave.ToRequestResponse(result))
}

// Review implements LeaveHandler.
func (l *LeaveHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	var req leave.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RequestID = chi.URLParam(r, "id")
	req.ReviewerID = middleware.EmployeeID(r.Context())

	result, err := l.workflow.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request "+string(result.Status), leave.ToRequestResponse(result))
}

// GetMyBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	l.balances(w, r, middleware.EmployeeID(r.Context()))
}

// GetEmployeeBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetEmployeeBalances(w http.ResponseWriter, r *http.Request) {
	l.balances(w, r, chi.URLParam(r, "employeeID"))
}

func (l *LeaveHandlerImpl) balances(w http.ResponseWriter, r *http.Request, employeeID string) {
	balances, err := l.ledger.Balances(r.Context(), employeeID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		result = append(result, leave.ToBalanceResponse(b))
	}
	response.Success(w, result)
}

// Credit implements LeaveHandler.
func (l *LeaveHandlerImpl) Credit(w http.ResponseWriter, r *http.Request) {
	l.adjust(w, r, l.ledger.Credit, "Leave balance credited")
}

// Debit implements LeaveHandler.
func (l *LeaveHandlerImpl) Debit(w http.ResponseWriter, r *http.Request) {
	l.adjust(w, r, l.ledger.Debit, "Leave balance debited")
}

type adjustFunc func(ctx context.Context, employeeID string, leaveType leave.LeaveType, days int, reason string) (leave.Balance, error)

func (l *LeaveHandlerImpl) adjust(w http.ResponseWriter, r *http.Request, apply adjustFunc, message string) {
	var req leave.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}
	leaveType, err := leave.ParseLeaveType(req.LeaveType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	balance, err := apply(r.Context(), chi.URLParam(r, "employeeID"), leaveType, req.Days, req.Reason)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, leave.ToBalanceResponse(balance))
}

// History implements LeaveHandler.
func (l *LeaveHandlerImpl) History(w http.ResponseWriter, r *http.Request) {
	leaveType, err := leave.ParseLeaveType(r.URL.Query().Get("leave_type"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	entries, err := l.ledger.History(r.Context(), chi.URLParam(r, "employeeID"), leaveType)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.EntryResponse, 0, len(entries))
	for _, e := range entries {
		result = append(result, leave.ToEntryResponse(e))
	}
	response.SuccessWithMeta(w, result, &response.Meta{TotalItems: len(result)})
}

// Provision implements LeaveHandler.
func (l *LeaveHandlerImpl) Provision(w http.ResponseWriter, r *http.Request) {
	created, err := l.ledger.Provision(r.Context(), chi.URLParam(r, "employeeID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := make([]leave.BalanceResponse, 0, len(created))
	for _, b := range created {
		result = append(result, leave.ToBalanceResponse(b))
	}
	response.Created(w, "Leave balances provisioned", result)
}
