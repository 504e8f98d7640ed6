package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/timemath"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AttendanceHandler interface {
	CheckIn(w http.ResponseWriter, r *http.Request)
	CheckOut(w http.ResponseWriter, r *http.Request)
	Today(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	GetMySummary(w http.ResponseWriter, r *http.Request)
	GetEmployeeAttendance(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	location          *time.Location
	now               func() time.Time
}

// NewAttendanceHandler builds the handler. location decides which day "today" is.
func NewAttendanceHandler(attendanceService attendance.Service, location *time.Location, now func() time.Time) AttendanceHandler {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		location:          location,
		now:               now,
	}
}

// CheckIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckIn(w http.ResponseWriter, r *http.Request) {
	employeeID := middleware.EmployeeID(r.Context())

	result, err := h.attendanceService.CheckIn(r.Context(), employeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Check in successful", attendance.ToResponse(result))
}

// CheckOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) CheckOut(w http.ResponseWriter, r *http.Request) {
	employeeID := middleware.EmployeeID(r.Context())

	result, err := h.attendanceService.CheckOut(r.Context(), employeeID, h.now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Check out successful", attendance.ToResponse(result))
}

// Today implements AttendanceHandler.
func (h *attendanceHandlerImpl) Today(w http.ResponseWriter, r *http.Request) {
	employeeID := middleware.EmployeeID(r.Context())
	today := timemath.Date(h.now().In(h.location))

	dates, err := attendance.NewDateRange(today, today)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	for rec, err := range h.attendanceService.ListForEmployee(r.Context(), employeeID, dates) {
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, attendance.ToResponse(rec))
		return
	}

	response.HandleError(w, attendance.ErrAttendanceNotFound)
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, middleware.EmployeeID(r.Context()))
}

// GetEmployeeAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetEmployeeAttendance(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, chi.URLParam(r, "employeeID"))
}

func (h *attendanceHandlerImpl) list(w http.ResponseWriter, r *http.Request, employeeID string) {
	filter := rangeFilterFromQuery(r)
	dates, err := filter.Validate(h.now().In(h.location))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result := attendance.ListAttendanceResponse{
		EmployeeID:  employeeID,
		From:        dates.From.Format(timemath.DateLayout),
		To:          dates.To.Format(timemath.DateLayout),
		Attendances: make([]attendance.AttendanceResponse, 0),
	}
	records := make([]attendance.Record, 0)
	for rec, err := range h.attendanceService.ListForEmployee(r.Context(), employeeID, dates) {
		if err != nil {
			response.HandleError(w, err)
			return
		}
		records = append(records, rec)
		result.Attendances = append(result.Attendances, attendance.ToResponse(rec))
	}
	result.TotalCount = len(records)
	result.WorkingHours = attendance.AggregateWorkingHours(records)

	response.Success(w, result)
}

// GetMySummary implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMySummary(w http.ResponseWriter, r *http.Request) {
	filter := rangeFilterFromQuery(r)
	dates, err := filter.Validate(h.now().In(h.location))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	period, err := attendance.ParsePeriod(filter.Period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.Summary(r.Context(), middleware.EmployeeID(r.Context()), dates, period)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Export implements AttendanceHandler. employee_id may repeat or hold a comma separated list.
func (h *attendanceHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	filter := rangeFilterFromQuery(r)
	dates, err := filter.Validate(h.now().In(h.location))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	var employeeIDs []string
	for _, v := range r.URL.Query()["employee_id"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				employeeIDs = append(employeeIDs, id)
			}
		}
	}

	// headers go out only after the workbook rendered
	var buf bytes.Buffer
	if err := h.attendanceService.Export(r.Context(), &buf, employeeIDs, dates); err != nil {
		response.HandleError(w, err)
		return
	}

	filename := fmt.Sprintf("attendance_%s_%s.xlsx", dates.From.Format(timemath.DateLayout), dates.To.Format(timemath.DateLayout))
	if err := response.Attachment(w, xlsxContentType, filename, &buf); err != nil {
		slog.Error("Failed to write attendance export", "error", err)
	}
}

func rangeFilterFromQuery(r *http.Request) attendance.RangeFilter {
	q := r.URL.Query()
	return attendance.RangeFilter{
		From:   q.Get("from"),
		To:     q.Get("to"),
		Period: q.Get("period"),
	}
}
