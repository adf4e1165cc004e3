package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	SetStatus(w http.ResponseWriter, r *http.Request)
	ManualEntry(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

// PunchIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	var req attendance.PunchInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.CompanyID = companyIDFromRequest(r)
	if req.EmployeeID == "" {
		req.EmployeeID = employeeIDFromRequest(r)
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.PunchIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punch in recorded", result)
}

// PunchOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	var req attendance.PunchOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.CompanyID = companyIDFromRequest(r)
	if req.EmployeeID == "" {
		req.EmployeeID = employeeIDFromRequest(r)
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.PunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Punch out recorded", result)
}

// SetStatus implements AttendanceHandler.
func (h *attendanceHandlerImpl) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req attendance.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.RecordID = chi.URLParam(r, "id")
	req.CompanyID = companyIDFromRequest(r)
	req.Actor = actorFromRequest(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.SetStatus(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance status updated", result)
}

// ManualEntry implements AttendanceHandler.
func (h *attendanceHandlerImpl) ManualEntry(w http.ResponseWriter, r *http.Request) {
	var req attendance.ManualEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.CompanyID = companyIDFromRequest(r)
	req.Actor = actorFromRequest(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.ManualEntry(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Attendance record created", result)
}

// Get implements AttendanceHandler.
func (h *attendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.attendanceService.Get(r.Context(), id, companyIDFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.Filter{
		Page:  1,
		Limit: 20,
	}

	q := r.URL.Query()
	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("start_date"); v != "" {
		filter.StartDate = &v
	}
	if v := q.Get("end_date"); v != "" {
		filter.EndDate = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		filter.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		filter.Limit = v
	}

	result, err := h.attendanceService.List(r.Context(), filter, companyIDFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((result.TotalCount + int64(filter.Limit) - 1) / int64(filter.Limit))
	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}
