package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/salary"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Generate(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	Recalculate(w http.ResponseWriter, r *http.Request)
	AddManualLine(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	salaryService salary.SalaryService
}

func NewPayrollHandler(salaryService salary.SalaryService) PayrollHandler {
	return &payrollHandlerImpl{
		salaryService: salaryService,
	}
}

// Generate implements PayrollHandler.
func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req salary.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.CompanyID = companyIDFromRequest(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.salaryService.Generate(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Salary records generated", result)
}

// Get implements PayrollHandler.
func (h *payrollHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.salaryService.Get(r.Context(), id, companyIDFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// List implements PayrollHandler.
func (h *payrollHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20
	var month, year int

	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("month")); err == nil {
		month = v
	}
	if v, err := strconv.Atoi(q.Get("year")); err == nil {
		year = v
	}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	result, err := h.salaryService.List(r.Context(), companyIDFromRequest(r), month, year, page, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((result.TotalCount + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, result.Records, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}

// Approve implements PayrollHandler.
func (h *payrollHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.salaryService.Approve(r.Context(), id, companyIDFromRequest(r), actorFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record approved", result)
}

// Reject implements PayrollHandler.
func (h *payrollHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	var req salary.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.SalaryID = chi.URLParam(r, "id")
	req.CompanyID = companyIDFromRequest(r)
	req.Actor = actorFromRequest(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.salaryService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record rejected", result)
}

// MarkPaid implements PayrollHandler.
func (h *payrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var body struct {
		PaidAt *string `json:"paid_at"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}

	var paidAt *time.Time
	if body.PaidAt != nil {
		t, err := time.Parse(time.RFC3339, *body.PaidAt)
		if err != nil {
			response.BadRequest(w, "paid_at must be an ISO8601 timestamp", nil)
			return
		}
		paidAt = &t
	}

	result, err := h.salaryService.MarkPaid(r.Context(), id, companyIDFromRequest(r), paidAt)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record marked as paid", result)
}

// Recalculate implements PayrollHandler.
func (h *payrollHandlerImpl) Recalculate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	result, err := h.salaryService.Recalculate(r.Context(), id, companyIDFromRequest(r), actorFromRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Salary record recalculated", result)
}

// AddManualLine implements PayrollHandler.
func (h *payrollHandlerImpl) AddManualLine(w http.ResponseWriter, r *http.Request) {
	var req salary.AddLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.SalaryID = chi.URLParam(r, "id")
	req.CompanyID = companyIDFromRequest(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.salaryService.AddManualLine(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Breakdown line added", result)
}
