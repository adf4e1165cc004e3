package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/correction"
	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

type CorrectionHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	ListPending(w http.ResponseWriter, r *http.Request)
}

type correctionHandlerImpl struct {
	correctionService correction.CorrectionService
}

func NewCorrectionHandler(correctionService correction.CorrectionService) CorrectionHandler {
	return &correctionHandlerImpl{
		correctionService: correctionService,
	}
}

// Submit implements CorrectionHandler.
func (h *correctionHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	var req correction.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.CompanyID = companyIDFromRequest(r)
	req.EmployeeID = employeeIDFromRequest(r)
	if req.EmployeeID == "" {
		response.Forbidden(w, "Token is not bound to an employee")
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Correction request submitted", result)
}

// Review implements CorrectionHandler.
func (h *correctionHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	var req correction.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	req.RequestID = chi.URLParam(r, "id")
	req.CompanyID = companyIDFromRequest(r)
	req.Reviewer = actorFromRequest(r)

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.correctionService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Correction request reviewed", result)
}

// ListPending implements CorrectionHandler.
func (h *correctionHandlerImpl) ListPending(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20

	q := r.URL.Query()
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	result, err := h.correctionService.ListPending(r.Context(), companyIDFromRequest(r), page, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	totalPages := int((result.TotalCount + int64(limit) - 1) / int64(limit))
	response.SuccessWithMeta(w, result.Requests, &response.Meta{
		Page:       page,
		Limit:      limit,
		TotalItems: result.TotalCount,
		TotalPages: totalPages,
	})
}
