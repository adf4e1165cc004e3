package response

import (
	"errors"
	"net/http"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/company"
	"github.com/attendly/attendly-backend-go/internal/domain/correction"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
	"github.com/attendly/attendly-backend-go/internal/domain/salary"
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
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
	// Attendance domain errors
	case errors.Is(err, attendance.ErrOutsideGeofence):
		Forbidden(w, "Punch location is outside the allowed office radius")
	case errors.Is(err, attendance.ErrOutsideNightWindow):
		UnprocessableEntity(w, "OUTSIDE_NIGHT_WINDOW", "Punch-in is outside the night-shift window")
	case errors.Is(err, attendance.ErrAlreadyPunchedIn):
		Conflict(w, "Already punched in for this day")
	case errors.Is(err, attendance.ErrNoOpenPunch):
		Conflict(w, "No open punch-in found to punch out from")
	case errors.Is(err, attendance.ErrInvalidTransition):
		Conflict(w, "Attendance record does not allow this transition")
	case errors.Is(err, attendance.ErrRecordNotFound):
		NotFound(w, "Attendance record not found")

	// Correction domain errors
	case errors.Is(err, correction.ErrRequestNotFound):
		NotFound(w, "Correction request not found")
	case errors.Is(err, correction.ErrNotPending):
		Conflict(w, "Correction request has already been reviewed")

	// Salary domain errors
	case errors.Is(err, salary.ErrRecordNotFound):
		NotFound(w, "Salary record not found")
	case errors.Is(err, salary.ErrRecordExists):
		Conflict(w, "Salary record already exists for this period")
	case errors.Is(err, salary.ErrRecordLocked):
		Locked(w, "Salary record is locked")
	case errors.Is(err, salary.ErrInvalidTransition):
		Conflict(w, "Salary record does not allow this transition")

	// Supporting domain errors
	case errors.Is(err, policy.ErrPolicyNotConfigured):
		UnprocessableEntity(w, "POLICY_NOT_CONFIGURED", "Attendance policy is not configured for this company")
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, company.ErrCompanyNotFound):
		NotFound(w, "Company not found")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
