package correction

import (
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

type SubmitRequest struct {
	EmployeeID    string  `json:"-"`
	CompanyID     string  `json:"-"`
	AttendanceID  *string `json:"attendance_id"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	RequestedTime string  `json:"requested_time"`
	Note          *string `json:"note"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if !validator.IsInSlice(r.Type, []string{string(TypeMissedPunchIn), string(TypeMissedPunchOut)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be MISSED_PUNCH_IN or MISSED_PUNCH_OUT",
		})
	}

	if _, ok := validator.IsValidDateTime(r.RequestedTime); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "requested_time",
			Message: "requested_time must be an ISO8601 timestamp",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ReviewRequest struct {
	RequestID    string  `json:"-"`
	CompanyID    string  `json:"-"`
	Decision     string  `json:"decision"`
	ApprovedTime *string `json:"approved_time"`
	Reviewer     string  `json:"-"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "request_id",
			Message: "request_id is required",
		})
	}

	if !validator.IsInSlice(r.Decision, []string{string(StatusApproved), string(StatusRejected)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "decision",
			Message: "decision must be APPROVED or REJECTED",
		})
	}

	if r.ApprovedTime != nil {
		if _, ok := validator.IsValidDateTime(*r.ApprovedTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "approved_time",
				Message: "approved_time must be an ISO8601 timestamp",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	AttendanceID  *string `json:"attendance_id,omitempty"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	RequestedTime string  `json:"requested_time"`
	Note          *string `json:"note,omitempty"`
	Status        string  `json:"status"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
}

type ListResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Requests   []Response `json:"requests"`
}
