package attendance

import (
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type PunchInRequest struct {
	EmployeeID string   `json:"employee_id"`
	CompanyID  string   `json:"-"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	PhotoRef   *string  `json:"photo_ref"`
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type PunchOutRequest struct {
	EmployeeID string   `json:"employee_id"`
	CompanyID  string   `json:"-"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	PhotoRef   *string  `json:"photo_ref"`
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if r.Latitude != nil && (*r.Latitude < -90 || *r.Latitude > 90) {
		errs = append(errs, validator.ValidationError{
			Field:   "latitude",
			Message: "latitude must be between -90 and 90",
		})
	}

	if r.Longitude != nil && (*r.Longitude < -180 || *r.Longitude > 180) {
		errs = append(errs, validator.ValidationError{
			Field:   "longitude",
			Message: "longitude must be between -180 and 180",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type SetStatusRequest struct {
	RecordID  string  `json:"-"`
	CompanyID string  `json:"-"`
	Status    string  `json:"status"`
	Actor     string  `json:"-"`
	Reason    *string `json:"reason"`
}

func (r *SetStatusRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RecordID) {
		errs = append(errs, validator.ValidationError{
			Field:   "record_id",
			Message: "record_id is required",
		})
	}

	valid := make([]string, 0, len(TerminalStatuses))
	for _, s := range TerminalStatuses {
		valid = append(valid, string(s))
	}
	if !validator.IsInSlice(r.Status, valid) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of APPROVED, REJECTED, ABSENT, LEAVE",
		})
	}

	if r.Status == string(StatusRejected) && (r.Reason == nil || validator.IsEmpty(*r.Reason)) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required when rejecting",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ManualEntryRequest is the admin path that creates a record synthetically,
// e.g. for an employee who could not punch at all.
type ManualEntryRequest struct {
	EmployeeID string  `json:"employee_id"`
	CompanyID  string  `json:"-"`
	Date       string  `json:"date"`
	PunchInAt  *string `json:"punch_in_at"`
	PunchOutAt *string `json:"punch_out_at"`
	Status     string  `json:"status"`
	Actor      string  `json:"-"`
}

func (r *ManualEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.PunchInAt != nil {
		if _, ok := validator.IsValidDateTime(*r.PunchInAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "punch_in_at",
				Message: "punch_in_at must be an ISO8601 timestamp",
			})
		}
	}

	if r.PunchOutAt != nil {
		if _, ok := validator.IsValidDateTime(*r.PunchOutAt); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "punch_out_at",
				Message: "punch_out_at must be an ISO8601 timestamp",
			})
		}
	}

	if r.Status != "" && !validator.IsInSlice(r.Status, []string{
		string(StatusPending), string(StatusApproved), string(StatusAbsent), string(StatusLeave),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of PENDING, APPROVED, ABSENT, LEAVE",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type Response struct {
	ID                 string   `json:"id"`
	EmployeeID         string   `json:"employee_id"`
	EmployeeName       *string  `json:"employee_name,omitempty"`
	Date               string   `json:"date"`
	PunchInAt          *string  `json:"punch_in_at,omitempty"`
	PunchOutAt         *string  `json:"punch_out_at,omitempty"`
	Status             string   `json:"status"`
	WorkingHours       float64  `json:"working_hours"`
	OvertimeHours      float64  `json:"overtime_hours"`
	IsLate             bool     `json:"is_late"`
	LateMinutes        int      `json:"late_minutes"`
	AutoPunchedOut     bool     `json:"auto_punched_out"`
	WorkingHoursCapped bool     `json:"working_hours_capped"`
	RequiresApproval   bool     `json:"requires_approval"`
	ApprovalReason     *string  `json:"approval_reason,omitempty"`
	RejectionReason    *string  `json:"rejection_reason,omitempty"`
	PunchDistanceM     *float64 `json:"punch_distance_meters,omitempty"`
}

type Filter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	EndDate    *string `json:"end_date,omitempty"`
	Status     *string `json:"status,omitempty"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
}

type ListResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Records    []Response `json:"records"`
}
