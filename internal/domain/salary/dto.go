package salary

import (
	"github.com/attendly/attendly-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type GenerateRequest struct {
	CompanyID   string   `json:"-"`
	Month       int      `json:"month"`
	Year        int      `json:"year"`
	EmployeeIDs []string `json:"employee_ids,omitempty"`
}

func (r *GenerateRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsValidMonth(r.Month) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month must be between 1 and 12",
		})
	}

	if !validator.IsValidYear(r.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: "year must be between 2000 and 2100",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RejectRequest struct {
	SalaryID  string `json:"-"`
	CompanyID string `json:"-"`
	Actor     string `json:"-"`
	Reason    string `json:"reason"`
}

func (r *RejectRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AddLineRequest struct {
	SalaryID    string          `json:"-"`
	CompanyID   string          `json:"-"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

func (r *AddLineRequest) Validate() error {
	var errs validator.ValidationErrors

	if !validator.IsInSlice(r.Type, []string{
		string(BreakdownPayment), string(BreakdownDeduction),
		string(BreakdownRecovery), string(BreakdownAdvance),
	}) {
		errs = append(errs, validator.ValidationError{
			Field:   "type",
			Message: "type must be PAYMENT, DEDUCTION, RECOVERY or ADVANCE",
		})
	}

	if validator.IsEmpty(r.Description) {
		errs = append(errs, validator.ValidationError{
			Field:   "description",
			Message: "description is required",
		})
	}

	if r.Amount.IsZero() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: "amount must be non-zero",
		})
	}

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type BreakdownResponse struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
}

type Response struct {
	ID               string              `json:"id"`
	EmployeeID       string              `json:"employee_id"`
	EmployeeName     *string             `json:"employee_name,omitempty"`
	Month            int                 `json:"month"`
	Year             int                 `json:"year"`
	TotalWorkingDays int                 `json:"total_working_days"`
	HalfDays         int                 `json:"half_days"`
	AbsentDays       int                 `json:"absent_days"`
	LateMinutes      int                 `json:"late_minutes"`
	OvertimeHours    float64             `json:"overtime_hours"`
	BaseAmount       decimal.Decimal     `json:"base_amount"`
	OvertimeAmount   decimal.Decimal     `json:"overtime_amount"`
	PenaltyAmount    decimal.Decimal     `json:"penalty_amount"`
	Deductions       decimal.Decimal     `json:"deductions"`
	GrossAmount      decimal.Decimal     `json:"gross_amount"`
	NetAmount        decimal.Decimal     `json:"net_amount"`
	Status           string              `json:"status"`
	PaidAt           *string             `json:"paid_at,omitempty"`
	LockedAt         *string             `json:"locked_at,omitempty"`
	RejectionReason  *string             `json:"rejection_reason,omitempty"`
	Breakdowns       []BreakdownResponse `json:"breakdowns"`
}

type ListResponse struct {
	TotalCount int64      `json:"total_count"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	Records    []Response `json:"records"`
}
