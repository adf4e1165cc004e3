package salary

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusPaid     Status = "PAID"
)

type BreakdownType string

const (
	BreakdownBaseSalary        BreakdownType = "BASE_SALARY"
	BreakdownOvertime          BreakdownType = "OVERTIME"
	BreakdownPFDeduction       BreakdownType = "PF_DEDUCTION"
	BreakdownESIDeduction      BreakdownType = "ESI_DEDUCTION"
	BreakdownLatePenalty       BreakdownType = "LATE_PENALTY"
	BreakdownAbsenceDeduction  BreakdownType = "ABSENCE_DEDUCTION"
	BreakdownPayment           BreakdownType = "PAYMENT"
	BreakdownDeduction         BreakdownType = "DEDUCTION"
	BreakdownRecovery          BreakdownType = "RECOVERY"
	BreakdownAdvance           BreakdownType = "ADVANCE"
)

// computedTypes are regenerated on every recalculation; the remaining types
// are operator-entered facts that survive a recalculate.
var computedTypes = map[BreakdownType]bool{
	BreakdownBaseSalary:       true,
	BreakdownOvertime:         true,
	BreakdownPFDeduction:      true,
	BreakdownESIDeduction:     true,
	BreakdownLatePenalty:      true,
	BreakdownAbsenceDeduction: true,
}

// IsComputed reports whether a breakdown line is derived from attendance
// data rather than entered manually.
func (t BreakdownType) IsComputed() bool {
	return computedTypes[t]
}

// Breakdown is one line item of a salary record. Amount is signed: positive
// lines are earnings, negative lines are deductions. Amounts are rounded to
// 2 decimal places when the line is created and never re-rounded, so gross
// and net stay reproducible from the stored lines alone.
type Breakdown struct {
	ID          string
	SalaryID    string
	Type        BreakdownType
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	CreatedAt   time.Time
}

// Record is the month's salary computation for one employee, keyed by
// (employee, company, month, year). Once status leaves PENDING the record is
// locked (LockedAt set); PAID is permanently immutable.
type Record struct {
	ID        string
	EmployeeID string
	CompanyID string
	Month     int
	Year      int

	TotalWorkingDays int
	HalfDays         int
	AbsentDays       int
	LateMinutes      int
	OvertimeHours    float64

	BaseAmount     decimal.Decimal
	OvertimeAmount decimal.Decimal
	PenaltyAmount  decimal.Decimal
	Deductions     decimal.Decimal
	GrossAmount    decimal.Decimal
	NetAmount      decimal.Decimal

	Status Status

	ApprovedBy *string
	ApprovedAt *time.Time

	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string

	PaidAt   *time.Time
	LockedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	Breakdowns []Breakdown

	// DTO
	EmployeeName *string
}

// Totals recomputes gross and net from a full breakdown line set. Gross is
// the sum of positive lines; net is gross minus the absolute sum of negative
// lines. Signs are a display convention, not a double-counting mechanism.
func Totals(lines []Breakdown) (gross, net decimal.Decimal) {
	gross = decimal.Zero
	negatives := decimal.Zero
	for _, l := range lines {
		if l.Amount.IsNegative() {
			negatives = negatives.Add(l.Amount.Abs())
		} else {
			gross = gross.Add(l.Amount)
		}
	}
	return gross, gross.Sub(negatives)
}
