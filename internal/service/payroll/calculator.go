package payroll

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
	"github.com/attendly/attendly-backend-go/internal/domain/salary"
)

var (
	decimalHalf          = decimal.NewFromFloat(0.5)
	decimalHundred       = decimal.NewFromInt(100)
	overtimeDefaultRatio = decimal.NewFromFloat(1.5)
)

// Computed carries the regenerated breakdown lines and the totals derived
// from them. Every line amount is rounded to 2 decimal places on creation.
type Computed struct {
	Lines []salary.Breakdown

	BaseAmount     decimal.Decimal
	OvertimeAmount decimal.Decimal
	PenaltyAmount  decimal.Decimal
	Deductions     decimal.Decimal
}

// Calculate turns a monthly attendance summary into the computed breakdown
// lines for one employee. Manual lines are out of scope here; they are owned
// by operators and survive recalculation.
func Calculate(emp employee.Employee, pol policy.Policy, summary MonthlySummary, month, year int) (Computed, error) {
	periodDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := daysInMonth(month, year)

	base, err := baseAmount(emp, summary, days)
	if err != nil {
		return Computed{}, err
	}
	base = base.Round(2)

	result := Computed{
		BaseAmount:     base,
		OvertimeAmount: decimal.Zero,
		PenaltyAmount:  decimal.Zero,
		Deductions:     decimal.Zero,
	}
	result.Lines = append(result.Lines, salary.Breakdown{
		ID:          uuid.New().String(),
		Type:        salary.BreakdownBaseSalary,
		Description: fmt.Sprintf("Base salary for %d-%02d", year, month),
		Amount:      base,
		Date:        periodDate,
	})

	if summary.OvertimeHours > 0 {
		rate := overtimeRate(emp, pol, days)
		amount := rate.Mul(decimal.NewFromFloat(summary.OvertimeHours)).Round(2)
		if amount.IsPositive() {
			result.OvertimeAmount = amount
			result.Lines = append(result.Lines, salary.Breakdown{
				ID:          uuid.New().String(),
				Type:        salary.BreakdownOvertime,
				Description: fmt.Sprintf("Overtime (%.2f hours)", summary.OvertimeHours),
				Amount:      amount,
				Date:        periodDate,
			})
		}
	}

	if pol.EnableLatePenalty && summary.LateMinutes > 0 && pol.LatePenaltyPerMinute.IsPositive() {
		amount := pol.LatePenaltyPerMinute.Mul(decimal.NewFromInt(int64(summary.LateMinutes))).Round(2)
		result.PenaltyAmount = result.PenaltyAmount.Add(amount)
		result.Lines = append(result.Lines, salary.Breakdown{
			ID:          uuid.New().String(),
			Type:        salary.BreakdownLatePenalty,
			Description: fmt.Sprintf("Late penalty (%d minutes)", summary.LateMinutes),
			Amount:      amount.Neg(),
			Date:        periodDate,
		})
	}

	if pol.EnableAbsentPenalty && summary.AbsentDays > 0 && pol.AbsentPenaltyPerDay.IsPositive() {
		amount := pol.AbsentPenaltyPerDay.Mul(decimal.NewFromInt(int64(summary.AbsentDays))).Round(2)
		result.PenaltyAmount = result.PenaltyAmount.Add(amount)
		result.Lines = append(result.Lines, salary.Breakdown{
			ID:          uuid.New().String(),
			Type:        salary.BreakdownAbsenceDeduction,
			Description: fmt.Sprintf("Absence deduction (%d days)", summary.AbsentDays),
			Amount:      amount.Neg(),
			Date:        periodDate,
		})
	}

	// Statutory deductions apply on the earned base, not on gross.
	if emp.PFESIApplicable {
		if pol.PFPercentage.IsPositive() {
			amount := base.Mul(pol.PFPercentage).Div(decimalHundred).Round(2)
			result.Deductions = result.Deductions.Add(amount)
			result.Lines = append(result.Lines, salary.Breakdown{
				ID:          uuid.New().String(),
				Type:        salary.BreakdownPFDeduction,
				Description: fmt.Sprintf("PF (%s%%)", pol.PFPercentage.String()),
				Amount:      amount.Neg(),
				Date:        periodDate,
			})
		}
		if pol.ESIPercentage.IsPositive() {
			amount := base.Mul(pol.ESIPercentage).Div(decimalHundred).Round(2)
			result.Deductions = result.Deductions.Add(amount)
			result.Lines = append(result.Lines, salary.Breakdown{
				ID:          uuid.New().String(),
				Type:        salary.BreakdownESIDeduction,
				Description: fmt.Sprintf("ESI (%s%%)", pol.ESIPercentage.String()),
				Amount:      amount.Neg(),
				Date:        periodDate,
			})
		}
	}

	return result, nil
}

// baseAmount derives the period base pay from the employee's salary type.
// Half days earn half a day's pay in the day-counted schemes.
func baseAmount(emp employee.Employee, summary MonthlySummary, daysInMonth int) (decimal.Decimal, error) {
	payableDays := decimal.NewFromInt(int64(summary.FullDays + summary.LeaveDays)).
		Add(decimalHalf.Mul(decimal.NewFromInt(int64(summary.HalfDays))))

	switch emp.SalaryType {
	case employee.SalaryTypeMonthly:
		if emp.BaseSalary == nil {
			return decimal.Zero, fmt.Errorf("employee %s has no base salary configured", emp.ID)
		}
		return emp.BaseSalary.Mul(payableDays).Div(decimal.NewFromInt(int64(daysInMonth))), nil
	case employee.SalaryTypeDaily:
		if emp.DailyRate == nil {
			return decimal.Zero, fmt.Errorf("employee %s has no daily rate configured", emp.ID)
		}
		return emp.DailyRate.Mul(payableDays), nil
	case employee.SalaryTypeHourly:
		if emp.HourlyRate == nil {
			return decimal.Zero, fmt.Errorf("employee %s has no hourly rate configured", emp.ID)
		}
		return emp.HourlyRate.Mul(decimal.NewFromFloat(summary.ApprovedWorkingHours)), nil
	default:
		return decimal.Zero, fmt.Errorf("employee %s has unknown salary type %q", emp.ID, emp.SalaryType)
	}
}

// overtimeRate is the explicit per-hour overtime rate when configured,
// otherwise 1.5x the effective hourly rate.
func overtimeRate(emp employee.Employee, pol policy.Policy, daysInMonth int) decimal.Decimal {
	if emp.OvertimeRate != nil && emp.OvertimeRate.IsPositive() {
		return *emp.OvertimeRate
	}

	shiftHours := decimal.NewFromFloat(pol.ShiftDuration().Hours())
	if shiftHours.IsZero() {
		return decimal.Zero
	}

	var hourly decimal.Decimal
	switch emp.SalaryType {
	case employee.SalaryTypeHourly:
		if emp.HourlyRate != nil {
			hourly = *emp.HourlyRate
		}
	case employee.SalaryTypeDaily:
		if emp.DailyRate != nil {
			hourly = emp.DailyRate.Div(shiftHours)
		}
	case employee.SalaryTypeMonthly:
		if emp.BaseSalary != nil {
			hourly = emp.BaseSalary.Div(decimal.NewFromInt(int64(daysInMonth))).Div(shiftHours)
		}
	}

	return hourly.Mul(overtimeDefaultRatio)
}

func daysInMonth(month, year int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
