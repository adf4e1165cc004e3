package payroll

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
	"github.com/attendly/attendly-backend-go/internal/domain/salary"
)

func decPtr(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func monthlyEmployee() employee.Employee {
	return employee.Employee{
		ID:         "emp-1",
		CompanyID:  "company-1",
		FullName:   "Budi Santoso",
		SalaryType: employee.SalaryTypeMonthly,
		BaseSalary: decPtr("30000"),
	}
}

func calcPolicy() policy.Policy {
	zero := decimal.Zero
	return policy.Policy{
		ShiftStart:           "09:00",
		ShiftEnd:             "17:00",
		Timezone:             "UTC",
		LatePenaltyPerMinute: zero,
		AbsentPenaltyPerDay:  zero,
		PFPercentage:         zero,
		ESIPercentage:        zero,
	}
}

func lineOfType(t *testing.T, lines []salary.Breakdown, typ salary.BreakdownType) salary.Breakdown {
	t.Helper()
	for _, l := range lines {
		if l.Type == typ {
			return l
		}
	}
	t.Fatalf("no %s line found", typ)
	return salary.Breakdown{}
}

func TestCalculate_MonthlyProration(t *testing.T) {
	// April 2026 has 30 days: 27 full + 1 half day on a 30000 base
	// prorates to 30000 * 27.5 / 30 = 27500.00
	summary := MonthlySummary{FullDays: 27, HalfDays: 1, AbsentDays: 2}

	computed, err := Calculate(monthlyEmployee(), calcPolicy(), summary, 4, 2026)
	require.NoError(t, err)

	assert.True(t, computed.BaseAmount.Equal(decimal.RequireFromString("27500.00")),
		"got %s", computed.BaseAmount)

	base := lineOfType(t, computed.Lines, salary.BreakdownBaseSalary)
	assert.True(t, base.Amount.Equal(decimal.RequireFromString("27500.00")))
}

func TestCalculate_AbsentPenalty(t *testing.T) {
	pol := calcPolicy()
	pol.EnableAbsentPenalty = true
	pol.AbsentPenaltyPerDay = decimal.RequireFromString("500")

	summary := MonthlySummary{FullDays: 27, HalfDays: 1, AbsentDays: 2}

	computed, err := Calculate(monthlyEmployee(), pol, summary, 4, 2026)
	require.NoError(t, err)

	penalty := lineOfType(t, computed.Lines, salary.BreakdownAbsenceDeduction)
	assert.True(t, penalty.Amount.Equal(decimal.RequireFromString("-1000.00")),
		"got %s", penalty.Amount)

	gross, net := salary.Totals(computed.Lines)
	assert.True(t, gross.Equal(decimal.RequireFromString("27500.00")))
	assert.True(t, net.Equal(decimal.RequireFromString("26500.00")), "got %s", net)
}

func TestCalculate_LatePenalty(t *testing.T) {
	pol := calcPolicy()
	pol.EnableLatePenalty = true
	pol.LatePenaltyPerMinute = decimal.RequireFromString("10")

	summary := MonthlySummary{FullDays: 30, LateMinutes: 25}

	computed, err := Calculate(monthlyEmployee(), pol, summary, 4, 2026)
	require.NoError(t, err)

	penalty := lineOfType(t, computed.Lines, salary.BreakdownLatePenalty)
	assert.True(t, penalty.Amount.Equal(decimal.RequireFromString("-250.00")))
}

func TestCalculate_PenaltiesDisabledByFlags(t *testing.T) {
	pol := calcPolicy()
	pol.LatePenaltyPerMinute = decimal.RequireFromString("10")
	pol.AbsentPenaltyPerDay = decimal.RequireFromString("500")

	summary := MonthlySummary{FullDays: 25, AbsentDays: 5, LateMinutes: 60}

	computed, err := Calculate(monthlyEmployee(), pol, summary, 4, 2026)
	require.NoError(t, err)

	for _, l := range computed.Lines {
		assert.NotEqual(t, salary.BreakdownLatePenalty, l.Type)
		assert.NotEqual(t, salary.BreakdownAbsenceDeduction, l.Type)
	}
}

func TestCalculate_StatutoryDeductions(t *testing.T) {
	pol := calcPolicy()
	pol.PFPercentage = decimal.RequireFromString("12")
	pol.ESIPercentage = decimal.RequireFromString("0.75")

	emp := monthlyEmployee()
	emp.PFESIApplicable = true

	summary := MonthlySummary{FullDays: 30}

	computed, err := Calculate(emp, pol, summary, 4, 2026)
	require.NoError(t, err)

	pf := lineOfType(t, computed.Lines, salary.BreakdownPFDeduction)
	assert.True(t, pf.Amount.Equal(decimal.RequireFromString("-3600.00")), "got %s", pf.Amount)

	esi := lineOfType(t, computed.Lines, salary.BreakdownESIDeduction)
	assert.True(t, esi.Amount.Equal(decimal.RequireFromString("-225.00")), "got %s", esi.Amount)
}

func TestCalculate_StatutorySkippedWhenNotApplicable(t *testing.T) {
	pol := calcPolicy()
	pol.PFPercentage = decimal.RequireFromString("12")

	summary := MonthlySummary{FullDays: 30}

	computed, err := Calculate(monthlyEmployee(), pol, summary, 4, 2026)
	require.NoError(t, err)

	for _, l := range computed.Lines {
		assert.NotEqual(t, salary.BreakdownPFDeduction, l.Type)
	}
}

func TestCalculate_DailyRate(t *testing.T) {
	emp := employee.Employee{
		ID:         "emp-2",
		SalaryType: employee.SalaryTypeDaily,
		DailyRate:  decPtr("1000"),
	}
	summary := MonthlySummary{FullDays: 20, HalfDays: 2}

	computed, err := Calculate(emp, calcPolicy(), summary, 4, 2026)
	require.NoError(t, err)

	assert.True(t, computed.BaseAmount.Equal(decimal.RequireFromString("21000.00")),
		"got %s", computed.BaseAmount)
}

func TestCalculate_HourlyRate(t *testing.T) {
	emp := employee.Employee{
		ID:         "emp-3",
		SalaryType: employee.SalaryTypeHourly,
		HourlyRate: decPtr("150"),
	}
	summary := MonthlySummary{FullDays: 20, ApprovedWorkingHours: 160.5}

	computed, err := Calculate(emp, calcPolicy(), summary, 4, 2026)
	require.NoError(t, err)

	assert.True(t, computed.BaseAmount.Equal(decimal.RequireFromString("24075.00")),
		"got %s", computed.BaseAmount)
}

func TestCalculate_OvertimeWithExplicitRate(t *testing.T) {
	emp := monthlyEmployee()
	emp.OvertimeRate = decPtr("200")

	summary := MonthlySummary{FullDays: 30, OvertimeHours: 5}

	computed, err := Calculate(emp, calcPolicy(), summary, 4, 2026)
	require.NoError(t, err)

	ot := lineOfType(t, computed.Lines, salary.BreakdownOvertime)
	assert.True(t, ot.Amount.Equal(decimal.RequireFromString("1000.00")), "got %s", ot.Amount)
}

func TestCalculate_OvertimeDefaultRate(t *testing.T) {
	// Hourly 150 with no explicit overtime rate: 1.5x = 225/hour
	emp := employee.Employee{
		ID:         "emp-3",
		SalaryType: employee.SalaryTypeHourly,
		HourlyRate: decPtr("150"),
	}
	summary := MonthlySummary{FullDays: 20, ApprovedWorkingHours: 160, OvertimeHours: 4}

	computed, err := Calculate(emp, calcPolicy(), summary, 4, 2026)
	require.NoError(t, err)

	ot := lineOfType(t, computed.Lines, salary.BreakdownOvertime)
	assert.True(t, ot.Amount.Equal(decimal.RequireFromString("900.00")), "got %s", ot.Amount)
}

func TestCalculate_MissingRateFails(t *testing.T) {
	emp := employee.Employee{ID: "emp-4", SalaryType: employee.SalaryTypeMonthly}

	_, err := Calculate(emp, calcPolicy(), MonthlySummary{FullDays: 30}, 4, 2026)
	assert.Error(t, err)
}

func TestCalculate_BreakdownTotalsRoundTrip(t *testing.T) {
	// Gross and net must be reproducible from the stored lines alone.
	pol := calcPolicy()
	pol.EnableLatePenalty = true
	pol.LatePenaltyPerMinute = decimal.RequireFromString("7.5")
	pol.EnableAbsentPenalty = true
	pol.AbsentPenaltyPerDay = decimal.RequireFromString("333.33")
	pol.PFPercentage = decimal.RequireFromString("12")
	pol.ESIPercentage = decimal.RequireFromString("0.75")

	emp := monthlyEmployee()
	emp.PFESIApplicable = true
	emp.OvertimeRate = decPtr("187.5")

	summary := MonthlySummary{FullDays: 24, HalfDays: 2, AbsentDays: 3, LateMinutes: 47, OvertimeHours: 6.5}

	computed, err := Calculate(emp, pol, summary, 4, 2026)
	require.NoError(t, err)

	var positives, negatives decimal.Decimal
	for _, l := range computed.Lines {
		if l.Amount.IsNegative() {
			negatives = negatives.Add(l.Amount.Abs())
		} else {
			positives = positives.Add(l.Amount)
		}
	}

	gross, net := salary.Totals(computed.Lines)
	assert.True(t, gross.Equal(positives))
	assert.True(t, net.Equal(positives.Sub(negatives)))
}
