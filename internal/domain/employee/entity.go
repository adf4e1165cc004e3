package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type SalaryType string

const (
	SalaryTypeMonthly SalaryType = "MONTHLY"
	SalaryTypeDaily   SalaryType = "DAILY"
	SalaryTypeHourly  SalaryType = "HOURLY"
)

type Employee struct {
	ID               string
	CompanyID        string
	UserID           *string
	FullName         string
	EmploymentStatus string

	// AttendanceTracked marks roles eligible for attendance tracking; the
	// absence-marking job only creates records for tracked employees.
	AttendanceTracked bool

	SalaryType      SalaryType
	BaseSalary      *decimal.Decimal
	DailyRate       *decimal.Decimal
	HourlyRate      *decimal.Decimal
	OvertimeRate    *decimal.Decimal
	PFESIApplicable bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
