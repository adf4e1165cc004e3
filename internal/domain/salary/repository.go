package salary

import (
	"context"
	"time"
)

// SalaryRepository defines data access for salary records and their
// breakdown lines. Status transitions are conditional updates: the expected
// status sits in the WHERE clause so two actors can never double-approve or
// double-pay, and recalculation can never race a payment.
type SalaryRepository interface {
	// CreateWithBreakdowns inserts the record and its lines in one
	// transaction. Returns ErrRecordExists when the (employee, company,
	// month, year) key is taken.
	CreateWithBreakdowns(ctx context.Context, record Record, lines []Breakdown) (Record, error)

	GetByID(ctx context.Context, id string, companyID string) (Record, error)

	GetByEmployeePeriod(ctx context.Context, employeeID string, companyID string, month, year int) (Record, error)

	List(ctx context.Context, companyID string, month, year int, page, limit int) ([]Record, int64, error)

	// Approve transitions PENDING -> APPROVED and sets locked_at.
	Approve(ctx context.Context, id string, companyID string, actor string, at time.Time) (Record, error)

	// Reject transitions PENDING -> REJECTED and sets locked_at.
	Reject(ctx context.Context, id string, companyID string, actor string, reason string, at time.Time) (Record, error)

	// MarkPaid transitions APPROVED -> PAID, sets paid_at and locks the
	// record permanently.
	MarkPaid(ctx context.Context, id string, companyID string, paidAt time.Time) (Record, error)

	// ReplaceComputed atomically deletes the computed breakdown lines,
	// inserts the regenerated ones, rewrites the totals and resets status
	// to PENDING. Only legal while status is PENDING or REJECTED; manual
	// lines are untouched.
	ReplaceComputed(ctx context.Context, record Record, computed []Breakdown) (Record, error)

	// AddManualLine appends an operator-entered line (PAYMENT, DEDUCTION,
	// RECOVERY, ADVANCE) to a PENDING record and re-derives the totals.
	AddManualLine(ctx context.Context, salaryID string, companyID string, line Breakdown) (Record, error)
}
