package salary

import (
	"context"
	"time"
)

// SalaryService is the payroll engine surface: monthly generation, the
// approve/reject/pay lifecycle, and recalculation.
type SalaryService interface {
	// Generate computes and stores salary records for a period, skipping
	// employees that already have one.
	Generate(ctx context.Context, req GenerateRequest) ([]Response, error)

	Get(ctx context.Context, id string, companyID string) (Response, error)

	List(ctx context.Context, companyID string, month, year, page, limit int) (ListResponse, error)

	// Approve is legal only from PENDING.
	Approve(ctx context.Context, id string, companyID string, actor string) (Response, error)

	// Reject is legal only from PENDING; the record stays recalculable.
	Reject(ctx context.Context, req RejectRequest) (Response, error)

	// MarkPaid is legal only from APPROVED and locks the record forever.
	MarkPaid(ctx context.Context, id string, companyID string, paidAt *time.Time) (Response, error)

	// Recalculate regenerates the computed breakdown lines from a fresh
	// aggregate+calculate pass. Legal only from PENDING or REJECTED.
	Recalculate(ctx context.Context, id string, companyID string, actor string) (Response, error)

	// AddManualLine appends a PAYMENT/DEDUCTION/RECOVERY/ADVANCE line.
	AddManualLine(ctx context.Context, req AddLineRequest) (Response, error)
}
