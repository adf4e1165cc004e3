package employee

import "context"

// EmployeeRepository defines data access methods for employee read models.
// All methods include companyID to prevent cross-company data access.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string, companyID string) (Employee, error)

	// GetActiveByCompanyID returns all active employees for payroll generation.
	GetActiveByCompanyID(ctx context.Context, companyID string) ([]Employee, error)

	// GetActiveTrackedByCompanyID returns active employees whose role is
	// eligible for attendance tracking.
	GetActiveTrackedByCompanyID(ctx context.Context, companyID string) ([]Employee, error)
}
