package company

import "context"

type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (Company, error)

	// ListActiveIDs returns the IDs of every active tenant. The recovery
	// batch jobs iterate this list.
	ListActiveIDs(ctx context.Context) ([]string, error)
}
