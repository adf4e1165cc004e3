package policy

import "context"

// Store is the read-only accessor for a tenant's policy snapshot.
// Implementations may cache with a short TTL; callers must treat the
// returned value as immutable.
type Store interface {
	Get(ctx context.Context, companyID string) (Policy, error)
}

// Repository defines data access for policy rows. The cached Store sits on
// top of this.
type Repository interface {
	GetByCompanyID(ctx context.Context, companyID string) (Policy, error)
}
