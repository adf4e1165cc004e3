package correction

import (
	"context"
)

type CorrectionRepository interface {
	Create(ctx context.Context, request Request) (Request, error)

	GetByID(ctx context.Context, id string, companyID string) (Request, error)

	// MarkReviewed transitions a PENDING request to the decision status.
	// The PENDING guard lives in the WHERE clause; returns ErrNotPending
	// when the request exists but was already reviewed.
	MarkReviewed(ctx context.Context, id string, companyID string, decision Status, reviewer string) (Request, error)

	ListPending(ctx context.Context, companyID string, page, limit int) ([]Request, int64, error)
}
