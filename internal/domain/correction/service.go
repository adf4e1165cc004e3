package correction

import "context"

// CorrectionService adjudicates employee-submitted punch disputes.
type CorrectionService interface {
	Submit(ctx context.Context, req SubmitRequest) (Response, error)

	// Review decides a PENDING request. On approval the referenced
	// attendance record's punch time is set; on rejection only the
	// request itself changes.
	Review(ctx context.Context, req ReviewRequest) (Response, error)

	ListPending(ctx context.Context, companyID string, page, limit int) (ListResponse, error)
}
