package attendance

import (
	"context"
)

// AttendanceService owns the lifecycle of one (employee, date) attendance
// record: punch-in, punch-out, status transitions and the admin manual path.
type AttendanceService interface {
	// PunchIn records the first presence event of a logical day after
	// geofence and night-window validation.
	PunchIn(ctx context.Context, req PunchInRequest) (Response, error)

	// PunchOut closes the most recent open record for today or yesterday
	// and derives working hours, overtime and approval requirements.
	PunchOut(ctx context.Context, req PunchOutRequest) (Response, error)

	// SetStatus moves a PENDING record to a terminal status
	// (manager/admin action).
	SetStatus(ctx context.Context, req SetStatusRequest) (Response, error)

	// ManualEntry creates a synthetic record (admin path).
	ManualEntry(ctx context.Context, req ManualEntryRequest) (Response, error)

	Get(ctx context.Context, id string, companyID string) (Response, error)

	List(ctx context.Context, filter Filter, companyID string) (ListResponse, error)
}
