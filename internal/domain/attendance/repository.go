package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance records. Every
// guarded mutation is a conditional update: the WHERE clause carries the
// guard (open punch, auto-close flag, PENDING status) so overlapping cron
// runs and interactive edits can never double-process a record.
type AttendanceRepository interface {
	// Create inserts a new record. Returns ErrAlreadyPunchedIn when the
	// unique (employee, company, date) key is violated.
	Create(ctx context.Context, record Record) (Record, error)

	GetByID(ctx context.Context, id string, companyID string) (Record, error)

	// GetByEmployeeAndDate returns nil when no record exists for the day.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*Record, error)

	// GetLatestOpen returns the open record (punch-in set, punch-out null)
	// with the most recent punch-in among the given attendance dates.
	// Returns ErrNoOpenPunch when none exists.
	GetLatestOpen(ctx context.Context, employeeID string, companyID string, dates []time.Time) (Record, error)

	// CompletePunchOut applies the punch-out fields conditionally on the
	// record still being open. Returns false when the guard did not match.
	CompletePunchOut(ctx context.Context, record Record) (bool, error)

	// AutoClose applies an automatic punch-out conditionally on
	// auto_punched_out being false and the record still being open.
	// Returns false when the guard did not match (already processed).
	AutoClose(ctx context.Context, record Record) (bool, error)

	// SetStatus transitions a PENDING record to a terminal status. Returns
	// ErrInvalidTransition when the record exists but is not PENDING.
	SetStatus(ctx context.Context, id string, companyID string, status Status, actor string, reason *string, at time.Time) (Record, error)

	// Update rewrites mutable fields; used by the correction workflow.
	Update(ctx context.Context, record Record) error

	// CreateIfMissing inserts the record unless one already exists for the
	// (employee, company, date) key. Returns whether a row was inserted.
	CreateIfMissing(ctx context.Context, record Record) (bool, error)

	// ListOpenForDates returns auto-close candidates for a tenant: open,
	// not yet auto-closed, dated on one of the given days.
	ListOpenForDates(ctx context.Context, companyID string, dates []time.Time) ([]Record, error)

	// ListByEmployeeAndRange returns all records with attendance_date in
	// [from, to], ordered by date ascending.
	ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]Record, error)

	// List retrieves records with filters and pagination.
	List(ctx context.Context, filter Filter, companyID string) ([]Record, int64, error)
}
