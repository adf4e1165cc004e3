package audit

import "context"

// Logger is the append-only audit trail. Failures are logged and swallowed
// by callers: attendance and payroll correctness must not depend on
// telemetry availability.
type Logger interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any) error
}

const (
	EntityAttendance = "attendance_record"
	EntityCorrection = "correction_request"
	EntitySalary     = "salary_record"
)
