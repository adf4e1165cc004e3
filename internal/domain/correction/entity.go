package correction

import "time"

type Type string

const (
	TypeMissedPunchIn  Type = "MISSED_PUNCH_IN"
	TypeMissedPunchOut Type = "MISSED_PUNCH_OUT"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// Request is an employee-submitted dispute about a missed punch. It is
// terminal once reviewed; the underlying attendance record is only mutated
// on approval.
type Request struct {
	ID           string
	EmployeeID   string
	CompanyID    string
	AttendanceID *string
	Date         time.Time
	Type         Type
	RequestedTime time.Time
	Note         *string
	Status       Status
	ReviewedBy   *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
