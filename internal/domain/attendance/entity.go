package attendance

import (
	"time"
)

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
	StatusAbsent   Status = "ABSENT"
	StatusLeave    Status = "LEAVE"
)

// TerminalStatuses are the legal targets of a status transition out of PENDING.
var TerminalStatuses = []Status{StatusApproved, StatusRejected, StatusAbsent, StatusLeave}

func IsTerminal(s Status) bool {
	for _, t := range TerminalStatuses {
		if s == t {
			return true
		}
	}
	return false
}

// Record is one employee's attendance for one calendar day. The
// (EmployeeID, CompanyID, AttendanceDate) triple is unique; AttendanceDate is
// the tenant-local midnight of the working day. Records are never deleted;
// status transitions are the only form of undo.
type Record struct {
	ID             string
	EmployeeID     string
	CompanyID      string
	AttendanceDate time.Time

	PunchInAt  *time.Time
	PunchOutAt *time.Time

	Status        Status
	WorkingHours  float64
	OvertimeHours float64

	IsLate      bool
	LateMinutes int

	AutoPunchedOut bool
	AutoPunchOutAt *time.Time

	// WorkingHoursCapped records that the raw punch span exceeded the policy
	// maximum and the excess was dropped from pay.
	WorkingHoursCapped bool

	RequiresApproval bool
	ApprovalReason   *string

	ApprovedBy *string
	ApprovedAt *time.Time

	RejectedBy      *string
	RejectedAt      *time.Time
	RejectionReason *string

	PunchInLatitude   *float64
	PunchInLongitude  *float64
	PunchInPhotoRef   *string
	PunchOutLatitude  *float64
	PunchOutLongitude *float64
	PunchOutPhotoRef  *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}

// IsOpen reports whether the record has a punch-in awaiting a punch-out.
func (r Record) IsOpen() bool {
	return r.PunchInAt != nil && r.PunchOutAt == nil
}
