package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
)

type DayClass string

const (
	DayFull    DayClass = "FULL"
	DayHalf    DayClass = "HALF"
	DayAbsent  DayClass = "ABSENT"
	DayLeave   DayClass = "LEAVE"
	DayPending DayClass = "PENDING"
)

type DayClassification struct {
	Date  time.Time
	Class DayClass
}

// MonthlySummary is the attendance aggregate one salary record is computed
// from. Every classified record lands in exactly one of the five counters.
type MonthlySummary struct {
	FullDays    int
	HalfDays    int
	AbsentDays  int
	LeaveDays   int
	PendingDays int

	LateMinutes          int
	OvertimeHours        float64
	ApprovedWorkingHours float64

	Days     []DayClassification
	Warnings []string
}

// EvaluatedDays is the number of records the summary classified. It always
// equals the record count for the evaluated stretch of the month.
func (s MonthlySummary) EvaluatedDays() int {
	return s.FullDays + s.HalfDays + s.AbsentDays + s.LeaveDays + s.PendingDays
}

// Aggregator folds a month of attendance records into a MonthlySummary.
type Aggregator struct {
	attendanceRepo attendance.AttendanceRepository
}

func NewAggregator(attendanceRepo attendance.AttendanceRepository) *Aggregator {
	return &Aggregator{attendanceRepo: attendanceRepo}
}

// Aggregate classifies every attendance record of the month up to yesterday
// (tenant-local). Days without a record are surfaced as warnings but never
// classified: the absence-marking job is what turns a real absence into a
// record, so the five counters always sum to the records found. Future days
// and today are not evaluated because their records may still be open.
func (a *Aggregator) Aggregate(ctx context.Context, employeeID string, companyID string, month, year int, pol policy.Policy, now time.Time) (MonthlySummary, error) {
	loc := pol.Location()
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	last := first.AddDate(0, 1, -1)

	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)
	cutoff := today.AddDate(0, 0, -1)
	if cutoff.After(last) {
		cutoff = last
	}

	summary := MonthlySummary{}
	if cutoff.Before(first) {
		return summary, nil
	}

	records, err := a.attendanceRepo.ListByEmployeeAndRange(ctx, employeeID, companyID, first, last)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("failed to load attendance for aggregation: %w", err)
	}

	byDay := make(map[string]attendance.Record, len(records))
	for _, r := range records {
		byDay[r.AttendanceDate.Format("2006-01-02")] = r
	}

	for day := first; !day.After(cutoff); day = day.AddDate(0, 0, 1) {
		key := day.Format("2006-01-02")
		record, ok := byDay[key]
		if !ok {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("no attendance record for %s", key))
			continue
		}

		class := classify(record, pol)
		summary.Days = append(summary.Days, DayClassification{Date: day, Class: class})
		switch class {
		case DayFull:
			summary.FullDays++
		case DayHalf:
			summary.HalfDays++
		case DayAbsent:
			summary.AbsentDays++
		case DayLeave:
			summary.LeaveDays++
		case DayPending:
			summary.PendingDays++
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("attendance for %s still pending approval", key))
		}

		if record.Status == attendance.StatusApproved {
			summary.LateMinutes += record.LateMinutes
			summary.OvertimeHours += record.OvertimeHours
			summary.ApprovedWorkingHours += record.WorkingHours
		}
	}

	return summary, nil
}

// classify maps one record to its pay class. A rejected day is treated as
// absent. An approved day is a half day when its hours fall below the
// half-day threshold; approval never downgrades to absent.
func classify(r attendance.Record, pol policy.Policy) DayClass {
	switch r.Status {
	case attendance.StatusLeave:
		return DayLeave
	case attendance.StatusAbsent, attendance.StatusRejected:
		return DayAbsent
	case attendance.StatusPending:
		return DayPending
	}

	if pol.HalfDayThresholdHours > 0 && r.WorkingHours < pol.HalfDayThresholdHours {
		return DayHalf
	}
	return DayFull
}
