package cron

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/audit"
	"github.com/attendly/attendly-backend-go/internal/domain/company"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/notification"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
)

// JobResult summarizes one recovery pass. Errors are per-tenant: one broken
// tenant never stops the others.
type JobResult struct {
	Processed int      `json:"processed"`
	Errors    []string `json:"errors,omitempty"`
}

// RecoveryJobs owns the two attendance recovery passes: auto punch-out for
// forgotten punch-outs, and absence marking for days without any record.
// Both are idempotent; overlapping runs are resolved by conditional updates
// in the repository.
type RecoveryJobs struct {
	companyRepo    company.CompanyRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	policies       policy.Store
	auditLog       audit.Logger
	notifier       notification.Notifier

	// tenantLimit bounds how many tenants are processed concurrently.
	tenantLimit int
}

func NewRecoveryJobs(
	companyRepo company.CompanyRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	policies policy.Store,
	auditLog audit.Logger,
	notifier notification.Notifier,
	tenantLimit int,
) *RecoveryJobs {
	if tenantLimit < 1 {
		tenantLimit = 1
	}
	return &RecoveryJobs{
		companyRepo:    companyRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		policies:       policies,
		auditLog:       auditLog,
		notifier:       notifier,
		tenantLimit:    tenantLimit,
	}
}

func (j *RecoveryJobs) RegisterJobs(scheduler *Scheduler, autoPunchOutInterval, markAbsentInterval time.Duration) {
	scheduler.AddJob("auto_punch_out", autoPunchOutInterval, func(ctx context.Context) error {
		result, err := j.RunAutoPunchOut(ctx, time.Now())
		logResult("auto_punch_out", result)
		return err
	})
	scheduler.AddJob("mark_absent", markAbsentInterval, func(ctx context.Context) error {
		result, err := j.RunMarkAbsent(ctx, time.Now())
		logResult("mark_absent", result)
		return err
	})
}

func logResult(job string, result JobResult) {
	if len(result.Errors) > 0 {
		slog.Warn("Cron: job finished with errors", "job", job, "processed", result.Processed, "errors", result.Errors)
	} else {
		slog.Info("Cron: job finished", "job", job, "processed", result.Processed)
	}
}

// RunAutoPunchOut closes every open record whose auto punch-out deadline has
// passed, crediting hours up to the scheduled shift end and never granting
// overtime.
func (j *RecoveryJobs) RunAutoPunchOut(ctx context.Context, now time.Time) (JobResult, error) {
	return j.forEachTenant(ctx, func(ctx context.Context, companyID string) (int, []string) {
		return j.autoPunchOutTenant(ctx, companyID, now)
	})
}

// RunMarkAbsent creates an ABSENT record for every tracked employee who has
// no record for yesterday.
func (j *RecoveryJobs) RunMarkAbsent(ctx context.Context, now time.Time) (JobResult, error) {
	return j.forEachTenant(ctx, func(ctx context.Context, companyID string) (int, []string) {
		return j.markAbsentTenant(ctx, companyID, now)
	})
}

func (j *RecoveryJobs) forEachTenant(ctx context.Context, fn func(ctx context.Context, companyID string) (int, []string)) (JobResult, error) {
	companyIDs, err := j.companyRepo.ListActiveIDs(ctx)
	if err != nil {
		return JobResult{}, fmt.Errorf("failed to list active companies: %w", err)
	}

	var (
		mu     sync.Mutex
		result JobResult
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(j.tenantLimit)
	for _, companyID := range companyIDs {
		g.Go(func() error {
			processed, errs := fn(ctx, companyID)
			mu.Lock()
			result.Processed += processed
			result.Errors = append(result.Errors, errs...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func (j *RecoveryJobs) autoPunchOutTenant(ctx context.Context, companyID string, now time.Time) (int, []string) {
	pol, err := j.policies.Get(ctx, companyID)
	if err != nil {
		return 0, []string{fmt.Sprintf("company %s: %v", companyID, err)}
	}

	loc := pol.Location()
	nowLocal := now.In(loc)
	today := midnightOf(nowLocal, loc)
	dates := []time.Time{today, today.AddDate(0, 0, -1)}

	candidates, err := j.attendanceRepo.ListOpenForDates(ctx, companyID, dates)
	if err != nil {
		return 0, []string{fmt.Sprintf("company %s: failed to list open records: %v", companyID, err)}
	}

	processed := 0
	var errs []string
	for _, record := range candidates {
		deadline := pol.AutoPunchOutDeadlineOn(record.AttendanceDate, loc)
		if nowLocal.Before(deadline) {
			continue
		}

		closed, err := j.closeRecord(ctx, pol, record, loc)
		if err != nil {
			errs = append(errs, fmt.Sprintf("company %s record %s: %v", companyID, record.ID, err))
			continue
		}
		if closed {
			processed++
		}
	}
	return processed, errs
}

// closeRecord applies the automatic punch-out at the deadline (shift end
// plus buffer). The conditional update makes a concurrent manual punch-out
// or a second job run a no-op.
func (j *RecoveryJobs) closeRecord(ctx context.Context, pol policy.Policy, record attendance.Record, loc *time.Location) (bool, error) {
	punchOut := pol.AutoPunchOutDeadlineOn(record.AttendanceDate, loc)
	if punchOut.Before(*record.PunchInAt) {
		punchOut = *record.PunchInAt
	}

	worked := punchOut.Sub(*record.PunchInAt).Hours()
	capped := false
	if pol.MaxWorkingHours > 0 && worked > pol.MaxWorkingHours {
		worked = pol.MaxWorkingHours
		capped = true
	}

	reason := "auto punch-out: no punch-out recorded"
	record.PunchOutAt = &punchOut
	record.WorkingHours = roundHours(worked)
	record.OvertimeHours = 0
	record.WorkingHoursCapped = capped
	record.AutoPunchedOut = true
	record.AutoPunchOutAt = &punchOut
	record.RequiresApproval = true
	record.ApprovalReason = &reason

	applied, err := j.attendanceRepo.AutoClose(ctx, record)
	if err != nil {
		return false, err
	}
	if !applied {
		return false, nil
	}

	if err := j.auditLog.Record(ctx, "system", "attendance.auto_punch_out", audit.EntityAttendance, record.ID, map[string]any{
		"date":          record.AttendanceDate.Format("2006-01-02"),
		"working_hours": record.WorkingHours,
	}); err != nil {
		slog.Warn("Cron: failed to record audit entry", "record_id", record.ID, "error", err)
	}
	if err := j.notifier.Notify(ctx, record.EmployeeID, "Attendance auto-closed",
		fmt.Sprintf("Your attendance for %s was automatically punched out at the recovery deadline.",
			record.AttendanceDate.Format("2006-01-02")), notification.ChannelPush); err != nil {
		slog.Warn("Cron: failed to notify employee", "employee_id", record.EmployeeID, "error", err)
	}

	return true, nil
}

func (j *RecoveryJobs) markAbsentTenant(ctx context.Context, companyID string, now time.Time) (int, []string) {
	pol, err := j.policies.Get(ctx, companyID)
	if err != nil {
		return 0, []string{fmt.Sprintf("company %s: %v", companyID, err)}
	}

	loc := pol.Location()
	nowLocal := now.In(loc)
	yesterday := midnightOf(nowLocal, loc).AddDate(0, 0, -1)

	// An overnight shift that started yesterday may still be running; hold
	// off until its auto punch-out deadline has passed.
	if nowLocal.Before(pol.AutoPunchOutDeadlineOn(yesterday, loc)) {
		return 0, nil
	}

	employees, err := j.employeeRepo.GetActiveTrackedByCompanyID(ctx, companyID)
	if err != nil {
		return 0, []string{fmt.Sprintf("company %s: failed to list employees: %v", companyID, err)}
	}

	processed := 0
	var errs []string
	for _, emp := range employees {
		record := attendance.Record{
			ID:             uuid.New().String(),
			EmployeeID:     emp.ID,
			CompanyID:      companyID,
			AttendanceDate: yesterday,
			Status:         attendance.StatusAbsent,
		}
		inserted, err := j.attendanceRepo.CreateIfMissing(ctx, record)
		if err != nil {
			errs = append(errs, fmt.Sprintf("company %s employee %s: %v", companyID, emp.ID, err))
			continue
		}
		if !inserted {
			continue
		}
		processed++

		if err := j.auditLog.Record(ctx, "system", "attendance.mark_absent", audit.EntityAttendance, record.ID, map[string]any{
			"employee_id": emp.ID,
			"date":        yesterday.Format("2006-01-02"),
		}); err != nil {
			slog.Warn("Cron: failed to record audit entry", "record_id", record.ID, "error", err)
		}
	}
	return processed, errs
}

func midnightOf(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func roundHours(v float64) float64 {
	return math.Round(v*100) / 100
}
