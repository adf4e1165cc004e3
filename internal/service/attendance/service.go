package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/audit"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/notification"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
	"github.com/attendly/attendly-backend-go/internal/pkg/geo"
)

// AttendanceServiceImpl implements attendance.AttendanceService.
type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	policies       policy.Store
	auditLog       audit.Logger
	notifier       notification.Notifier

	// now is injectable for tests.
	now func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	policies policy.Store,
	auditLog audit.Logger,
	notifier notification.Notifier,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		policies:       policies,
		auditLog:       auditLog,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (s *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.Response, error) {
	if err := req.Validate(); err != nil {
		return attendance.Response{}, err
	}

	pol, err := s.policies.Get(ctx, req.CompanyID)
	if err != nil {
		return attendance.Response{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID)
	if err != nil {
		return attendance.Response{}, err
	}

	geoResult, err := s.checkGeofence(pol, req.Latitude, req.Longitude)
	if err != nil {
		return attendance.Response{}, err
	}

	loc := pol.Location()
	now := s.now().In(loc)

	date, err := resolveAttendanceDate(pol, now, loc)
	if err != nil {
		return attendance.Response{}, err
	}

	shiftStart := pol.ShiftStartOn(date, loc)
	graceDeadline := shiftStart.Add(time.Duration(pol.GracePeriodMinutes) * time.Minute)
	isLate := now.After(graceDeadline)
	lateMinutes := 0
	if isLate {
		lateMinutes = int(now.Sub(shiftStart).Minutes())
	}

	punchAt := now

	// An absence-marked record without punches is reclaimed instead of
	// rejected: the employee arrived before anyone reviewed the mark.
	existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, emp.ID, date, req.CompanyID)
	if err != nil {
		return attendance.Response{}, err
	}

	var record attendance.Record
	if existing != nil {
		if existing.PunchInAt != nil {
			return attendance.Response{}, attendance.ErrAlreadyPunchedIn
		}
		existing.PunchInAt = &punchAt
		existing.Status = attendance.StatusPending
		existing.IsLate = isLate
		existing.LateMinutes = lateMinutes
		existing.PunchInLatitude = req.Latitude
		existing.PunchInLongitude = req.Longitude
		existing.PunchInPhotoRef = req.PhotoRef
		if err := s.attendanceRepo.Update(ctx, *existing); err != nil {
			return attendance.Response{}, fmt.Errorf("failed to reopen attendance record: %w", err)
		}
		record = *existing
	} else {
		record = attendance.Record{
			ID:               uuid.New().String(),
			EmployeeID:       emp.ID,
			CompanyID:        req.CompanyID,
			AttendanceDate:   date,
			PunchInAt:        &punchAt,
			Status:           attendance.StatusPending,
			IsLate:           isLate,
			LateMinutes:      lateMinutes,
			PunchInLatitude:  req.Latitude,
			PunchInLongitude: req.Longitude,
			PunchInPhotoRef:  req.PhotoRef,
		}
		record, err = s.attendanceRepo.Create(ctx, record)
		if err != nil {
			return attendance.Response{}, err
		}
	}

	s.recordAudit(ctx, emp.ID, "attendance.punch_in", record.ID, map[string]any{
		"date":         date.Format("2006-01-02"),
		"is_late":      isLate,
		"late_minutes": lateMinutes,
		"geo_skipped":  geoResult.Skipped,
	})

	resp := toResponse(record)
	if !geoResult.Skipped {
		d := geoResult.DistanceMeters
		resp.PunchDistanceM = &d
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.Response, error) {
	if err := req.Validate(); err != nil {
		return attendance.Response{}, err
	}

	pol, err := s.policies.Get(ctx, req.CompanyID)
	if err != nil {
		return attendance.Response{}, err
	}

	geoResult, err := s.checkGeofence(pol, req.Latitude, req.Longitude)
	if err != nil {
		return attendance.Response{}, err
	}

	loc := pol.Location()
	now := s.now().In(loc)
	today := midnightOf(now, loc)
	yesterday := today.AddDate(0, 0, -1)

	// A night shift's punch-out lands on the calendar day after its record,
	// so the lookup spans today and yesterday and takes the freshest open one.
	record, err := s.attendanceRepo.GetLatestOpen(ctx, req.EmployeeID, req.CompanyID, []time.Time{today, yesterday})
	if err != nil {
		return attendance.Response{}, err
	}

	punchOutAt := now
	worked := punchOutAt.Sub(*record.PunchInAt)
	if worked < 0 {
		worked = 0
	}
	workedHours := worked.Hours()

	capped := false
	if pol.MaxWorkingHours > 0 && workedHours > pol.MaxWorkingHours {
		workedHours = pol.MaxWorkingHours
		capped = true
	}
	workedHours = round2(workedHours)

	// Overtime counts only beyond the scheduled shift plus the threshold,
	// measured on the capped span.
	overtimeStart := pol.ShiftDuration().Hours() + pol.OvertimeThresholdHours
	overtimeHours := round2(math.Max(0, workedHours-overtimeStart))

	var reasons []string
	if record.IsLate {
		reasons = append(reasons, "late arrival")
	}
	if pol.MinWorkingHours > 0 && workedHours < pol.MinWorkingHours {
		reasons = append(reasons, "below minimum working hours")
	}
	if overtimeHours > 0 {
		reasons = append(reasons, "overtime recorded")
	}

	record.PunchOutAt = &punchOutAt
	record.WorkingHours = workedHours
	record.OvertimeHours = overtimeHours
	record.WorkingHoursCapped = capped
	record.PunchOutLatitude = req.Latitude
	record.PunchOutLongitude = req.Longitude
	record.PunchOutPhotoRef = req.PhotoRef
	if len(reasons) > 0 {
		record.RequiresApproval = true
		reason := strings.Join(reasons, "; ")
		record.ApprovalReason = &reason
	}

	applied, err := s.attendanceRepo.CompletePunchOut(ctx, record)
	if err != nil {
		return attendance.Response{}, fmt.Errorf("failed to complete punch-out: %w", err)
	}
	if !applied {
		// The record was closed between the read and the write, most likely
		// by the auto punch-out job.
		return attendance.Response{}, attendance.ErrNoOpenPunch
	}

	s.recordAudit(ctx, req.EmployeeID, "attendance.punch_out", record.ID, map[string]any{
		"date":                 record.AttendanceDate.Format("2006-01-02"),
		"working_hours":        workedHours,
		"overtime_hours":       overtimeHours,
		"working_hours_capped": capped,
	})
	if capped {
		s.notify(ctx, req.EmployeeID, "Working hours capped",
			fmt.Sprintf("Your recorded working hours on %s were capped at %.2f hours.",
				record.AttendanceDate.Format("2006-01-02"), pol.MaxWorkingHours))
	}

	resp := toResponse(record)
	if !geoResult.Skipped {
		d := geoResult.DistanceMeters
		resp.PunchDistanceM = &d
	}
	return resp, nil
}

func (s *AttendanceServiceImpl) SetStatus(ctx context.Context, req attendance.SetStatusRequest) (attendance.Response, error) {
	if err := req.Validate(); err != nil {
		return attendance.Response{}, err
	}

	record, err := s.attendanceRepo.SetStatus(ctx, req.RecordID, req.CompanyID,
		attendance.Status(req.Status), req.Actor, req.Reason, s.now())
	if err != nil {
		return attendance.Response{}, err
	}

	s.recordAudit(ctx, req.Actor, "attendance.set_status", record.ID, map[string]any{
		"status": req.Status,
	})

	switch record.Status {
	case attendance.StatusApproved:
		s.notify(ctx, record.EmployeeID, "Attendance approved",
			fmt.Sprintf("Your attendance for %s was approved.", record.AttendanceDate.Format("2006-01-02")))
	case attendance.StatusRejected:
		reason := ""
		if record.RejectionReason != nil {
			reason = *record.RejectionReason
		}
		s.notify(ctx, record.EmployeeID, "Attendance rejected",
			fmt.Sprintf("Your attendance for %s was rejected: %s", record.AttendanceDate.Format("2006-01-02"), reason))
	}

	return toResponse(record), nil
}

func (s *AttendanceServiceImpl) ManualEntry(ctx context.Context, req attendance.ManualEntryRequest) (attendance.Response, error) {
	if err := req.Validate(); err != nil {
		return attendance.Response{}, err
	}

	pol, err := s.policies.Get(ctx, req.CompanyID)
	if err != nil {
		return attendance.Response{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID)
	if err != nil {
		return attendance.Response{}, err
	}

	loc := pol.Location()
	day, _ := time.ParseInLocation("2006-01-02", req.Date, loc)

	record := attendance.Record{
		ID:             uuid.New().String(),
		EmployeeID:     emp.ID,
		CompanyID:      req.CompanyID,
		AttendanceDate: day,
		Status:         attendance.StatusPending,
	}
	if req.Status != "" {
		record.Status = attendance.Status(req.Status)
	}

	if req.PunchInAt != nil {
		in, err := time.Parse(time.RFC3339, *req.PunchInAt)
		if err != nil {
			return attendance.Response{}, fmt.Errorf("invalid punch_in_at: %w", err)
		}
		in = in.In(loc)
		record.PunchInAt = &in

		shiftStart := pol.ShiftStartOn(day, loc)
		graceDeadline := shiftStart.Add(time.Duration(pol.GracePeriodMinutes) * time.Minute)
		if in.After(graceDeadline) {
			record.IsLate = true
			record.LateMinutes = int(in.Sub(shiftStart).Minutes())
		}
	}
	if req.PunchOutAt != nil {
		out, err := time.Parse(time.RFC3339, *req.PunchOutAt)
		if err != nil {
			return attendance.Response{}, fmt.Errorf("invalid punch_out_at: %w", err)
		}
		out = out.In(loc)
		record.PunchOutAt = &out
	}

	if record.PunchInAt != nil && record.PunchOutAt != nil {
		worked := record.PunchOutAt.Sub(*record.PunchInAt).Hours()
		if worked < 0 {
			worked = 0
		}
		if pol.MaxWorkingHours > 0 && worked > pol.MaxWorkingHours {
			worked = pol.MaxWorkingHours
			record.WorkingHoursCapped = true
		}
		record.WorkingHours = round2(worked)
		overtimeStart := pol.ShiftDuration().Hours() + pol.OvertimeThresholdHours
		record.OvertimeHours = round2(math.Max(0, record.WorkingHours-overtimeStart))
	}

	record, err = s.attendanceRepo.Create(ctx, record)
	if err != nil {
		return attendance.Response{}, err
	}

	s.recordAudit(ctx, req.Actor, "attendance.manual_entry", record.ID, map[string]any{
		"employee_id": emp.ID,
		"date":        req.Date,
		"status":      string(record.Status),
	})

	return toResponse(record), nil
}

func (s *AttendanceServiceImpl) Get(ctx context.Context, id string, companyID string) (attendance.Response, error) {
	record, err := s.attendanceRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return attendance.Response{}, err
	}
	return toResponse(record), nil
}

func (s *AttendanceServiceImpl) List(ctx context.Context, filter attendance.Filter, companyID string) (attendance.ListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	records, total, err := s.attendanceRepo.List(ctx, filter, companyID)
	if err != nil {
		return attendance.ListResponse{}, err
	}

	responses := make([]attendance.Response, 0, len(records))
	for _, r := range records {
		responses = append(responses, toResponse(r))
	}

	return attendance.ListResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Records:    responses,
	}, nil
}

// checkGeofence rejects a punch outside the configured office radius. A
// tenant without office coordinates skips the check entirely; a tenant with
// coordinates requires the punch to carry them.
func (s *AttendanceServiceImpl) checkGeofence(pol policy.Policy, lat, lon *float64) (geo.Result, error) {
	if pol.OfficeLatitude == nil || pol.OfficeLongitude == nil {
		return geo.Result{Accepted: true, Skipped: true}, nil
	}
	if lat == nil || lon == nil {
		return geo.Result{}, attendance.ErrOutsideGeofence
	}

	office := &geo.Coordinate{Latitude: *pol.OfficeLatitude, Longitude: *pol.OfficeLongitude}
	result := geo.Validate(geo.Coordinate{Latitude: *lat, Longitude: *lon}, office, pol.OfficeRadiusMeters)
	if !result.Accepted {
		return result, attendance.ErrOutsideGeofence
	}
	return result, nil
}

// resolveAttendanceDate maps a punch-in instant to its logical working day.
// For overnight shifts a punch after midnight but within the night window
// belongs to yesterday's record; between the window end and today's shift
// start no record may be opened.
func resolveAttendanceDate(pol policy.Policy, now time.Time, loc *time.Location) (time.Time, error) {
	today := midnightOf(now, loc)
	if !pol.IsOvernight() {
		return today, nil
	}

	shiftStart := pol.ShiftStartOn(today, loc)
	if !now.Before(shiftStart) {
		return today, nil
	}

	windowEnd := today.Add(time.Duration(pol.NightPunchInWindowHours) * time.Hour)
	if now.Before(windowEnd) {
		return today.AddDate(0, 0, -1), nil
	}
	return time.Time{}, attendance.ErrOutsideNightWindow
}

func midnightOf(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *AttendanceServiceImpl) recordAudit(ctx context.Context, actorID, action, entityID string, metadata map[string]any) {
	if err := s.auditLog.Record(ctx, actorID, action, audit.EntityAttendance, entityID, metadata); err != nil {
		slog.Warn("failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

func (s *AttendanceServiceImpl) notify(ctx context.Context, userID, title, message string) {
	if err := s.notifier.Notify(ctx, userID, title, message, notification.ChannelPush); err != nil {
		slog.Warn("failed to send notification", "user_id", userID, "title", title, "error", err)
	}
}

func toResponse(r attendance.Record) attendance.Response {
	resp := attendance.Response{
		ID:                 r.ID,
		EmployeeID:         r.EmployeeID,
		EmployeeName:       r.EmployeeName,
		Date:               r.AttendanceDate.Format("2006-01-02"),
		Status:             string(r.Status),
		WorkingHours:       r.WorkingHours,
		OvertimeHours:      r.OvertimeHours,
		IsLate:             r.IsLate,
		LateMinutes:        r.LateMinutes,
		AutoPunchedOut:     r.AutoPunchedOut,
		WorkingHoursCapped: r.WorkingHoursCapped,
		RequiresApproval:   r.RequiresApproval,
		ApprovalReason:     r.ApprovalReason,
		RejectionReason:    r.RejectionReason,
	}
	if r.PunchInAt != nil {
		v := r.PunchInAt.Format(time.RFC3339)
		resp.PunchInAt = &v
	}
	if r.PunchOutAt != nil {
		v := r.PunchOutAt.Format(time.RFC3339)
		resp.PunchOutAt = &v
	}
	return resp
}
