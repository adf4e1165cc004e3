package correction

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/audit"
	"github.com/attendly/attendly-backend-go/internal/domain/correction"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/notification"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
)

// CorrectionServiceImpl implements correction.CorrectionService.
type CorrectionServiceImpl struct {
	correctionRepo correction.CorrectionRepository
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	policies       policy.Store
	auditLog       audit.Logger
	notifier       notification.Notifier

	now func() time.Time
}

func NewCorrectionService(
	correctionRepo correction.CorrectionRepository,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	policies policy.Store,
	auditLog audit.Logger,
	notifier notification.Notifier,
) *CorrectionServiceImpl {
	return &CorrectionServiceImpl{
		correctionRepo: correctionRepo,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		policies:       policies,
		auditLog:       auditLog,
		notifier:       notifier,
		now:            time.Now,
	}
}

func (s *CorrectionServiceImpl) Submit(ctx context.Context, req correction.SubmitRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	pol, err := s.policies.Get(ctx, req.CompanyID)
	if err != nil {
		return correction.Response{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, req.CompanyID); err != nil {
		return correction.Response{}, err
	}

	loc := pol.Location()
	date, _ := time.ParseInLocation("2006-01-02", req.Date, loc)
	requestedTime, err := time.Parse(time.RFC3339, req.RequestedTime)
	if err != nil {
		return correction.Response{}, fmt.Errorf("invalid requested_time: %w", err)
	}

	request := correction.Request{
		ID:            uuid.New().String(),
		EmployeeID:    req.EmployeeID,
		CompanyID:     req.CompanyID,
		AttendanceID:  req.AttendanceID,
		Date:          date,
		Type:          correction.Type(req.Type),
		RequestedTime: requestedTime.In(loc),
		Note:          req.Note,
		Status:        correction.StatusPending,
	}

	// Attach the day's record when the employee did not reference one.
	if request.AttendanceID == nil {
		existing, err := s.attendanceRepo.GetByEmployeeAndDate(ctx, req.EmployeeID, date, req.CompanyID)
		if err != nil {
			return correction.Response{}, err
		}
		if existing != nil {
			request.AttendanceID = &existing.ID
		}
	}

	request, err = s.correctionRepo.Create(ctx, request)
	if err != nil {
		return correction.Response{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	s.recordAudit(ctx, req.EmployeeID, "correction.submit", request.ID, map[string]any{
		"date": req.Date,
		"type": req.Type,
	})

	return toResponse(request), nil
}

func (s *CorrectionServiceImpl) Review(ctx context.Context, req correction.ReviewRequest) (correction.Response, error) {
	if err := req.Validate(); err != nil {
		return correction.Response{}, err
	}

	// MarkReviewed carries the PENDING guard, so two concurrent reviewers
	// cannot both win.
	request, err := s.correctionRepo.MarkReviewed(ctx, req.RequestID, req.CompanyID,
		correction.Status(req.Decision), req.Reviewer)
	if err != nil {
		return correction.Response{}, err
	}

	if request.Status == correction.StatusApproved {
		effective := request.RequestedTime
		if req.ApprovedTime != nil {
			t, err := time.Parse(time.RFC3339, *req.ApprovedTime)
			if err != nil {
				return correction.Response{}, fmt.Errorf("invalid approved_time: %w", err)
			}
			effective = t
		}
		if err := s.applyToAttendance(ctx, request, effective, req.Reviewer); err != nil {
			return correction.Response{}, err
		}
	}

	s.recordAudit(ctx, req.Reviewer, "correction.review", request.ID, map[string]any{
		"decision": req.Decision,
	})
	title := "Correction request approved"
	if request.Status == correction.StatusRejected {
		title = "Correction request rejected"
	}
	s.notify(ctx, request.EmployeeID, title,
		fmt.Sprintf("Your correction request for %s was %s.", request.Date.Format("2006-01-02"), request.Status))

	return toResponse(request), nil
}

func (s *CorrectionServiceImpl) ListPending(ctx context.Context, companyID string, page, limit int) (correction.ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	requests, total, err := s.correctionRepo.ListPending(ctx, companyID, page, limit)
	if err != nil {
		return correction.ListResponse{}, err
	}

	responses := make([]correction.Response, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, toResponse(r))
	}

	return correction.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Requests:   responses,
	}, nil
}

// applyToAttendance writes the approved punch time onto the day's attendance
// record, creating one when the employee never punched at all.
func (s *CorrectionServiceImpl) applyToAttendance(ctx context.Context, request correction.Request, effective time.Time, reviewer string) error {
	pol, err := s.policies.Get(ctx, request.CompanyID)
	if err != nil {
		return err
	}
	loc := pol.Location()
	effective = effective.In(loc)
	now := s.now()

	var record *attendance.Record
	if request.AttendanceID != nil {
		r, err := s.attendanceRepo.GetByID(ctx, *request.AttendanceID, request.CompanyID)
		if err != nil {
			return err
		}
		record = &r
	} else {
		record, err = s.attendanceRepo.GetByEmployeeAndDate(ctx, request.EmployeeID, request.Date, request.CompanyID)
		if err != nil {
			return err
		}
	}

	create := false
	if record == nil {
		create = true
		record = &attendance.Record{
			ID:             uuid.New().String(),
			EmployeeID:     request.EmployeeID,
			CompanyID:      request.CompanyID,
			AttendanceDate: request.Date,
		}
	}

	switch request.Type {
	case correction.TypeMissedPunchIn:
		record.PunchInAt = &effective
		shiftStart := pol.ShiftStartOn(record.AttendanceDate, loc)
		graceDeadline := shiftStart.Add(time.Duration(pol.GracePeriodMinutes) * time.Minute)
		record.IsLate = effective.After(graceDeadline)
		record.LateMinutes = 0
		if record.IsLate {
			record.LateMinutes = int(effective.Sub(shiftStart).Minutes())
		}
	case correction.TypeMissedPunchOut:
		record.PunchOutAt = &effective
		// A corrected punch-out supersedes the automatic one.
		record.AutoPunchedOut = false
		record.AutoPunchOutAt = nil
	}

	if record.PunchInAt != nil && record.PunchOutAt != nil {
		worked := record.PunchOutAt.Sub(*record.PunchInAt).Hours()
		if worked < 0 {
			worked = 0
		}
		record.WorkingHoursCapped = false
		if pol.MaxWorkingHours > 0 && worked > pol.MaxWorkingHours {
			worked = pol.MaxWorkingHours
			record.WorkingHoursCapped = true
		}
		record.WorkingHours = round2(worked)
		overtimeStart := pol.ShiftDuration().Hours() + pol.OvertimeThresholdHours
		record.OvertimeHours = round2(math.Max(0, record.WorkingHours-overtimeStart))
	}

	// The reviewer vouched for the corrected punches.
	record.Status = attendance.StatusApproved
	record.ApprovedBy = &reviewer
	record.ApprovedAt = &now
	record.RequiresApproval = false
	record.ApprovalReason = nil

	if create {
		if _, err := s.attendanceRepo.Create(ctx, *record); err != nil {
			return fmt.Errorf("failed to create corrected attendance record: %w", err)
		}
		return nil
	}
	if err := s.attendanceRepo.Update(ctx, *record); err != nil {
		return fmt.Errorf("failed to apply correction to attendance record: %w", err)
	}
	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func (s *CorrectionServiceImpl) recordAudit(ctx context.Context, actorID, action, entityID string, metadata map[string]any) {
	if err := s.auditLog.Record(ctx, actorID, action, audit.EntityCorrection, entityID, metadata); err != nil {
		slog.Warn("failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

func (s *CorrectionServiceImpl) notify(ctx context.Context, userID, title, message string) {
	if err := s.notifier.Notify(ctx, userID, title, message, notification.ChannelPush); err != nil {
		slog.Warn("failed to send notification", "user_id", userID, "title", title, "error", err)
	}
}

func toResponse(r correction.Request) correction.Response {
	resp := correction.Response{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		AttendanceID:  r.AttendanceID,
		Date:          r.Date.Format("2006-01-02"),
		Type:          string(r.Type),
		RequestedTime: r.RequestedTime.Format(time.RFC3339),
		Note:          r.Note,
		Status:        string(r.Status),
		ReviewedBy:    r.ReviewedBy,
	}
	if r.ReviewedAt != nil {
		v := r.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}
