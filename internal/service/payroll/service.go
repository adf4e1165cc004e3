package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/audit"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/notification"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
	"github.com/attendly/attendly-backend-go/internal/domain/salary"
)

// SalaryServiceImpl implements salary.SalaryService.
type SalaryServiceImpl struct {
	salaryRepo   salary.SalaryRepository
	employeeRepo employee.EmployeeRepository
	aggregator   *Aggregator
	policies     policy.Store
	auditLog     audit.Logger
	notifier     notification.Notifier

	now func() time.Time
}

func NewSalaryService(
	salaryRepo salary.SalaryRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	policies policy.Store,
	auditLog audit.Logger,
	notifier notification.Notifier,
) *SalaryServiceImpl {
	return &SalaryServiceImpl{
		salaryRepo:   salaryRepo,
		employeeRepo: employeeRepo,
		aggregator:   NewAggregator(attendanceRepo),
		policies:     policies,
		auditLog:     auditLog,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *SalaryServiceImpl) Generate(ctx context.Context, req salary.GenerateRequest) ([]salary.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	pol, err := s.policies.Get(ctx, req.CompanyID)
	if err != nil {
		return nil, err
	}

	var employees []employee.Employee
	if len(req.EmployeeIDs) > 0 {
		for _, id := range req.EmployeeIDs {
			emp, err := s.employeeRepo.GetByID(ctx, id, req.CompanyID)
			if err != nil {
				return nil, err
			}
			employees = append(employees, emp)
		}
	} else {
		employees, err = s.employeeRepo.GetActiveByCompanyID(ctx, req.CompanyID)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	responses := make([]salary.Response, 0, len(employees))
	for _, emp := range employees {
		// Existing records are left alone: regeneration goes through
		// Recalculate so approvals are never silently overwritten.
		_, err := s.salaryRepo.GetByEmployeePeriod(ctx, emp.ID, req.CompanyID, req.Month, req.Year)
		if err == nil {
			continue
		}
		if !errors.Is(err, salary.ErrRecordNotFound) {
			return nil, err
		}

		record, err := s.buildRecord(ctx, emp, pol, req.Month, req.Year, now)
		if err != nil {
			return nil, err
		}

		created, err := s.salaryRepo.CreateWithBreakdowns(ctx, record, record.Breakdowns)
		if err != nil {
			if errors.Is(err, salary.ErrRecordExists) {
				continue
			}
			return nil, fmt.Errorf("failed to create salary record for employee %s: %w", emp.ID, err)
		}

		s.recordAudit(ctx, "system", "salary.generate", created.ID, map[string]any{
			"employee_id": emp.ID,
			"month":       req.Month,
			"year":        req.Year,
		})
		responses = append(responses, toResponse(created))
	}

	return responses, nil
}

func (s *SalaryServiceImpl) Get(ctx context.Context, id string, companyID string) (salary.Response, error) {
	record, err := s.salaryRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return salary.Response{}, err
	}
	return toResponse(record), nil
}

func (s *SalaryServiceImpl) List(ctx context.Context, companyID string, month, year, page, limit int) (salary.ListResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	records, total, err := s.salaryRepo.List(ctx, companyID, month, year, page, limit)
	if err != nil {
		return salary.ListResponse{}, err
	}

	responses := make([]salary.Response, 0, len(records))
	for _, r := range records {
		responses = append(responses, toResponse(r))
	}

	return salary.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Records:    responses,
	}, nil
}

func (s *SalaryServiceImpl) Approve(ctx context.Context, id string, companyID string, actor string) (salary.Response, error) {
	record, err := s.salaryRepo.Approve(ctx, id, companyID, actor, s.now())
	if err != nil {
		return salary.Response{}, err
	}

	s.recordAudit(ctx, actor, "salary.approve", record.ID, nil)
	s.notify(ctx, record.EmployeeID, "Salary approved",
		fmt.Sprintf("Your salary for %d-%02d was approved.", record.Year, record.Month))

	return toResponse(record), nil
}

func (s *SalaryServiceImpl) Reject(ctx context.Context, req salary.RejectRequest) (salary.Response, error) {
	if err := req.Validate(); err != nil {
		return salary.Response{}, err
	}

	record, err := s.salaryRepo.Reject(ctx, req.SalaryID, req.CompanyID, req.Actor, req.Reason, s.now())
	if err != nil {
		return salary.Response{}, err
	}

	s.recordAudit(ctx, req.Actor, "salary.reject", record.ID, map[string]any{"reason": req.Reason})
	return toResponse(record), nil
}

func (s *SalaryServiceImpl) MarkPaid(ctx context.Context, id string, companyID string, paidAt *time.Time) (salary.Response, error) {
	at := s.now()
	if paidAt != nil {
		at = *paidAt
	}

	record, err := s.salaryRepo.MarkPaid(ctx, id, companyID, at)
	if err != nil {
		return salary.Response{}, err
	}

	s.recordAudit(ctx, "system", "salary.mark_paid", record.ID, map[string]any{
		"paid_at": at.Format(time.RFC3339),
	})
	s.notify(ctx, record.EmployeeID, "Salary paid",
		fmt.Sprintf("Your salary for %d-%02d has been paid.", record.Year, record.Month))

	return toResponse(record), nil
}

func (s *SalaryServiceImpl) Recalculate(ctx context.Context, id string, companyID string, actor string) (salary.Response, error) {
	record, err := s.salaryRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return salary.Response{}, err
	}
	if record.Status == salary.StatusPaid || record.Status == salary.StatusApproved {
		return salary.Response{}, salary.ErrRecordLocked
	}

	emp, err := s.employeeRepo.GetByID(ctx, record.EmployeeID, companyID)
	if err != nil {
		return salary.Response{}, err
	}
	pol, err := s.policies.Get(ctx, companyID)
	if err != nil {
		return salary.Response{}, err
	}

	summary, err := s.aggregator.Aggregate(ctx, emp.ID, companyID, record.Month, record.Year, pol, s.now())
	if err != nil {
		return salary.Response{}, err
	}
	computed, err := Calculate(emp, pol, summary, record.Month, record.Year)
	if err != nil {
		return salary.Response{}, err
	}
	for i := range computed.Lines {
		computed.Lines[i].SalaryID = record.ID
	}

	// Manual lines survive: totals are re-derived over the regenerated
	// computed lines plus the existing manual ones.
	var manual []salary.Breakdown
	for _, l := range record.Breakdowns {
		if !l.Type.IsComputed() {
			manual = append(manual, l)
		}
	}
	allLines := append(append([]salary.Breakdown{}, computed.Lines...), manual...)
	gross, net := salary.Totals(allLines)

	applySummary(&record, summary, computed)
	record.GrossAmount = gross
	record.NetAmount = net
	record.Status = salary.StatusPending

	updated, err := s.salaryRepo.ReplaceComputed(ctx, record, computed.Lines)
	if err != nil {
		return salary.Response{}, err
	}

	s.recordAudit(ctx, actor, "salary.recalculate", record.ID, map[string]any{
		"month": record.Month,
		"year":  record.Year,
	})
	return toResponse(updated), nil
}

func (s *SalaryServiceImpl) AddManualLine(ctx context.Context, req salary.AddLineRequest) (salary.Response, error) {
	if err := req.Validate(); err != nil {
		return salary.Response{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	amount := req.Amount.Abs().Round(2)
	lineType := salary.BreakdownType(req.Type)
	// PAYMENT and ADVANCE sit on the earning side; DEDUCTION and RECOVERY
	// reduce net.
	if lineType == salary.BreakdownDeduction || lineType == salary.BreakdownRecovery {
		amount = amount.Neg()
	}

	line := salary.Breakdown{
		ID:          uuid.New().String(),
		SalaryID:    req.SalaryID,
		Type:        lineType,
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	}

	record, err := s.salaryRepo.AddManualLine(ctx, req.SalaryID, req.CompanyID, line)
	if err != nil {
		return salary.Response{}, err
	}

	s.recordAudit(ctx, "system", "salary.add_line", record.ID, map[string]any{
		"type":   req.Type,
		"amount": amount.String(),
	})
	return toResponse(record), nil
}

// buildRecord assembles a fresh salary record with its computed breakdown
// lines for one employee.
func (s *SalaryServiceImpl) buildRecord(ctx context.Context, emp employee.Employee, pol policy.Policy, month, year int, now time.Time) (salary.Record, error) {
	summary, err := s.aggregator.Aggregate(ctx, emp.ID, emp.CompanyID, month, year, pol, now)
	if err != nil {
		return salary.Record{}, err
	}

	computed, err := Calculate(emp, pol, summary, month, year)
	if err != nil {
		return salary.Record{}, err
	}

	record := salary.Record{
		ID:         uuid.New().String(),
		EmployeeID: emp.ID,
		CompanyID:  emp.CompanyID,
		Month:      month,
		Year:       year,
		Status:     salary.StatusPending,
	}
	for i := range computed.Lines {
		computed.Lines[i].SalaryID = record.ID
	}
	applySummary(&record, summary, computed)

	gross, net := salary.Totals(computed.Lines)
	record.GrossAmount = gross
	record.NetAmount = net
	record.Breakdowns = computed.Lines

	return record, nil
}

func applySummary(record *salary.Record, summary MonthlySummary, computed Computed) {
	record.TotalWorkingDays = summary.FullDays
	record.HalfDays = summary.HalfDays
	record.AbsentDays = summary.AbsentDays
	record.LateMinutes = summary.LateMinutes
	record.OvertimeHours = summary.OvertimeHours
	record.BaseAmount = computed.BaseAmount
	record.OvertimeAmount = computed.OvertimeAmount
	record.PenaltyAmount = computed.PenaltyAmount
	record.Deductions = computed.Deductions
}

func (s *SalaryServiceImpl) recordAudit(ctx context.Context, actorID, action, entityID string, metadata map[string]any) {
	if err := s.auditLog.Record(ctx, actorID, action, audit.EntitySalary, entityID, metadata); err != nil {
		slog.Warn("failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

func (s *SalaryServiceImpl) notify(ctx context.Context, userID, title, message string) {
	if err := s.notifier.Notify(ctx, userID, title, message, notification.ChannelPush); err != nil {
		slog.Warn("failed to send notification", "user_id", userID, "title", title, "error", err)
	}
}

func toResponse(r salary.Record) salary.Response {
	resp := salary.Response{
		ID:               r.ID,
		EmployeeID:       r.EmployeeID,
		EmployeeName:     r.EmployeeName,
		Month:            r.Month,
		Year:             r.Year,
		TotalWorkingDays: r.TotalWorkingDays,
		HalfDays:         r.HalfDays,
		AbsentDays:       r.AbsentDays,
		LateMinutes:      r.LateMinutes,
		OvertimeHours:    r.OvertimeHours,
		BaseAmount:       r.BaseAmount,
		OvertimeAmount:   r.OvertimeAmount,
		PenaltyAmount:    r.PenaltyAmount,
		Deductions:       r.Deductions,
		GrossAmount:      r.GrossAmount,
		NetAmount:        r.NetAmount,
		Status:           string(r.Status),
		RejectionReason:  r.RejectionReason,
	}
	if r.PaidAt != nil {
		v := r.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &v
	}
	if r.LockedAt != nil {
		v := r.LockedAt.Format(time.RFC3339)
		resp.LockedAt = &v
	}
	for _, b := range r.Breakdowns {
		resp.Breakdowns = append(resp.Breakdowns, salary.BreakdownResponse{
			ID:          b.ID,
			Type:        string(b.Type),
			Description: b.Description,
			Amount:      b.Amount,
			Date:        b.Date.Format("2006-01-02"),
		})
	}
	return resp
}
