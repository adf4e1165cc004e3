package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/company"
	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
)

const (
	companyA = "11111111-1111-1111-1111-111111111111"
	companyB = "44444444-4444-4444-4444-444444444444"
)

type fakeCompanyRepo struct {
	ids []string
}

func (f *fakeCompanyRepo) GetByID(ctx context.Context, id string) (company.Company, error) {
	for _, cid := range f.ids {
		if cid == id {
			return company.Company{ID: cid, IsActive: true}, nil
		}
	}
	return company.Company{}, company.ErrCompanyNotFound
}

func (f *fakeCompanyRepo) ListActiveIDs(ctx context.Context) ([]string, error) {
	return f.ids, nil
}

type fakeAttendanceRepo struct {
	records map[string]*attendance.Record
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: make(map[string]*attendance.Record)}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	stored := record
	f.records[record.ID] = &stored
	return stored, nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string, companyID string) (attendance.Record, error) {
	r, ok := f.records[id]
	if !ok {
		return attendance.Record{}, attendance.ErrRecordNotFound
	}
	return *r, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Record, error) {
	for _, r := range f.records {
		if r.EmployeeID == employeeID && r.CompanyID == companyID && sameDay(r.AttendanceDate, date) {
			copy := *r
			return &copy, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) GetLatestOpen(ctx context.Context, employeeID string, companyID string, dates []time.Time) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrNoOpenPunch
}

func (f *fakeAttendanceRepo) CompletePunchOut(ctx context.Context, record attendance.Record) (bool, error) {
	return false, nil
}

func (f *fakeAttendanceRepo) AutoClose(ctx context.Context, record attendance.Record) (bool, error) {
	stored, ok := f.records[record.ID]
	if !ok || stored.AutoPunchedOut || !stored.IsOpen() {
		return false, nil
	}
	*stored = record
	return true, nil
}

func (f *fakeAttendanceRepo) SetStatus(ctx context.Context, id string, companyID string, status attendance.Status, actor string, reason *string, at time.Time) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	return nil
}

func (f *fakeAttendanceRepo) CreateIfMissing(ctx context.Context, record attendance.Record) (bool, error) {
	for _, r := range f.records {
		if r.EmployeeID == record.EmployeeID && r.CompanyID == record.CompanyID && sameDay(r.AttendanceDate, record.AttendanceDate) {
			return false, nil
		}
	}
	stored := record
	f.records[record.ID] = &stored
	return true, nil
}

func (f *fakeAttendanceRepo) ListOpenForDates(ctx context.Context, companyID string, dates []time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.CompanyID != companyID || !r.IsOpen() || r.AutoPunchedOut {
			continue
		}
		for _, d := range dates {
			if sameDay(r.AttendanceDate, d) {
				out = append(out, *r)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]attendance.Record, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.Record, int64, error) {
	return nil, 0, nil
}

type fakeEmployeeRepo struct {
	employees []employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	for _, e := range f.employees {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) GetActiveTrackedByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, e := range f.employees {
		if e.CompanyID == companyID && e.AttendanceTracked {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakePolicyStore struct {
	policies map[string]policy.Policy
}

func (f *fakePolicyStore) Get(ctx context.Context, companyID string) (policy.Policy, error) {
	p, ok := f.policies[companyID]
	if !ok {
		return policy.Policy{}, policy.ErrPolicyNotConfigured
	}
	return p, nil
}

type noopAudit struct{}

func (noopAudit) Record(ctx context.Context, actorID, action, entityType, entityID string, metadata map[string]any) error {
	return nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(ctx context.Context, userID, title, message, channel string) error {
	return nil
}

func dayPolicy(companyID string) policy.Policy {
	return policy.Policy{
		CompanyID:             companyID,
		ShiftStart:            "09:00",
		ShiftEnd:              "18:00",
		Timezone:              "UTC",
		MaxWorkingHours:       12,
		AutoPunchOutBufferMin: 120,
	}
}

func openRecord(companyID, employeeID string, day time.Time, punchIn time.Time) attendance.Record {
	return attendance.Record{
		ID:             uuid.New().String(),
		EmployeeID:     employeeID,
		CompanyID:      companyID,
		AttendanceDate: day,
		PunchInAt:      &punchIn,
		Status:         attendance.StatusPending,
	}
}

func newRecoveryJobs(attRepo *fakeAttendanceRepo, empRepo *fakeEmployeeRepo, policies map[string]policy.Policy, companies ...string) *RecoveryJobs {
	return NewRecoveryJobs(
		&fakeCompanyRepo{ids: companies},
		empRepo,
		attRepo,
		&fakePolicyStore{policies: policies},
		noopAudit{},
		noopNotifier{},
		4,
	)
}

func TestAutoPunchOut_ClosesPastDeadline(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punchIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := openRecord(companyA, "emp-1", day, punchIn)
	attRepo.records[rec.ID] = &rec

	jobs := newRecoveryJobs(attRepo, &fakeEmployeeRepo{}, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA)

	// Shift ends 18:00, buffer 120 minutes: deadline is 20:00
	now := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC)
	result, err := jobs.RunAutoPunchOut(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Empty(t, result.Errors)

	closed := attRepo.records[rec.ID]
	require.NotNil(t, closed.PunchOutAt)
	assert.Equal(t, 20, closed.PunchOutAt.Hour(), "punch-out is credited at the deadline, not at job run time")
	assert.Equal(t, 11.0, closed.WorkingHours, "credited span runs to shift end plus buffer")
	assert.Equal(t, 0.0, closed.OvertimeHours, "auto-closed days never earn overtime")
	require.NotNil(t, closed.AutoPunchOutAt)
	assert.True(t, closed.AutoPunchOutAt.Equal(*closed.PunchOutAt))
	assert.True(t, closed.AutoPunchedOut)
	assert.True(t, closed.RequiresApproval)
	assert.Equal(t, attendance.StatusPending, closed.Status)
}

func TestAutoPunchOut_SkipsBeforeDeadline(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punchIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := openRecord(companyA, "emp-1", day, punchIn)
	attRepo.records[rec.ID] = &rec

	jobs := newRecoveryJobs(attRepo, &fakeEmployeeRepo{}, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA)

	now := time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC)
	result, err := jobs.RunAutoPunchOut(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)
	assert.True(t, attRepo.records[rec.ID].IsOpen())
}

func TestAutoPunchOut_SecondRunIsNoop(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punchIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := openRecord(companyA, "emp-1", day, punchIn)
	attRepo.records[rec.ID] = &rec

	jobs := newRecoveryJobs(attRepo, &fakeEmployeeRepo{}, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA)

	now := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC)
	first, err := jobs.RunAutoPunchOut(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := jobs.RunAutoPunchOut(context.Background(), now.Add(10*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed, "already closed records must not be reprocessed")
}

func TestAutoPunchOut_TenantIsolation(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punchIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := openRecord(companyA, "emp-1", day, punchIn)
	attRepo.records[rec.ID] = &rec

	// companyB has no policy configured
	jobs := newRecoveryJobs(attRepo, &fakeEmployeeRepo{}, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA, companyB)

	now := time.Date(2026, 3, 10, 20, 30, 0, 0, time.UTC)
	result, err := jobs.RunAutoPunchOut(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Processed, "healthy tenant must still be processed")
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], companyB)
}

func TestAutoPunchOut_CapsAtMaxHours(t *testing.T) {
	pol := dayPolicy(companyA)
	pol.ShiftStart = "06:00"
	pol.ShiftEnd = "19:00"
	pol.MaxWorkingHours = 12

	attRepo := newFakeAttendanceRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punchIn := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	rec := openRecord(companyA, "emp-1", day, punchIn)
	attRepo.records[rec.ID] = &rec

	jobs := newRecoveryJobs(attRepo, &fakeEmployeeRepo{}, map[string]policy.Policy{companyA: pol}, companyA)

	now := time.Date(2026, 3, 10, 22, 0, 0, 0, time.UTC)
	_, err := jobs.RunAutoPunchOut(context.Background(), now)
	require.NoError(t, err)

	closed := attRepo.records[rec.ID]
	assert.Equal(t, 12.0, closed.WorkingHours)
	assert.True(t, closed.WorkingHoursCapped)
}

func TestMarkAbsent_CreatesRecordsForTrackedEmployees(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "emp-1", CompanyID: companyA, AttendanceTracked: true},
		{ID: "emp-2", CompanyID: companyA, AttendanceTracked: true},
		{ID: "emp-3", CompanyID: companyA, AttendanceTracked: false},
	}}

	jobs := newRecoveryJobs(attRepo, empRepo, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA)

	now := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	result, err := jobs.RunMarkAbsent(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed, "untracked employees are skipped")

	yesterday := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	for _, id := range []string{"emp-1", "emp-2"} {
		rec, err := attRepo.GetByEmployeeAndDate(context.Background(), id, yesterday, companyA)
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, attendance.StatusAbsent, rec.Status)
	}
}

func TestMarkAbsent_SkipsEmployeesWithRecords(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	punchIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	rec := openRecord(companyA, "emp-1", day, punchIn)
	attRepo.records[rec.ID] = &rec

	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "emp-1", CompanyID: companyA, AttendanceTracked: true},
		{ID: "emp-2", CompanyID: companyA, AttendanceTracked: true},
	}}

	jobs := newRecoveryJobs(attRepo, empRepo, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA)

	now := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	result, err := jobs.RunMarkAbsent(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)

	// emp-1's punched record is untouched
	assert.Equal(t, attendance.StatusPending, attRepo.records[rec.ID].Status)
}

func TestMarkAbsent_Idempotent(t *testing.T) {
	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "emp-1", CompanyID: companyA, AttendanceTracked: true},
	}}

	jobs := newRecoveryJobs(attRepo, empRepo, map[string]policy.Policy{companyA: dayPolicy(companyA)}, companyA)

	now := time.Date(2026, 3, 11, 1, 0, 0, 0, time.UTC)
	first, err := jobs.RunMarkAbsent(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Processed)

	second, err := jobs.RunMarkAbsent(context.Background(), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, second.Processed)
}

func TestMarkAbsent_WaitsForShiftDeadline(t *testing.T) {
	// Overnight shift: yesterday's shift ends 06:00 today plus buffer
	pol := dayPolicy(companyA)
	pol.ShiftStart = "22:00"
	pol.ShiftEnd = "06:00"

	attRepo := newFakeAttendanceRepo()
	empRepo := &fakeEmployeeRepo{employees: []employee.Employee{
		{ID: "emp-1", CompanyID: companyA, AttendanceTracked: true},
	}}

	jobs := newRecoveryJobs(attRepo, empRepo, map[string]policy.Policy{companyA: pol}, companyA)

	// 07:00: yesterday's overnight shift deadline (08:00) has not passed
	early := time.Date(2026, 3, 11, 7, 0, 0, 0, time.UTC)
	result, err := jobs.RunMarkAbsent(context.Background(), early)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Processed)

	late := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	result, err = jobs.RunMarkAbsent(context.Background(), late)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
}
