package payroll

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/domain/policy"
)

const (
	testCompanyID  = "11111111-1111-1111-1111-111111111111"
	testEmployeeID = "22222222-2222-2222-2222-222222222222"
)

// fakeAttendanceRepo backs the aggregator and service tests. Only the range
// listing is exercised by this package.
type fakeAttendanceRepo struct {
	records []attendance.Record
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeAttendanceRepo) GetByID(ctx context.Context, id string, companyID string) (attendance.Record, error) {
	for _, r := range f.records {
		if r.ID == id && r.CompanyID == companyID {
			return r, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Record, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) GetLatestOpen(ctx context.Context, employeeID string, companyID string, dates []time.Time) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrNoOpenPunch
}

func (f *fakeAttendanceRepo) CompletePunchOut(ctx context.Context, record attendance.Record) (bool, error) {
	return false, nil
}

func (f *fakeAttendanceRepo) AutoClose(ctx context.Context, record attendance.Record) (bool, error) {
	return false, nil
}

func (f *fakeAttendanceRepo) SetStatus(ctx context.Context, id string, companyID string, status attendance.Status, actor string, reason *string, at time.Time) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, record attendance.Record) error {
	return nil
}

func (f *fakeAttendanceRepo) CreateIfMissing(ctx context.Context, record attendance.Record) (bool, error) {
	return false, nil
}

func (f *fakeAttendanceRepo) ListOpenForDates(ctx context.Context, companyID string, dates []time.Time) ([]attendance.Record, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, r := range f.records {
		if r.EmployeeID != employeeID || r.CompanyID != companyID {
			continue
		}
		if r.AttendanceDate.Before(from) || r.AttendanceDate.After(to) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeAttendanceRepo) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.Record, int64, error) {
	return nil, 0, nil
}

func aggPolicy() policy.Policy {
	return policy.Policy{
		CompanyID:             testCompanyID,
		ShiftStart:            "09:00",
		ShiftEnd:              "18:00",
		Timezone:              "UTC",
		MinWorkingHours:       8,
		HalfDayThresholdHours: 4,
	}
}

func dayRecord(day int, status attendance.Status, hours float64) attendance.Record {
	return attendance.Record{
		ID:             uuid.New().String(),
		EmployeeID:     testEmployeeID,
		CompanyID:      testCompanyID,
		AttendanceDate: time.Date(2026, 4, day, 0, 0, 0, 0, time.UTC),
		Status:         status,
		WorkingHours:   hours,
	}
}

func TestAggregate_Classification(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	repo.records = append(repo.records,
		dayRecord(1, attendance.StatusApproved, 9),   // full
		dayRecord(2, attendance.StatusApproved, 3.5), // half
		dayRecord(3, attendance.StatusApproved, 2),   // half
		dayRecord(4, attendance.StatusAbsent, 0),     // absent
		dayRecord(5, attendance.StatusLeave, 0),      // leave
		dayRecord(6, attendance.StatusPending, 8),    // pending
		dayRecord(7, attendance.StatusRejected, 8),   // rejected counts absent
	)

	agg := NewAggregator(repo)
	// Evaluate the first 7 days: "today" is April 8
	now := time.Date(2026, 4, 8, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 4, 2026, aggPolicy(), now)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.FullDays)
	assert.Equal(t, 2, summary.HalfDays)
	assert.Equal(t, 2, summary.AbsentDays)
	assert.Equal(t, 1, summary.LeaveDays)
	assert.Equal(t, 1, summary.PendingDays)
	assert.Equal(t, 7, summary.EvaluatedDays())
	assert.Len(t, summary.Days, 7)
}

func TestAggregate_EveryDayClassifiedOnce(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	for day := 1; day <= 30; day++ {
		var status attendance.Status
		switch day % 5 {
		case 0:
			status = attendance.StatusAbsent
		case 1:
			status = attendance.StatusLeave
		case 2:
			status = attendance.StatusPending
		default:
			status = attendance.StatusApproved
		}
		repo.records = append(repo.records, dayRecord(day, status, 9))
	}

	agg := NewAggregator(repo)
	now := time.Date(2026, 5, 3, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 4, 2026, aggPolicy(), now)
	require.NoError(t, err)

	assert.Equal(t, 30, summary.EvaluatedDays())
}

func TestAggregate_MissingDaysWarnWithoutClassifying(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	repo.records = append(repo.records,
		dayRecord(1, attendance.StatusApproved, 9),
		dayRecord(3, attendance.StatusApproved, 9),
	)

	agg := NewAggregator(repo)
	now := time.Date(2026, 4, 4, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 4, 2026, aggPolicy(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.FullDays)
	assert.Equal(t, 0, summary.AbsentDays, "a day with no record is a data gap, not an absence")
	assert.Equal(t, 2, summary.EvaluatedDays())
	require.Len(t, summary.Warnings, 1)
	assert.Contains(t, summary.Warnings[0], "2026-04-02")
}

func TestAggregate_SparseRecordsOnlyCountRecords(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	repo.records = append(repo.records,
		dayRecord(2, attendance.StatusApproved, 9),
		dayRecord(7, attendance.StatusApproved, 9),
	)

	agg := NewAggregator(repo)
	// Ten evaluated days, only two of them with records
	now := time.Date(2026, 4, 11, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 4, 2026, aggPolicy(), now)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.EvaluatedDays())
	assert.Equal(t, 0, summary.AbsentDays)
	assert.Len(t, summary.Warnings, 8)
	assert.Len(t, summary.Days, 2)
}

func TestAggregate_TodayAndFutureNotEvaluated(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	repo.records = append(repo.records, dayRecord(15, attendance.StatusApproved, 9))

	agg := NewAggregator(repo)
	// Mid-month run: only April 1-14 are evaluated
	now := time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 4, 2026, aggPolicy(), now)
	require.NoError(t, err)

	assert.Equal(t, 0, summary.EvaluatedDays())
	assert.Equal(t, 0, summary.FullDays, "today's record must not count yet")
	assert.Len(t, summary.Warnings, 14)
}

func TestAggregate_SumsApprovedMetricsOnly(t *testing.T) {
	repo := &fakeAttendanceRepo{}

	approved := dayRecord(1, attendance.StatusApproved, 9)
	approved.LateMinutes = 20
	approved.OvertimeHours = 1.5
	pending := dayRecord(2, attendance.StatusPending, 9)
	pending.LateMinutes = 40
	pending.OvertimeHours = 2
	repo.records = append(repo.records, approved, pending)

	agg := NewAggregator(repo)
	now := time.Date(2026, 4, 3, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 4, 2026, aggPolicy(), now)
	require.NoError(t, err)

	assert.Equal(t, 20, summary.LateMinutes)
	assert.Equal(t, 1.5, summary.OvertimeHours)
	assert.Equal(t, 9.0, summary.ApprovedWorkingHours)
}

func TestAggregate_FutureMonthIsEmpty(t *testing.T) {
	agg := NewAggregator(&fakeAttendanceRepo{})
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	summary, err := agg.Aggregate(context.Background(), testEmployeeID, testCompanyID, 5, 2026, aggPolicy(), now)
	require.NoError(t, err)
	assert.Equal(t, 0, summary.EvaluatedDays())
}
