package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/policy"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

type policyRepository struct {
	db *database.DB
}

func NewPolicyRepository(db *database.DB) policy.Repository {
	return &policyRepository{db: db}
}

// GetByCompanyID implements policy.Repository.
func (r *policyRepository) GetByCompanyID(ctx context.Context, companyID string) (policy.Policy, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT company_id, shift_start, shift_end, timezone,
			   grace_period_minutes, min_working_hours, max_working_hours,
			   auto_punch_out_buffer_minutes, overtime_threshold_hours,
			   night_punch_in_window_hours, half_day_threshold_hours,
			   office_latitude, office_longitude, office_radius_meters,
			   enable_late_penalty, late_penalty_per_minute,
			   enable_absent_penalty, absent_penalty_per_day,
			   pf_percentage, esi_percentage,
			   created_at, updated_at
		FROM attendance_policies
		WHERE company_id = $1
	`

	var p policy.Policy
	err := q.QueryRow(ctx, query, companyID).Scan(
		&p.CompanyID, &p.ShiftStart, &p.ShiftEnd, &p.Timezone,
		&p.GracePeriodMinutes, &p.MinWorkingHours, &p.MaxWorkingHours,
		&p.AutoPunchOutBufferMin, &p.OvertimeThresholdHours,
		&p.NightPunchInWindowHours, &p.HalfDayThresholdHours,
		&p.OfficeLatitude, &p.OfficeLongitude, &p.OfficeRadiusMeters,
		&p.EnableLatePenalty, &p.LatePenaltyPerMinute,
		&p.EnableAbsentPenalty, &p.AbsentPenaltyPerDay,
		&p.PFPercentage, &p.ESIPercentage,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return policy.Policy{}, policy.ErrPolicyNotConfigured
		}
		return policy.Policy{}, fmt.Errorf("failed to get attendance policy: %w", err)
	}

	return p, nil
}
