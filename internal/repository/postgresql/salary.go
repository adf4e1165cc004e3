package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/attendly/attendly-backend-go/internal/domain/salary"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

type salaryRepository struct {
	db *database.DB
}

func NewSalaryRepository(db *database.DB) salary.SalaryRepository {
	return &salaryRepository{db: db}
}

const salaryColumns = `
	id, employee_id, company_id, month, year,
	total_working_days, half_days, absent_days, late_minutes, overtime_hours,
	base_amount, overtime_amount, penalty_amount, deductions,
	gross_amount, net_amount, status,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	paid_at, locked_at, created_at, updated_at
`

func scanSalary(row pgx.Row) (salary.Record, error) {
	var r salary.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.CompanyID, &r.Month, &r.Year,
		&r.TotalWorkingDays, &r.HalfDays, &r.AbsentDays, &r.LateMinutes, &r.OvertimeHours,
		&r.BaseAmount, &r.OvertimeAmount, &r.PenaltyAmount, &r.Deductions,
		&r.GrossAmount, &r.NetAmount, &r.Status,
		&r.ApprovedBy, &r.ApprovedAt, &r.RejectedBy, &r.RejectedAt, &r.RejectionReason,
		&r.PaidAt, &r.LockedAt, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// CreateWithBreakdowns implements salary.SalaryRepository.
func (s *salaryRepository) CreateWithBreakdowns(ctx context.Context, record salary.Record, lines []salary.Breakdown) (salary.Record, error) {
	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		query := `
			INSERT INTO salary_records (
				id, employee_id, company_id, month, year,
				total_working_days, half_days, absent_days, late_minutes, overtime_hours,
				base_amount, overtime_amount, penalty_amount, deductions,
				gross_amount, net_amount, status
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				$11, $12, $13, $14, $15, $16, $17
			) RETURNING created_at, updated_at
		`

		err := q.QueryRow(ctx, query,
			record.ID, record.EmployeeID, record.CompanyID, record.Month, record.Year,
			record.TotalWorkingDays, record.HalfDays, record.AbsentDays, record.LateMinutes, record.OvertimeHours,
			record.BaseAmount, record.OvertimeAmount, record.PenaltyAmount, record.Deductions,
			record.GrossAmount, record.NetAmount, record.Status,
		).Scan(&record.CreatedAt, &record.UpdatedAt)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
				return salary.ErrRecordExists
			}
			return fmt.Errorf("failed to create salary record: %w", err)
		}

		return s.insertBreakdowns(ctx, record.ID, lines)
	})
	if err != nil {
		return salary.Record{}, err
	}

	record.Breakdowns = lines
	return record, nil
}

// GetByID implements salary.SalaryRepository.
func (s *salaryRepository) GetByID(ctx context.Context, id string, companyID string) (salary.Record, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + salaryColumns + `
		FROM salary_records
		WHERE id = $1
		  AND company_id = $2
	`

	record, err := scanSalary(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Record{}, salary.ErrRecordNotFound
		}
		return salary.Record{}, fmt.Errorf("failed to get salary record: %w", err)
	}

	record.Breakdowns, err = s.loadBreakdowns(ctx, record.ID)
	if err != nil {
		return salary.Record{}, err
	}

	return record, nil
}

// GetByEmployeePeriod implements salary.SalaryRepository.
func (s *salaryRepository) GetByEmployeePeriod(ctx context.Context, employeeID string, companyID string, month, year int) (salary.Record, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT ` + salaryColumns + `
		FROM salary_records
		WHERE employee_id = $1
		  AND company_id = $2
		  AND month = $3
		  AND year = $4
	`

	record, err := scanSalary(q.QueryRow(ctx, query, employeeID, companyID, month, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return salary.Record{}, salary.ErrRecordNotFound
		}
		return salary.Record{}, fmt.Errorf("failed to get salary record: %w", err)
	}

	return record, nil
}

// List implements salary.SalaryRepository.
func (s *salaryRepository) List(ctx context.Context, companyID string, month, year int, page, limit int) ([]salary.Record, int64, error) {
	q := GetQuerier(ctx, s.db)

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM salary_records
		WHERE company_id = $1
		  AND month = $2
		  AND year = $3
	`
	if err := q.QueryRow(ctx, countQuery, companyID, month, year).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary records: %w", err)
	}

	query := `
		SELECT sr.id, sr.employee_id, sr.company_id, sr.month, sr.year,
			   sr.total_working_days, sr.half_days, sr.absent_days, sr.late_minutes, sr.overtime_hours,
			   sr.base_amount, sr.overtime_amount, sr.penalty_amount, sr.deductions,
			   sr.gross_amount, sr.net_amount, sr.status,
			   sr.approved_by, sr.approved_at, sr.rejected_by, sr.rejected_at, sr.rejection_reason,
			   sr.paid_at, sr.locked_at, sr.created_at, sr.updated_at,
			   e.full_name
		FROM salary_records sr
		JOIN employees e ON e.id = sr.employee_id
		WHERE sr.company_id = $1
		  AND sr.month = $2
		  AND sr.year = $3
		ORDER BY e.full_name
		LIMIT $4 OFFSET $5
	`

	rows, err := q.Query(ctx, query, companyID, month, year, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary records: %w", err)
	}
	defer rows.Close()

	var records []salary.Record
	for rows.Next() {
		var r salary.Record
		err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.CompanyID, &r.Month, &r.Year,
			&r.TotalWorkingDays, &r.HalfDays, &r.AbsentDays, &r.LateMinutes, &r.OvertimeHours,
			&r.BaseAmount, &r.OvertimeAmount, &r.PenaltyAmount, &r.Deductions,
			&r.GrossAmount, &r.NetAmount, &r.Status,
			&r.ApprovedBy, &r.ApprovedAt, &r.RejectedBy, &r.RejectedAt, &r.RejectionReason,
			&r.PaidAt, &r.LockedAt, &r.CreatedAt, &r.UpdatedAt,
			&r.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salary records: %w", err)
	}

	return records, total, nil
}

// Approve implements salary.SalaryRepository.
func (s *salaryRepository) Approve(ctx context.Context, id string, companyID string, actor string, at time.Time) (salary.Record, error) {
	query := `
		UPDATE salary_records
		SET status = 'APPROVED',
			approved_by = $1,
			approved_at = $2,
			locked_at = $2,
			updated_at = NOW()
		WHERE id = $3
		  AND company_id = $4
		  AND status = 'PENDING'
		RETURNING ` + salaryColumns + `
	`
	return s.transition(ctx, id, companyID, query, actor, at)
}

// Reject implements salary.SalaryRepository.
func (s *salaryRepository) Reject(ctx context.Context, id string, companyID string, actor string, reason string, at time.Time) (salary.Record, error) {
	query := `
		UPDATE salary_records
		SET status = 'REJECTED',
			rejected_by = $1,
			rejected_at = $2,
			rejection_reason = $5,
			locked_at = $2,
			updated_at = NOW()
		WHERE id = $3
		  AND company_id = $4
		  AND status = 'PENDING'
		RETURNING ` + salaryColumns + `
	`
	return s.transition(ctx, id, companyID, query, actor, at, reason)
}

// MarkPaid implements salary.SalaryRepository.
func (s *salaryRepository) MarkPaid(ctx context.Context, id string, companyID string, paidAt time.Time) (salary.Record, error) {
	query := `
		UPDATE salary_records
		SET status = 'PAID',
			paid_at = $2,
			locked_at = $2,
			updated_at = NOW()
		WHERE id = $3
		  AND company_id = $4
		  AND status = 'APPROVED'
		RETURNING ` + salaryColumns + `
	`
	return s.transition(ctx, id, companyID, query, nil, paidAt)
}

// transition runs one guarded status update. An empty result means either a
// missing record or a guard mismatch; the two map to different errors.
func (s *salaryRepository) transition(ctx context.Context, id string, companyID string, query string, actor interface{}, at time.Time, extra ...interface{}) (salary.Record, error) {
	q := GetQuerier(ctx, s.db)

	args := append([]interface{}{actor, at, id, companyID}, extra...)
	record, err := scanSalary(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, getErr := s.GetByID(ctx, id, companyID)
			if getErr != nil {
				return salary.Record{}, getErr
			}
			if existing.Status == salary.StatusPaid {
				return salary.Record{}, salary.ErrRecordLocked
			}
			return salary.Record{}, salary.ErrInvalidTransition
		}
		return salary.Record{}, fmt.Errorf("failed to transition salary record: %w", err)
	}

	record.Breakdowns, err = s.loadBreakdowns(ctx, record.ID)
	if err != nil {
		return salary.Record{}, err
	}

	return record, nil
}

// ReplaceComputed implements salary.SalaryRepository. The computed lines are
// swapped and the totals rewritten in one transaction; the status guard keeps
// approved and paid records untouchable.
func (s *salaryRepository) ReplaceComputed(ctx context.Context, record salary.Record, computed []salary.Breakdown) (salary.Record, error) {
	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		query := `
			UPDATE salary_records
			SET total_working_days = $1,
				half_days = $2,
				absent_days = $3,
				late_minutes = $4,
				overtime_hours = $5,
				base_amount = $6,
				overtime_amount = $7,
				penalty_amount = $8,
				deductions = $9,
				gross_amount = $10,
				net_amount = $11,
				status = 'PENDING',
				locked_at = NULL,
				rejected_by = NULL,
				rejected_at = NULL,
				rejection_reason = NULL,
				updated_at = NOW()
			WHERE id = $12
			  AND company_id = $13
			  AND status IN ('PENDING', 'REJECTED')
		`

		tag, err := q.Exec(ctx, query,
			record.TotalWorkingDays, record.HalfDays, record.AbsentDays,
			record.LateMinutes, record.OvertimeHours,
			record.BaseAmount, record.OvertimeAmount, record.PenaltyAmount, record.Deductions,
			record.GrossAmount, record.NetAmount,
			record.ID, record.CompanyID,
		)
		if err != nil {
			return fmt.Errorf("failed to update salary record: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if _, getErr := s.GetByID(ctx, record.ID, record.CompanyID); getErr != nil {
				return getErr
			}
			return salary.ErrRecordLocked
		}

		deleteQuery := `
			DELETE FROM salary_breakdowns
			WHERE salary_id = $1
			  AND breakdown_type IN (
				'BASE_SALARY', 'OVERTIME', 'PF_DEDUCTION', 'ESI_DEDUCTION',
				'LATE_PENALTY', 'ABSENCE_DEDUCTION'
			  )
		`
		if _, err := q.Exec(ctx, deleteQuery, record.ID); err != nil {
			return fmt.Errorf("failed to delete computed breakdown lines: %w", err)
		}

		return s.insertBreakdowns(ctx, record.ID, computed)
	})
	if err != nil {
		return salary.Record{}, err
	}

	return s.GetByID(ctx, record.ID, record.CompanyID)
}

// AddManualLine implements salary.SalaryRepository.
func (s *salaryRepository) AddManualLine(ctx context.Context, salaryID string, companyID string, line salary.Breakdown) (salary.Record, error) {
	err := WithTransaction(ctx, s.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, s.db)

		// Lock the record row and verify it is still editable
		var status salary.Status
		lockQuery := `
			SELECT status
			FROM salary_records
			WHERE id = $1
			  AND company_id = $2
			FOR UPDATE
		`
		if err := q.QueryRow(ctx, lockQuery, salaryID, companyID).Scan(&status); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return salary.ErrRecordNotFound
			}
			return fmt.Errorf("failed to lock salary record: %w", err)
		}
		if status != salary.StatusPending {
			return salary.ErrRecordLocked
		}

		if err := s.insertBreakdowns(ctx, salaryID, []salary.Breakdown{line}); err != nil {
			return err
		}

		// Re-derive totals from the full line set
		totalsQuery := `
			UPDATE salary_records
			SET gross_amount = t.gross,
				net_amount = t.gross - t.negatives,
				updated_at = NOW()
			FROM (
				SELECT
					COALESCE(SUM(amount) FILTER (WHERE amount >= 0), 0) AS gross,
					COALESCE(SUM(-amount) FILTER (WHERE amount < 0), 0) AS negatives
				FROM salary_breakdowns
				WHERE salary_id = $1
			) t
			WHERE id = $1
		`
		if _, err := q.Exec(ctx, totalsQuery, salaryID); err != nil {
			return fmt.Errorf("failed to update salary totals: %w", err)
		}

		return nil
	})
	if err != nil {
		return salary.Record{}, err
	}

	return s.GetByID(ctx, salaryID, companyID)
}

func (s *salaryRepository) insertBreakdowns(ctx context.Context, salaryID string, lines []salary.Breakdown) error {
	q := GetQuerier(ctx, s.db)

	query := `
		INSERT INTO salary_breakdowns (
			id, salary_id, breakdown_type, description, amount, breakdown_date
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, line := range lines {
		if _, err := q.Exec(ctx, query,
			line.ID, salaryID, line.Type, line.Description, line.Amount, line.Date,
		); err != nil {
			return fmt.Errorf("failed to insert breakdown line: %w", err)
		}
	}
	return nil
}

func (s *salaryRepository) loadBreakdowns(ctx context.Context, salaryID string) ([]salary.Breakdown, error) {
	q := GetQuerier(ctx, s.db)

	query := `
		SELECT id, salary_id, breakdown_type, description, amount, breakdown_date, created_at
		FROM salary_breakdowns
		WHERE salary_id = $1
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, salaryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load breakdown lines: %w", err)
	}
	defer rows.Close()

	var lines []salary.Breakdown
	for rows.Next() {
		var l salary.Breakdown
		if err := rows.Scan(&l.ID, &l.SalaryID, &l.Type, &l.Description, &l.Amount, &l.Date, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate breakdown lines: %w", err)
	}

	return lines, nil
}
