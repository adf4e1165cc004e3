package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/attendly/attendly-backend-go/internal/domain/attendance"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

const uniqueViolationCode = "23505"

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, company_id, attendance_date,
	punch_in_at, punch_out_at, status, working_hours, overtime_hours,
	is_late, late_minutes, auto_punched_out, auto_punch_out_at,
	working_hours_capped, requires_approval, approval_reason,
	approved_by, approved_at, rejected_by, rejected_at, rejection_reason,
	punch_in_latitude, punch_in_longitude, punch_in_photo_ref,
	punch_out_latitude, punch_out_longitude, punch_out_photo_ref,
	created_at, updated_at
`

func scanAttendance(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.CompanyID, &r.AttendanceDate,
		&r.PunchInAt, &r.PunchOutAt, &r.Status, &r.WorkingHours, &r.OvertimeHours,
		&r.IsLate, &r.LateMinutes, &r.AutoPunchedOut, &r.AutoPunchOutAt,
		&r.WorkingHoursCapped, &r.RequiresApproval, &r.ApprovalReason,
		&r.ApprovedBy, &r.ApprovedAt, &r.RejectedBy, &r.RejectedAt, &r.RejectionReason,
		&r.PunchInLatitude, &r.PunchInLongitude, &r.PunchInPhotoRef,
		&r.PunchOutLatitude, &r.PunchOutLongitude, &r.PunchOutPhotoRef,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, record attendance.Record) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, company_id, attendance_date,
			punch_in_at, punch_out_at, status, working_hours, overtime_hours,
			is_late, late_minutes, working_hours_capped,
			requires_approval, approval_reason,
			punch_in_latitude, punch_in_longitude, punch_in_photo_ref,
			punch_out_latitude, punch_out_longitude, punch_out_photo_ref,
			approved_by, approved_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.CompanyID, record.AttendanceDate,
		record.PunchInAt, record.PunchOutAt, record.Status, record.WorkingHours, record.OvertimeHours,
		record.IsLate, record.LateMinutes, record.WorkingHoursCapped,
		record.RequiresApproval, record.ApprovalReason,
		record.PunchInLatitude, record.PunchInLongitude, record.PunchInPhotoRef,
		record.PunchOutLatitude, record.PunchOutLongitude, record.PunchOutPhotoRef,
		record.ApprovedBy, record.ApprovedAt,
	).Scan(&record.CreatedAt, &record.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return attendance.Record{}, attendance.ErrAlreadyPunchedIn
		}
		return attendance.Record{}, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return record, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string, companyID string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE id = $1
		  AND company_id = $2
	`

	record, err := scanAttendance(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, companyID string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND attendance_date = $2
		  AND company_id = $3
		LIMIT 1
	`

	record, err := scanAttendance(q.QueryRow(ctx, query, employeeID, date, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	return &record, nil
}

// GetLatestOpen implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetLatestOpen(ctx context.Context, employeeID string, companyID string, dates []time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND company_id = $2
		  AND attendance_date = ANY($3)
		  AND punch_in_at IS NOT NULL
		  AND punch_out_at IS NULL
		ORDER BY punch_in_at DESC
		LIMIT 1
	`

	record, err := scanAttendance(q.QueryRow(ctx, query, employeeID, companyID, dates))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrNoOpenPunch
		}
		return attendance.Record{}, fmt.Errorf("failed to get open attendance record: %w", err)
	}

	return record, nil
}

// CompletePunchOut implements attendance.AttendanceRepository. The open-punch
// guard sits in the WHERE clause so a concurrent auto-close wins cleanly.
func (a *attendanceRepository) CompletePunchOut(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET punch_out_at = $1,
			working_hours = $2,
			overtime_hours = $3,
			working_hours_capped = $4,
			requires_approval = $5,
			approval_reason = $6,
			punch_out_latitude = $7,
			punch_out_longitude = $8,
			punch_out_photo_ref = $9,
			updated_at = NOW()
		WHERE id = $10
		  AND company_id = $11
		  AND punch_in_at IS NOT NULL
		  AND punch_out_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		record.PunchOutAt, record.WorkingHours, record.OvertimeHours,
		record.WorkingHoursCapped, record.RequiresApproval, record.ApprovalReason,
		record.PunchOutLatitude, record.PunchOutLongitude, record.PunchOutPhotoRef,
		record.ID, record.CompanyID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete punch-out: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// AutoClose implements attendance.AttendanceRepository.
func (a *attendanceRepository) AutoClose(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET punch_out_at = $1,
			working_hours = $2,
			overtime_hours = 0,
			working_hours_capped = $3,
			auto_punched_out = TRUE,
			auto_punch_out_at = $4,
			requires_approval = TRUE,
			approval_reason = $5,
			updated_at = NOW()
		WHERE id = $6
		  AND company_id = $7
		  AND auto_punched_out = FALSE
		  AND punch_in_at IS NOT NULL
		  AND punch_out_at IS NULL
	`

	tag, err := q.Exec(ctx, query,
		record.PunchOutAt, record.WorkingHours, record.WorkingHoursCapped,
		record.AutoPunchOutAt, record.ApprovalReason,
		record.ID, record.CompanyID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to auto-close attendance record: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetStatus implements attendance.AttendanceRepository.
func (a *attendanceRepository) SetStatus(ctx context.Context, id string, companyID string, status attendance.Status, actor string, reason *string, at time.Time) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET status = $1,
			approved_by = CASE WHEN $1 = 'APPROVED' THEN $2 ELSE approved_by END,
			approved_at = CASE WHEN $1 = 'APPROVED' THEN $3 ELSE approved_at END,
			rejected_by = CASE WHEN $1 = 'REJECTED' THEN $2 ELSE rejected_by END,
			rejected_at = CASE WHEN $1 = 'REJECTED' THEN $3 ELSE rejected_at END,
			rejection_reason = CASE WHEN $1 = 'REJECTED' THEN $4 ELSE rejection_reason END,
			updated_at = NOW()
		WHERE id = $5
		  AND company_id = $6
		  AND status = 'PENDING'
		RETURNING ` + attendanceColumns + `
	`

	record, err := scanAttendance(q.QueryRow(ctx, query, status, actor, at, reason, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a missing record from a terminal one
			if _, getErr := a.GetByID(ctx, id, companyID); getErr != nil {
				return attendance.Record{}, getErr
			}
			return attendance.Record{}, attendance.ErrInvalidTransition
		}
		return attendance.Record{}, fmt.Errorf("failed to set attendance status: %w", err)
	}

	return record, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET punch_in_at = $1,
			punch_out_at = $2,
			status = $3,
			working_hours = $4,
			overtime_hours = $5,
			is_late = $6,
			late_minutes = $7,
			auto_punched_out = $8,
			auto_punch_out_at = $9,
			working_hours_capped = $10,
			requires_approval = $11,
			approval_reason = $12,
			approved_by = $13,
			approved_at = $14,
			punch_in_latitude = $15,
			punch_in_longitude = $16,
			punch_in_photo_ref = $17,
			punch_out_latitude = $18,
			punch_out_longitude = $19,
			punch_out_photo_ref = $20,
			updated_at = NOW()
		WHERE id = $21
		  AND company_id = $22
	`

	tag, err := q.Exec(ctx, query,
		record.PunchInAt, record.PunchOutAt, record.Status,
		record.WorkingHours, record.OvertimeHours,
		record.IsLate, record.LateMinutes,
		record.AutoPunchedOut, record.AutoPunchOutAt,
		record.WorkingHoursCapped, record.RequiresApproval, record.ApprovalReason,
		record.ApprovedBy, record.ApprovedAt,
		record.PunchInLatitude, record.PunchInLongitude, record.PunchInPhotoRef,
		record.PunchOutLatitude, record.PunchOutLongitude, record.PunchOutPhotoRef,
		record.ID, record.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// CreateIfMissing implements attendance.AttendanceRepository.
func (a *attendanceRepository) CreateIfMissing(ctx context.Context, record attendance.Record) (bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		INSERT INTO attendance_records (
			id, employee_id, company_id, attendance_date, status, working_hours, overtime_hours
		) VALUES (
			$1, $2, $3, $4, $5, 0, 0
		)
		ON CONFLICT (employee_id, company_id, attendance_date) DO NOTHING
	`

	tag, err := q.Exec(ctx, query,
		record.ID, record.EmployeeID, record.CompanyID, record.AttendanceDate, record.Status,
	)
	if err != nil {
		return false, fmt.Errorf("failed to create attendance record: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListOpenForDates implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListOpenForDates(ctx context.Context, companyID string, dates []time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE company_id = $1
		  AND attendance_date = ANY($2)
		  AND punch_in_at IS NOT NULL
		  AND punch_out_at IS NULL
		  AND auto_punched_out = FALSE
		ORDER BY attendance_date, punch_in_at
	`

	rows, err := q.Query(ctx, query, companyID, dates)
	if err != nil {
		return nil, fmt.Errorf("failed to list open attendance records: %w", err)
	}
	defer rows.Close()

	return collectAttendance(rows)
}

// ListByEmployeeAndRange implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByEmployeeAndRange(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendance_records
		WHERE employee_id = $1
		  AND company_id = $2
		  AND attendance_date BETWEEN $3 AND $4
		ORDER BY attendance_date
	`

	rows, err := q.Query(ctx, query, employeeID, companyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	return collectAttendance(rows)
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.Filter, companyID string) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	conditions := []string{"ar.company_id = $1"}
	args := []interface{}{companyID}

	if filter.EmployeeID != nil {
		args = append(args, *filter.EmployeeID)
		conditions = append(conditions, fmt.Sprintf("ar.employee_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conditions = append(conditions, fmt.Sprintf("ar.status = $%d", len(args)))
	}
	if filter.StartDate != nil {
		args = append(args, *filter.StartDate)
		conditions = append(conditions, fmt.Sprintf("ar.attendance_date >= $%d", len(args)))
	}
	if filter.EndDate != nil {
		args = append(args, *filter.EndDate)
		conditions = append(conditions, fmt.Sprintf("ar.attendance_date <= $%d", len(args)))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM attendance_records ar WHERE ` + where
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	args = append(args, filter.Limit, offset)
	query := fmt.Sprintf(`
		SELECT ar.id, ar.employee_id, ar.company_id, ar.attendance_date,
			   ar.punch_in_at, ar.punch_out_at, ar.status, ar.working_hours, ar.overtime_hours,
			   ar.is_late, ar.late_minutes, ar.auto_punched_out, ar.auto_punch_out_at,
			   ar.working_hours_capped, ar.requires_approval, ar.approval_reason,
			   ar.approved_by, ar.approved_at, ar.rejected_by, ar.rejected_at, ar.rejection_reason,
			   ar.punch_in_latitude, ar.punch_in_longitude, ar.punch_in_photo_ref,
			   ar.punch_out_latitude, ar.punch_out_longitude, ar.punch_out_photo_ref,
			   ar.created_at, ar.updated_at,
			   e.full_name
		FROM attendance_records ar
		JOIN employees e ON e.id = ar.employee_id
		WHERE %s
		ORDER BY ar.attendance_date DESC, ar.punch_in_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var r attendance.Record
		err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.CompanyID, &r.AttendanceDate,
			&r.PunchInAt, &r.PunchOutAt, &r.Status, &r.WorkingHours, &r.OvertimeHours,
			&r.IsLate, &r.LateMinutes, &r.AutoPunchedOut, &r.AutoPunchOutAt,
			&r.WorkingHoursCapped, &r.RequiresApproval, &r.ApprovalReason,
			&r.ApprovedBy, &r.ApprovedAt, &r.RejectedBy, &r.RejectedAt, &r.RejectionReason,
			&r.PunchInLatitude, &r.PunchInLongitude, &r.PunchInPhotoRef,
			&r.PunchOutLatitude, &r.PunchOutLongitude, &r.PunchOutPhotoRef,
			&r.CreatedAt, &r.UpdatedAt,
			&r.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate attendance records: %w", err)
	}

	return records, total, nil
}

func collectAttendance(rows pgx.Rows) ([]attendance.Record, error) {
	var records []attendance.Record
	for rows.Next() {
		r, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendance records: %w", err)
	}
	return records, nil
}
