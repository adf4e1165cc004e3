package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/correction"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

type correctionRepository struct {
	db *database.DB
}

func NewCorrectionRepository(db *database.DB) correction.CorrectionRepository {
	return &correctionRepository{db: db}
}

const correctionColumns = `
	id, employee_id, company_id, attendance_id, request_date, request_type,
	requested_time, note, status, reviewed_by, reviewed_at, created_at, updated_at
`

func scanCorrection(row pgx.Row) (correction.Request, error) {
	var r correction.Request
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.CompanyID, &r.AttendanceID, &r.Date, &r.Type,
		&r.RequestedTime, &r.Note, &r.Status, &r.ReviewedBy, &r.ReviewedAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// Create implements correction.CorrectionRepository.
func (c *correctionRepository) Create(ctx context.Context, request correction.Request) (correction.Request, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		INSERT INTO correction_requests (
			id, employee_id, company_id, attendance_id, request_date, request_type,
			requested_time, note, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.ID, request.EmployeeID, request.CompanyID, request.AttendanceID,
		request.Date, request.Type, request.RequestedTime, request.Note, request.Status,
	).Scan(&request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return correction.Request{}, fmt.Errorf("failed to create correction request: %w", err)
	}

	return request, nil
}

// GetByID implements correction.CorrectionRepository.
func (c *correctionRepository) GetByID(ctx context.Context, id string, companyID string) (correction.Request, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		SELECT ` + correctionColumns + `
		FROM correction_requests
		WHERE id = $1
		  AND company_id = $2
	`

	request, err := scanCorrection(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return correction.Request{}, correction.ErrRequestNotFound
		}
		return correction.Request{}, fmt.Errorf("failed to get correction request: %w", err)
	}

	return request, nil
}

// MarkReviewed implements correction.CorrectionRepository. The PENDING guard
// is part of the WHERE clause, so only one reviewer can win.
func (c *correctionRepository) MarkReviewed(ctx context.Context, id string, companyID string, decision correction.Status, reviewer string) (correction.Request, error) {
	q := GetQuerier(ctx, c.db)

	query := `
		UPDATE correction_requests
		SET status = $1,
			reviewed_by = $2,
			reviewed_at = NOW(),
			updated_at = NOW()
		WHERE id = $3
		  AND company_id = $4
		  AND status = 'PENDING'
		RETURNING ` + correctionColumns + `
	`

	request, err := scanCorrection(q.QueryRow(ctx, query, decision, reviewer, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, getErr := c.GetByID(ctx, id, companyID); getErr != nil {
				return correction.Request{}, getErr
			}
			return correction.Request{}, correction.ErrNotPending
		}
		return correction.Request{}, fmt.Errorf("failed to review correction request: %w", err)
	}

	return request, nil
}

// ListPending implements correction.CorrectionRepository.
func (c *correctionRepository) ListPending(ctx context.Context, companyID string, page, limit int) ([]correction.Request, int64, error) {
	q := GetQuerier(ctx, c.db)

	var total int64
	countQuery := `
		SELECT COUNT(*)
		FROM correction_requests
		WHERE company_id = $1
		  AND status = 'PENDING'
	`
	if err := q.QueryRow(ctx, countQuery, companyID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count correction requests: %w", err)
	}

	query := `
		SELECT ` + correctionColumns + `
		FROM correction_requests
		WHERE company_id = $1
		  AND status = 'PENDING'
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`

	rows, err := q.Query(ctx, query, companyID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list correction requests: %w", err)
	}
	defer rows.Close()

	var requests []correction.Request
	for rows.Next() {
		r, err := scanCorrection(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan correction request: %w", err)
		}
		requests = append(requests, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate correction requests: %w", err)
	}

	return requests, total, nil
}
