package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/company"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

type companyRepository struct {
	db *database.DB
}

func NewCompanyRepository(db *database.DB) company.CompanyRepository {
	return &companyRepository{db: db}
}

// GetByID implements company.CompanyRepository.
func (r *companyRepository) GetByID(ctx context.Context, id string) (company.Company, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, username, is_active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	var c company.Company
	err := q.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Name, &c.Username, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return company.Company{}, company.ErrCompanyNotFound
		}
		return company.Company{}, fmt.Errorf("failed to get company: %w", err)
	}

	return c, nil
}

// ListActiveIDs implements company.CompanyRepository.
func (r *companyRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id
		FROM companies
		WHERE is_active = TRUE
		ORDER BY created_at
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active companies: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan company id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate companies: %w", err)
	}

	return ids, nil
}
