package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/attendly/attendly-backend-go/internal/domain/employee"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, company_id, user_id, full_name, employment_status, attendance_tracked,
	salary_type, base_salary, daily_rate, hourly_rate, overtime_rate,
	pf_esi_applicable, created_at, updated_at
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.UserID, &e.FullName, &e.EmploymentStatus, &e.AttendanceTracked,
		&e.SalaryType, &e.BaseSalary, &e.DailyRate, &e.HourlyRate, &e.OvertimeRate,
		&e.PFESIApplicable, &e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1
		  AND company_id = $2
		  AND deleted_at IS NULL
	`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return e, nil
}

// GetActiveByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return r.listActive(ctx, companyID, false)
}

// GetActiveTrackedByCompanyID implements employee.EmployeeRepository.
func (r *employeeRepository) GetActiveTrackedByCompanyID(ctx context.Context, companyID string) ([]employee.Employee, error) {
	return r.listActive(ctx, companyID, true)
}

func (r *employeeRepository) listActive(ctx context.Context, companyID string, trackedOnly bool) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1
		  AND employment_status = 'active'
		  AND deleted_at IS NULL
	`
	if trackedOnly {
		query += ` AND attendance_tracked = TRUE`
	}
	query += ` ORDER BY full_name`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}

	return employees, nil
}
