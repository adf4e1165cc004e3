package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/attendly/attendly-backend-go/internal/domain/company"
	"github.com/attendly/attendly-backend-go/internal/domain/salary"
)

// PayrollJobs generates the previous month's salary records once the month
// has closed. Generation skips employees that already have a record, so
// repeated runs are harmless.
type PayrollJobs struct {
	companyRepo company.CompanyRepository
	salarySvc   salary.SalaryService
}

func NewPayrollJobs(companyRepo company.CompanyRepository, salarySvc salary.SalaryService) *PayrollJobs {
	return &PayrollJobs{
		companyRepo: companyRepo,
		salarySvc:   salarySvc,
	}
}

func (j *PayrollJobs) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("generate_monthly_salaries", interval, func(ctx context.Context) error {
		now := time.Now()
		// Only on the first day of the month
		if now.Day() != 1 {
			return nil
		}
		result, err := j.RunMonthlyGeneration(ctx, now)
		logResult("generate_monthly_salaries", result)
		return err
	})
}

// RunMonthlyGeneration generates salary records for the month preceding now,
// for every active company.
func (j *PayrollJobs) RunMonthlyGeneration(ctx context.Context, now time.Time) (JobResult, error) {
	previous := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, 0, -1)
	month, year := int(previous.Month()), previous.Year()

	companyIDs, err := j.companyRepo.ListActiveIDs(ctx)
	if err != nil {
		return JobResult{}, fmt.Errorf("failed to list active companies: %w", err)
	}

	var result JobResult
	for _, companyID := range companyIDs {
		responses, err := j.salarySvc.Generate(ctx, salary.GenerateRequest{
			CompanyID: companyID,
			Month:     month,
			Year:      year,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("company %s: %v", companyID, err))
			slog.Error("Cron: salary generation failed", "company_id", companyID, "month", month, "year", year, "error", err)
			continue
		}
		result.Processed += len(responses)
	}
	return result, nil
}
