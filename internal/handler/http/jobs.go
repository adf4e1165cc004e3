package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
	"github.com/attendly/attendly-backend-go/internal/pkg/cron"
)

// JobsHandler exposes the recovery and payroll jobs for manual triggering,
// mostly for operators re-running a pass after an incident.
type JobsHandler interface {
	Run(w http.ResponseWriter, r *http.Request)
}

type jobsHandlerImpl struct {
	recoveryJobs *cron.RecoveryJobs
	payrollJobs  *cron.PayrollJobs
}

func NewJobsHandler(recoveryJobs *cron.RecoveryJobs, payrollJobs *cron.PayrollJobs) JobsHandler {
	return &jobsHandlerImpl{
		recoveryJobs: recoveryJobs,
		payrollJobs:  payrollJobs,
	}
}

// Run implements JobsHandler.
func (h *jobsHandlerImpl) Run(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	now := time.Now()

	var (
		result cron.JobResult
		err    error
	)
	switch name {
	case "auto_punch_out":
		result, err = h.recoveryJobs.RunAutoPunchOut(r.Context(), now)
	case "mark_absent":
		result, err = h.recoveryJobs.RunMarkAbsent(r.Context(), now)
	case "generate_monthly_salaries":
		result, err = h.payrollJobs.RunMonthlyGeneration(r.Context(), now)
	default:
		response.NotFound(w, "Unknown job")
		return
	}

	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Job completed", result)
}
