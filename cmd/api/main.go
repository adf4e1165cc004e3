package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/attendly/attendly-backend-go/internal/config"
	appHTTP "github.com/attendly/attendly-backend-go/internal/handler/http"
	"github.com/attendly/attendly-backend-go/internal/pkg/cron"
	"github.com/attendly/attendly-backend-go/internal/pkg/database"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
	"github.com/attendly/attendly-backend-go/internal/pkg/notify"
	"github.com/attendly/attendly-backend-go/internal/repository/postgresql"
	attendanceService "github.com/attendly/attendly-backend-go/internal/service/attendance"
	correctionService "github.com/attendly/attendly-backend-go/internal/service/correction"
	payrollService "github.com/attendly/attendly-backend-go/internal/service/payroll"
	policyService "github.com/attendly/attendly-backend-go/internal/service/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: int32(cfg.Database.MaxConns),
		MinConns: int32(cfg.Database.MinConns),
	})
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}
	defer db.Close()

	companyRepo := postgresql.NewCompanyRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	correctionRepo := postgresql.NewCorrectionRepository(db)
	salaryRepo := postgresql.NewSalaryRepository(db)
	auditLog := postgresql.NewAuditLogger(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	notifier := notify.NewLogNotifier()
	policyStore := policyService.NewCachedStore(policyRepo, cfg.Policy.CacheTTL)

	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, policyStore, auditLog, notifier)
	correctionSvc := correctionService.NewCorrectionService(correctionRepo, attendanceRepo, employeeRepo, policyStore, auditLog, notifier)
	salarySvc := payrollService.NewSalaryService(salaryRepo, employeeRepo, attendanceRepo, policyStore, auditLog, notifier)

	recoveryJobs := cron.NewRecoveryJobs(companyRepo, employeeRepo, attendanceRepo, policyStore, auditLog, notifier, cfg.Cron.TenantChunkSize)
	payrollJobs := cron.NewPayrollJobs(companyRepo, salarySvc)

	scheduler := cron.NewScheduler()
	recoveryJobs.RegisterJobs(scheduler, cfg.Cron.AutoPunchOutInterval, cfg.Cron.MarkAbsentInterval)
	payrollJobs.RegisterJobs(scheduler, cfg.Cron.PayrollInterval)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	correctionHandler := appHTTP.NewCorrectionHandler(correctionSvc)
	payrollHandler := appHTTP.NewPayrollHandler(salarySvc)
	jobsHandler := appHTTP.NewJobsHandler(recoveryJobs, payrollJobs)

	router := appHTTP.NewRouter(
		jwtService,
		cfg.App.Env,
		attendanceHandler,
		correctionHandler,
		payrollHandler,
		jobsHandler,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Shutdown error", "error", err)
		os.Exit(1)
	}
}
