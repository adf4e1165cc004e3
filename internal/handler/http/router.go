package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/attendly/attendly-backend-go/internal/handler/http/middleware"
	"github.com/attendly/attendly-backend-go/internal/pkg/jwt"
)

func NewRouter(
	jwtService jwt.Service,
	env string,
	attendanceHandler AttendanceHandler,
	correctionHandler CorrectionHandler,
	payrollHandler PayrollHandler,
	jobsHandler JobsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendly"),
		slog.String("version", "v1.0.0"),
		slog.String("env", env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punch-in", attendanceHandler.PunchIn)
				r.Post("/punch-out", attendanceHandler.PunchOut)

				r.Route("/records", func(r chi.Router) {
					r.Get("/{id}", attendanceHandler.Get)

					// Manager or admin only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Get("/", attendanceHandler.List)
						r.Post("/", attendanceHandler.ManualEntry)
						r.Patch("/{id}/status", attendanceHandler.SetStatus)
					})
				})

				r.Route("/corrections", func(r chi.Router) {
					r.Post("/", correctionHandler.Submit)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireManager)
						r.Get("/pending", correctionHandler.ListPending)
						r.Post("/{id}/review", correctionHandler.Review)
					})
				})
			})

			r.Route("/payroll/salaries", func(r chi.Router) {
				r.Use(middleware.RequireManager)

				r.Get("/", payrollHandler.List)
				r.Get("/{id}", payrollHandler.Get)
				r.Post("/generate", payrollHandler.Generate)
				r.Post("/{id}/approve", payrollHandler.Approve)
				r.Post("/{id}/reject", payrollHandler.Reject)
				r.Post("/{id}/mark-paid", payrollHandler.MarkPaid)
				r.Post("/{id}/recalculate", payrollHandler.Recalculate)
				r.Post("/{id}/lines", payrollHandler.AddManualLine)
			})

			// Admin only
			r.Route("/jobs", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/{name}/run", jobsHandler.Run)
			})
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("attendly api\n"))
	})

	return r
}
