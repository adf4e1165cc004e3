package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/attendly/attendly-backend-go/internal/handler/http/response"
)

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// RequireAdmin requires admin role
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Admin access required")
			return
		}

		role, ok := claims["role"].(string)
		if !ok || role != RoleAdmin {
			response.Forbidden(w, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// RequireManager requires manager or admin role
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Forbidden(w, "Manager access required")
			return
		}

		role, ok := claims["role"].(string)
		if !ok {
			response.Forbidden(w, "Manager access required")
			return
		}

		if role != RoleManager && role != RoleAdmin {
			response.Forbidden(w, "Manager access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}
