package http

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
)

// companyIDFromRequest reads the tenant the token is bound to. AuthRequired
// already rejected tokens without one.
func companyIDFromRequest(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	companyID, _ := claims["company_id"].(string)
	return companyID
}

func employeeIDFromRequest(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	employeeID, _ := claims["employee_id"].(string)
	return employeeID
}

// actorFromRequest identifies who performed the action for audit purposes.
func actorFromRequest(r *http.Request) string {
	_, claims, _ := jwtauth.FromContext(r.Context())
	userID, _ := claims["user_id"].(string)
	return userID
}
