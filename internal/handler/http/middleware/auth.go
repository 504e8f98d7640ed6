package middleware

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
)

// AuthRequired rejects requests without a verified access token carrying an employee id.
// It must run after jwtauth.Verifier.
func AuthRequired(ja *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, _, err := jwtauth.FromContext(r.Context())

			if err != nil {
				response.Unauthorized(w, err.Error())
				return
			}

			if token == nil {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			claims, err := token.AsMap(r.Context())
			if err != nil {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}
			tokenType, ok := claims["type"].(string)
			if tokenType != jwt.TokenTypeAccess || !ok {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}
			if employeeID, _ := claims["employee_id"].(string); employeeID == "" {
				response.HandleError(w, jwt.ErrInvalidToken)
				return
			}

			next.ServeHTTP(w, r)
		}
		return http.HandlerFunc(hfn)
	}
}

// EmployeeID returns the authenticated employee, or "" when the context has no token.
func EmployeeID(ctx context.Context) string {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	id, _ := claims["employee_id"].(string)
	return id
}

// RoleOf returns the authenticated role, or "" when missing or unknown.
func RoleOf(ctx context.Context) jwt.Role {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	raw, _ := claims["role"].(string)
	role, err := jwt.ParseRole(raw)
	if err != nil {
		return ""
	}
	return role
}
