package middleware

import (
	"net/http"

	"github.com/cmlabs-hris/attendance-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/attendance-leave-go/internal/pkg/jwt"
)

// RequireReviewer requires hr or admin role
func RequireReviewer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !RoleOf(r.Context()).IsReviewer() {
			response.HandleError(w, jwt.ErrReviewerRequired)
			return
		}

		next.ServeHTTP(w, r)
	})
}
