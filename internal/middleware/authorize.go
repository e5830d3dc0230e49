package middleware

import (
	"net/http"

	"github.com/hongminglow/elearn-be/internal/apperr"
	"github.com/hongminglow/elearn-be/internal/http/respond"
	"github.com/hongminglow/elearn-be/internal/models"
)

// Authorize admits callers whose role is in allowed. It must run after
// Gate.Require; a request with no caller is treated as unauthenticated.
func Authorize(allowed models.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				respond.Fail(w, apperr.Unauthenticated(""), false)
				return
			}
			if !allowed.Contains(user.Role) {
				respond.Fail(w, apperr.Forbidden(""), false)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
