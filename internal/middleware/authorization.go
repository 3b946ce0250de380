package middleware

import (
	"net/http"
	"strconv"

	"electro-shop/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// RequireAdmin middleware ensures the user has admin role
func RequireAdmin(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := GetUserRole(r.Context())
			if !ok {
				logger.Warn("Role not found in context")
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			if role != string(domain.RoleAdmin) {
				logger.Warn("Non-admin user attempted to access admin endpoint",
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin lets a user act on their own account, named by the
// given URL parameter, and admins act on any account.
func RequireSelfOrAdmin(param string, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if role, _ := GetUserRole(r.Context()); role == string(domain.RoleAdmin) {
				next.ServeHTTP(w, r)
				return
			}

			caller, ok := GetUserNumber(r.Context())
			target, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if !ok || err != nil || caller != target {
				logger.Warn("User attempted to act on another account",
					zap.Int64("user_number", caller),
					zap.String("target", chi.URLParam(r, param)),
				)
				RespondWithError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
