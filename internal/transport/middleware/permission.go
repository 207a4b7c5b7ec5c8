package middleware

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/pkg/logger"
)

// RequireRoles lets the request through only when the authenticated actor
// holds one of roles. It must run after the auth middleware.
func RequireRoles(base *transport.BaseHandler, roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := user.ActorFromContext(r.Context())
			if !ok {
				base.WriteAppError(w, internal.ErrInvalidToken)
				return
			}

			if !actor.HasRole(roles...) {
				logger.From(r.Context()).Warn("access denied: role not allowed",
					slog.String("user_id", actor.ID),
					slog.String("role", string(actor.Role)),
					slog.Any("allowed_roles", roles))
				base.WriteAppError(w, internal.ErrForbiddenScope)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Administrators are the roles allowed to edit departments and assignments.
var Administrators = []user.Role{user.RoleAdmin, user.RoleHR}

// Allocators are the roles that can see the bonus allocation screens.
var Allocators = []user.Role{user.RoleAdmin, user.RoleHR, user.RoleHeadManager, user.RoleManager, user.RoleSupervisor}
