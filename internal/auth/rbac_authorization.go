package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	coreuser "github.com/frahmantamala/leave-management/internal/core/user"
	"github.com/frahmantamala/leave-management/internal/transport"
)

// RBACAuthorization gates routes on the principal's role. It must run after
// AuthMiddleware.
type RBACAuthorization struct {
	*transport.BaseHandler
	logger *slog.Logger
}

func NewRBACAuthorization(logger *slog.Logger) *RBACAuthorization {
	return &RBACAuthorization{
		BaseHandler: transport.NewBaseHandler(logger),
		logger:      logger,
	}
}

// Require admits principals whose role satisfies allowed.
func (ra *RBACAuthorization) Require(capability string, allowed func(coreuser.Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := internal.UserFromContext(r.Context())
			if !ok {
				ra.logger.WarnContext(r.Context(), "authorization check failed: no principal in context")
				ra.WriteAppError(w, internal.ErrNotAuthenticated)
				return
			}

			if !allowed(user.Role) {
				ra.logger.WarnContext(r.Context(), "access denied",
					"user_id", user.ID,
					"role", user.Role.String(),
					"required", capability)
				ra.WriteAppError(w, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireReviewer admits managers and admins.
func (ra *RBACAuthorization) RequireReviewer() func(http.Handler) http.Handler {
	return ra.Require("reviewer", coreuser.Role.CanReview)
}

func (ra *RBACAuthorization) RequireAdmin() func(http.Handler) http.Handler {
	return ra.Require("admin", coreuser.Role.IsAdmin)
}
