package auth

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/internal"
	"github.com/frahmantamala/leave-management/internal/transport"
	"github.com/frahmantamala/leave-management/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// AuthMiddleware validates the bearer token and attaches the principal to
// the request context. Any failure is a 401.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lg := logger.From(r.Context())

		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			lg.Debug("auth middleware: missing authorization token", "path", r.URL.Path)
			h.WriteAppError(w, internal.ErrNotAuthenticated)
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			lg.Info("auth middleware: token rejected", "path", r.URL.Path, "error", err)
			h.WriteAppError(w, internal.AsAppError(unauthorised(err)))
			return
		}

		principal, err := h.Service.ResolvePrincipal(r.Context(), claims)
		if err != nil {
			h.HandleServiceError(w, r, unauthorised(err))
			return
		}

		next.ServeHTTP(w, r.WithContext(internal.ContextWithUser(r.Context(), principal)))
	})
}

// unauthorised keeps token failures at 401 while letting Internal errors
// through unchanged.
func unauthorised(err error) error {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		return internal.ErrInvalidToken.WithCause(err)
	}
	if appErr.StatusCode == http.StatusUnauthorized || appErr.StatusCode >= http.StatusInternalServerError {
		return appErr
	}
	return internal.ErrNotAuthenticated.WithCause(err)
}
