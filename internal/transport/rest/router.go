package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/leave-management/api"
	"github.com/frahmantamala/leave-management/internal/auth"
	"github.com/frahmantamala/leave-management/internal/leave"
	"github.com/frahmantamala/leave-management/internal/leavetype"
	"github.com/frahmantamala/leave-management/internal/management"
	"github.com/frahmantamala/leave-management/internal/transport/middleware"
	"github.com/frahmantamala/leave-management/internal/transport/swagger"
	"github.com/frahmantamala/leave-management/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
)

// Handlers groups the domain handlers mounted under /api/v1.
type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Management *management.Handler
	LeaveType  *leavetype.Handler
	Leave      *leave.Handler
}

type Options struct {
	AllowedOrigins []string
	// RateLimiter is applied to authenticated routes when set.
	RateLimiter *middleware.KeyedRateLimiter
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, h Handlers, opts Options, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)
	rbac := auth.NewRBACAuthorization(logger)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.TraceIDHeader},
		ExposedHeaders:   []string{middleware.TraceIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	router.Get(swagger.SpecPath, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		if _, err := w.Write(api.Spec); err != nil {
			logger.Error("failed to write OpenAPI document", "error", err)
		}
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)
			pr.Use(middleware.UserContext)
			if opts.RateLimiter != nil {
				pr.Use(middleware.RateLimit(opts.RateLimiter, logger))
			}

			admin := rbac.RequireAdmin()
			reviewer := rbac.RequireReviewer()

			if h.User != nil {
				pr.Route("/users", func(ur chi.Router) {
					ur.Get("/me", h.User.GetCurrentUser)
					ur.With(admin).Get("/", h.User.ListUsers)
					ur.With(admin).Post("/", h.User.CreateUser)
					ur.With(admin).Get("/email/{email}", h.User.GetUserByEmail)
					ur.With(admin).Get("/{id}", h.User.GetUser)
					ur.With(admin).Patch("/{id}", h.User.UpdateUser)
				})
				pr.Get("/roles", h.User.ListRoles)
				pr.Get("/roles/{id}", h.User.GetRole)
			}

			if h.Management != nil {
				pr.Route("/user-management", func(mr chi.Router) {
					mr.Use(admin)
					mr.Post("/assign", h.Management.Assign)
					mr.Get("/mappings", h.Management.ListMappings)
				})
			}

			if h.LeaveType != nil {
				pr.Route("/leave-types", func(tr chi.Router) {
					tr.Get("/", h.LeaveType.GetLeaveTypes)
					tr.Get("/{id}", h.LeaveType.GetLeaveType)
					tr.With(admin).Post("/", h.LeaveType.CreateLeaveType)
					tr.With(admin).Patch("/{id}", h.LeaveType.UpdateLeaveType)
					tr.With(admin).Delete("/{id}", h.LeaveType.DeleteLeaveType)
				})
			}

			if h.Leave != nil {
				pr.Route("/leave-requests", func(lr chi.Router) {
					lr.Post("/", h.Leave.CreateLeaveRequest)
					lr.Get("/", h.Leave.ListLeaveRequests)
					lr.Get("/mine", h.Leave.ListMyLeaveRequests)
					lr.Get("/pending", h.Leave.ListPendingLeaveRequests)
					lr.With(reviewer).Get("/user/{userId}", h.Leave.ListUserLeaveRequests)
					lr.Get("/balance/{userId}", h.Leave.GetBalance)
					lr.With(admin).Patch("/balance/{userId}", h.Leave.UpdateBalance)
					lr.Get("/{id}", h.Leave.GetLeaveRequest)
					lr.With(reviewer).Patch("/{id}/approve", h.Leave.ApproveLeaveRequest)
					lr.With(reviewer).Patch("/{id}/reject", h.Leave.RejectLeaveRequest)
					lr.Patch("/{id}/cancel", h.Leave.CancelLeaveRequest)
				})
			}
		})
	})
}
