// Package httptransport is the thin HTTP layer. Handlers delegate to the
// domain services without embedding business logic so transport concerns
// remain isolated.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"featstack/internal/auth/models"
	"featstack/internal/platform/metrics"
	"featstack/internal/platform/middleware"
	"featstack/pkg/httputil"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Auth           AuthService
	Users          UsersService
	TokenValidator middleware.AccessTokenValidator
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Health         func() error
}

// NewRouter wires all public endpoints with the middleware stack.
func NewRouter(deps Dependencies) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(deps.Auth, logger, deps.Metrics)
	usersHandler := NewUsersHandler(deps.Users, logger)

	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealth(deps.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.handleRegister)
			r.Post("/login", authHandler.handleLogin)
			r.Post("/refresh", authHandler.handleRefresh)
			r.Post("/forgot-password", authHandler.handleForgotPassword)
			r.Post("/reset-password", authHandler.handleResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(deps.TokenValidator, logger))
				r.Post("/logout", authHandler.handleLogout)
				r.Post("/logout-all", authHandler.handleLogoutAll)
				r.Get("/profile", authHandler.handleProfile)
				r.Get("/sessions", authHandler.handleSessions)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.TokenValidator, logger))

			// Moderators may read; only admins may write.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logger, string(models.RoleAdmin), string(models.RoleModerator)))
				r.Get("/", usersHandler.handleList)
				r.Get("/{id}", usersHandler.handleGet)
			})
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logger, string(models.RoleAdmin)))
				r.Post("/", usersHandler.handleCreate)
				r.Patch("/{id}", usersHandler.handleUpdate)
				r.Delete("/{id}", usersHandler.handleDelete)
			})
		})
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		if check != nil {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body = map[string]string{"status": "unavailable"}
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
