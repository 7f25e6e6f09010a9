package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"featstack/internal/auth/models"
	"featstack/internal/platform/metrics"
	"featstack/internal/platform/middleware"
	"featstack/pkg/httputil"
)

// AuthService is the slice of the session manager the HTTP layer consumes.
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest, userAgent string) (*models.AuthResult, error)
	Login(ctx context.Context, req *models.LoginRequest, userAgent string) (*models.AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*models.AuthResult, error)
	Logout(ctx context.Context, userID, refreshToken string)
	LogoutAll(ctx context.Context, userID string) *models.LogoutAllResult
	RequestPasswordReset(ctx context.Context, email string) error
	CompletePasswordReset(ctx context.Context, token, newPassword string) error
	FindUserByID(ctx context.Context, userID string) (*models.User, error)
	Sessions(ctx context.Context, userID, currentToken string) (*models.SessionsResult, error)
}

type AuthHandler struct {
	auth    AuthService
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewAuthHandler(auth AuthService, logger *slog.Logger, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger, metrics: m}
}

// observe records endpoint latency when metrics are wired.
func (h *AuthHandler) observe(endpoint string, start time.Time) {
	if h.metrics != nil {
		h.metrics.ObserveEndpointLatency(endpoint, time.Since(start).Seconds())
	}
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_register", time.Now())
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.RegisterRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.auth.Register(ctx, req, r.UserAgent())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_login", time.Now())
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.LoginRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.auth.Login(ctx, req, r.UserAgent())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *AuthHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_refresh", time.Now())
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.RefreshRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.auth.Refresh(ctx, req.RefreshToken)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// Logout never reports a failure to the client. A dead session and a
// successfully revoked session look identical.
func (h *AuthHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_logout", time.Now())
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.LogoutRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	h.auth.Logout(ctx, middleware.GetUserID(ctx), req.RefreshToken)
	httputil.WriteJSON(w, http.StatusOK, models.MessageResult{Message: "Logged out successfully"})
}

func (h *AuthHandler) handleLogoutAll(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_logout_all", time.Now())
	ctx := r.Context()

	result := h.auth.LogoutAll(ctx, middleware.GetUserID(ctx))
	httputil.WriteJSON(w, http.StatusOK, result)
}

// handleForgotPassword acknowledges every request the same way so the
// endpoint cannot be used to probe which emails have accounts.
func (h *AuthHandler) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_forgot_password", time.Now())
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.ForgotPasswordRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	if err := h.auth.RequestPasswordReset(ctx, req.Email); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResult{
		Message: "If an account with that email exists, a reset link has been sent",
	})
}

func (h *AuthHandler) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_reset_password", time.Now())
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.ResetPasswordRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	if err := h.auth.CompletePasswordReset(ctx, req.Token, req.NewPassword); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResult{Message: "Password has been reset successfully"})
}

func (h *AuthHandler) handleProfile(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_profile", time.Now())
	ctx := r.Context()

	user, err := h.auth.FindUserByID(ctx, middleware.GetUserID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.NewUserResult(user))
}

// handleSessions lists the caller's active device sessions. The optional
// X-Refresh-Token header lets the client mark its own session as current.
func (h *AuthHandler) handleSessions(w http.ResponseWriter, r *http.Request) {
	defer h.observe("auth_sessions", time.Now())
	ctx := r.Context()

	result, err := h.auth.Sessions(ctx, middleware.GetUserID(ctx), r.Header.Get("X-Refresh-Token"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}
