package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"featstack/internal/auth/models"
	"featstack/internal/platform/middleware"
	"featstack/pkg/httputil"
)

// UsersService is the slice of the admin user management service the HTTP
// layer consumes.
type UsersService interface {
	Create(ctx context.Context, req *models.CreateUserRequest) (*models.UserResult, error)
	Get(ctx context.Context, userID string) (*models.UserResult, error)
	List(ctx context.Context, page, limit int) (*models.UsersResult, error)
	Update(ctx context.Context, userID string, req *models.UpdateUserRequest) (*models.UserResult, error)
	Delete(ctx context.Context, userID string) error
}

type UsersHandler struct {
	users  UsersService
	logger *slog.Logger
}

func NewUsersHandler(users UsersService, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{users: users, logger: logger}
}

func (h *UsersHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.CreateUserRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.users.Create(ctx, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, result)
}

func (h *UsersHandler) handleList(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.List(r.Context(), queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func (h *UsersHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	result, err := h.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *UsersHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeAndPrepare[models.UpdateUserRequest](w, r, h.logger, ctx, middleware.GetRequestID(ctx))
	if !ok {
		return
	}

	result, err := h.users.Update(ctx, chi.URLParam(r, "id"), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *UsersHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.MessageResult{Message: "User deleted successfully"})
}
