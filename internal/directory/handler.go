package directory

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/transport"
	"github.com/frahmantamala/drive-sharing/pkg/logger"
)

type ServiceAPI interface {
	GetByID(ctx context.Context, id int64) (*User, error)
	SearchUsers(ctx context.Context, query string) ([]*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	u, err := h.Service.GetByID(r.Context(), caller.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteError(w, http.StatusNotFound, "user not found")
			return
		}
		h.Logger.Error("GetCurrentUser: service GetByID failed", "user_id", caller.ID, "error", err)
		h.WriteError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.WriteJSON(w, http.StatusOK, u.ToResponse())
}

// SearchUsers handles GET /users/search?q=
func (h *Handler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	users, err := h.Service.SearchUsers(r.Context(), query)
	if err != nil {
		h.Logger.Error("SearchUsers: service error", "error", err)
		h.WriteError(w, http.StatusInternalServerError, "failed to search users")
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, u.ToResponse())
	}

	h.WriteJSON(w, http.StatusOK, UsersResponse{Users: responses})
}
