package sharing

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/drive-sharing/internal"
	"github.com/frahmantamala/drive-sharing/internal/transport"
	"github.com/frahmantamala/drive-sharing/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	AccessLevels() []AccessLevel
	ShareItem(ctx context.Context, ownerID int64, target TargetRef, granteeEmail string, accessLevelID int64) (*Grant, error)
	UpdateAccess(ctx context.Context, grantID int64, newAccessLevelID int64) (*Grant, error)
	RevokeAccess(ctx context.Context, grantID int64) error
	GetGrant(ctx context.Context, grantID int64) (*Grant, error)
	ListGrantsForItem(ctx context.Context, target TargetRef, opts ListOptions) ([]*Grant, error)
	ListSharedWithUser(ctx context.Context, userID int64, opts ListOptions) ([]*Grant, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// GetAccessLevels handles GET /access-levels
func (h *Handler) GetAccessLevels(w http.ResponseWriter, r *http.Request) {
	h.WriteJSON(w, http.StatusOK, AccessLevelsResponse{AccessLevels: h.Service.AccessLevels()})
}

// ShareItem handles POST /shares
func (h *Handler) ShareItem(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ShareItemDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ShareItem: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	target, err := ParseTarget(dto.TargetKind, dto.TargetID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	grant, err := h.Service.ShareItem(r.Context(), user.ID, target, dto.Email, dto.AccessLevelID)
	if err != nil {
		h.Logger.Error("ShareItem: service error", "error", err, "user_id", user.ID, "target", target.String())
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, grant.ToResponse())
}

// UpdateAccess handles PATCH /shares/{id}
func (h *Handler) UpdateAccess(w http.ResponseWriter, r *http.Request) {
	user, grantID, ok := h.ownerRequest(w, r)
	if !ok {
		return
	}

	var dto UpdateAccessDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateAccess: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := dto.Validate(); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	grant, err := h.Service.UpdateAccess(r.Context(), grantID, dto.AccessLevelID)
	if err != nil {
		h.Logger.Error("UpdateAccess: service error", "error", err, "grant_id", grantID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, grant.ToResponse())
}

// RevokeAccess handles DELETE /shares/{id}
func (h *Handler) RevokeAccess(w http.ResponseWriter, r *http.Request) {
	user, grantID, ok := h.ownerRequest(w, r)
	if !ok {
		return
	}

	if err := h.Service.RevokeAccess(r.Context(), grantID); err != nil {
		h.Logger.Error("RevokeAccess: service error", "error", err, "grant_id", grantID, "user_id", user.ID)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListSharedWithMe handles GET /shares/with-me
func (h *Handler) ListSharedWithMe(w http.ResponseWriter, r *http.Request) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	opts, err := listOptionsFromQuery(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	grants, err := h.Service.ListSharedWithUser(r.Context(), user.ID, opts)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toGrantsResponse(grants))
}

// ListFileGrants handles GET /files/{id}/shares
func (h *Handler) ListFileGrants(w http.ResponseWriter, r *http.Request) {
	h.listTargetGrants(w, r, TargetFile)
}

// ListFolderGrants handles GET /folders/{id}/shares
func (h *Handler) ListFolderGrants(w http.ResponseWriter, r *http.Request) {
	h.listTargetGrants(w, r, TargetFolder)
}

func (h *Handler) listTargetGrants(w http.ResponseWriter, r *http.Request, kind TargetKind) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid "+string(kind)+" ID")
		return
	}

	target, err := ParseTarget(string(kind), id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	opts, err := listOptionsFromQuery(r)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	grants, err := h.Service.ListGrantsForItem(r.Context(), target, opts)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, toGrantsResponse(grants))
}

// ownerRequest resolves the caller and the {id} grant and writes the error response
// unless the caller owns that grant.
func (h *Handler) ownerRequest(w http.ResponseWriter, r *http.Request) (*internal.User, int64, bool) {
	user, ok := internal.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, 0, false
	}

	idStr := chi.URLParam(r, "id")
	grantID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid grant ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid grant ID")
		return nil, 0, false
	}

	grant, err := h.Service.GetGrant(r.Context(), grantID)
	if err != nil {
		h.HandleServiceError(w, err)
		return nil, 0, false
	}

	if !grant.IsOwnedBy(user.ID) {
		h.Logger.Warn("grant change denied: caller is not the owner", "grant_id", grantID, "user_id", user.ID, "owner_id", grant.OwnerID)
		h.HandleServiceError(w, ErrNotGrantOwner)
		return nil, 0, false
	}

	return user, grantID, true
}

// listOptionsFromQuery reads ?active=. An absent value lists revoked grants too.
func listOptionsFromQuery(r *http.Request) (ListOptions, error) {
	raw := r.URL.Query().Get("active")
	if raw == "" {
		return ListOptions{}, nil
	}
	activeOnly, err := strconv.ParseBool(raw)
	if err != nil {
		return ListOptions{}, internal.NewValidationFieldError("active", "active must be true or false", internal.ErrCodeValidationFailed)
	}
	return ListOptions{ActiveOnly: activeOnly}, nil
}
