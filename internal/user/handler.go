package user

import (
	"context"
	"net/http"

	"github.com/frahmantamala/performance-bonus/internal/transport"
)

type ServiceAPI interface {
	ListByBusiness(ctx context.Context, businessID string) ([]*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.WriteJSON(w, http.StatusOK, actor.ToResponse())
}

// ListUsers handles GET /users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	users, err := h.Service.ListByBusiness(r.Context(), actor.BusinessID)
	if err != nil {
		h.Logger.Error("ListUsers: failed to list users", "error", err, "business_id", actor.BusinessID)
		h.WriteAppError(w, err)
		return
	}

	resp := UsersResponse{Users: make([]ProfileResponse, 0, len(users))}
	for _, u := range users {
		resp.Users = append(resp.Users, u.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}
