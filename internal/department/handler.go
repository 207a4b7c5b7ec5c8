package department

import (
	"context"
	"net/http"

	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Tree(ctx context.Context, businessID string) (*Tree, error)
	ParentOptions(ctx context.Context, businessID, excludeID string) ([]Entry, error)
	Create(ctx context.Context, businessID string, dto CreateDepartmentDTO) (*Department, error)
	Update(ctx context.Context, businessID, id string, dto UpdateDepartmentDTO) (*Department, error)
	Deactivate(ctx context.Context, businessID, id string) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetTree handles GET /departments
func (h *Handler) GetTree(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	tree, err := h.Service.Tree(r.Context(), actor.BusinessID)
	if err != nil {
		h.Logger.Error("GetTree: failed to build department tree", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewTreeResponse(tree))
}

// GetParentOptions handles GET /departments/options?exclude={id}
func (h *Handler) GetParentOptions(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	entries, err := h.Service.ParentOptions(r.Context(), actor.BusinessID, r.URL.Query().Get("exclude"))
	if err != nil {
		h.Logger.Error("GetParentOptions: failed to flatten departments", "error", err)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewOptionsResponse(entries))
}

// CreateDepartment handles POST /departments
func (h *Handler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Create(r.Context(), actor.BusinessID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, d.ToResponse())
}

// UpdateDepartment handles PATCH /departments/{id}
func (h *Handler) UpdateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto UpdateDepartmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	d, err := h.Service.Update(r.Context(), actor.BusinessID, chi.URLParam(r, "id"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, d.ToResponse())
}

// DeactivateDepartment handles DELETE /departments/{id}
func (h *Handler) DeactivateDepartment(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.Deactivate(r.Context(), actor.BusinessID, chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
