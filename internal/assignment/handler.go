package assignment

import (
	"context"
	"net/http"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	List(ctx context.Context, businessID string, kind Kind) ([]*Assignment, error)
	Create(ctx context.Context, businessID string, dto CreateAssignmentDTO) (*Assignment, error)
	Delete(ctx context.Context, businessID, id string) error
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

// ListAssignments handles GET /assignments?kind=evaluation|bonus
func (h *Handler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	kind := Kind(r.URL.Query().Get("kind"))
	if kind != "" && !kind.Valid() {
		h.WriteAppError(w, internal.NewValidationFieldError("kind", "kind must be evaluation or bonus", internal.ErrCodeInvalidMode))
		return
	}

	list, err := h.Service.List(r.Context(), actor.BusinessID, kind)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	resp := AssignmentsResponse{Assignments: make([]AssignmentResponse, 0, len(list))}
	for _, a := range list {
		resp.Assignments = append(resp.Assignments, a.ToResponse())
	}
	h.WriteJSON(w, http.StatusOK, resp)
}

// CreateAssignment handles POST /assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto CreateAssignmentDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Create(r.Context(), actor.BusinessID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, a.ToResponse())
}

// DeleteAssignment handles DELETE /assignments/{id}
func (h *Handler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := h.Service.Delete(r.Context(), actor.BusinessID, chi.URLParam(r, "id")); err != nil {
		h.WriteAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
