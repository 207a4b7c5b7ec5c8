package bonus

import (
	"context"
	"net/http"
	"strconv"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Load(ctx context.Context, actor *user.User, departmentID string, year int) (*Allocation, error)
	AutoAllocate(ctx context.Context, actor *user.User, departmentID string, year int, dto AutoAllocateDTO) (*Allocation, error)
	Adjust(ctx context.Context, actor *user.User, departmentID string, year int, userID string, dto AdjustDTO) (*Allocation, error)
	Save(ctx context.Context, actor *user.User, departmentID string, year int, dto SaveAllocationDTO) (*Allocation, error)
	Finalize(ctx context.Context, actor *user.User, departmentID string, year int, dto FinalizeDTO) (*Allocation, error)
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

// target reads the actor and the {departmentID}/{year} path. It writes the
// error response itself and returns ok=false on failure.
func (h *Handler) target(w http.ResponseWriter, r *http.Request) (*user.User, string, int, bool) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return nil, "", 0, false
	}

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("year", "year must be a number", internal.ErrCodeInvalidYear))
		return nil, "", 0, false
	}

	return actor, chi.URLParam(r, "departmentID"), year, true
}

// GetAllocation handles GET /allocations/{departmentID}/{year}
func (h *Handler) GetAllocation(w http.ResponseWriter, r *http.Request) {
	actor, departmentID, year, ok := h.target(w, r)
	if !ok {
		return
	}

	a, err := h.Service.Load(r.Context(), actor, departmentID, year)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewAllocationResponse(a))
}

// AutoAllocate handles POST /allocations/{departmentID}/{year}/auto
func (h *Handler) AutoAllocate(w http.ResponseWriter, r *http.Request) {
	actor, departmentID, year, ok := h.target(w, r)
	if !ok {
		return
	}

	var dto AutoAllocateDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.AutoAllocate(r.Context(), actor, departmentID, year, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewAllocationResponse(a))
}

// AdjustMember handles PATCH /allocations/{departmentID}/{year}/members/{userID}
func (h *Handler) AdjustMember(w http.ResponseWriter, r *http.Request) {
	actor, departmentID, year, ok := h.target(w, r)
	if !ok {
		return
	}

	var dto AdjustDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Adjust(r.Context(), actor, departmentID, year, chi.URLParam(r, "userID"), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewAllocationResponse(a))
}

// SaveAllocation handles PUT /allocations/{departmentID}/{year}
func (h *Handler) SaveAllocation(w http.ResponseWriter, r *http.Request) {
	actor, departmentID, year, ok := h.target(w, r)
	if !ok {
		return
	}

	var dto SaveAllocationDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	a, err := h.Service.Save(r.Context(), actor, departmentID, year, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewAllocationResponse(a))
}

// FinalizeAllocation handles POST /allocations/{departmentID}/{year}/finalize
func (h *Handler) FinalizeAllocation(w http.ResponseWriter, r *http.Request) {
	actor, departmentID, year, ok := h.target(w, r)
	if !ok {
		return
	}

	var dto FinalizeDTO
	if r.ContentLength != 0 {
		if err := h.DecodeJSON(r, &dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	a, err := h.Service.Finalize(r.Context(), actor, departmentID, year, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewAllocationResponse(a))
}
