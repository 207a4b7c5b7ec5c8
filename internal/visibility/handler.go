package visibility

import (
	"context"
	"net/http"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
)

type ServiceAPI interface {
	Team(ctx context.Context, actor *user.User, mode Mode) (*Team, error)
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

// GetTeam handles GET /team?mode=evaluation|bonus
func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	actor, ok := user.ActorFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	raw := r.URL.Query().Get("mode")
	if raw == "" {
		raw = string(ModeEvaluation)
	}
	mode, err := ParseMode(raw)
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("mode", "mode must be one of [evaluation bonus]", internal.ErrCodeInvalidMode))
		return
	}

	team, err := h.Service.Team(r.Context(), actor, mode)
	if err != nil {
		h.Logger.Error("GetTeam: failed to compute team", "error", err, "actor_id", actor.ID)
		h.WriteAppError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, NewTeamResponse(team, mode))
}
