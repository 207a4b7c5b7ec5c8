package auth

import (
	"context"
	"net/http"

	"github.com/frahmantamala/performance-bonus/internal"
	"github.com/frahmantamala/performance-bonus/internal/transport"
	"github.com/frahmantamala/performance-bonus/internal/user"
	"github.com/frahmantamala/performance-bonus/pkg/logger"
)

type ServiceAPI interface {
	Authenticate(ctx context.Context, tokenString string) (*user.User, error)
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

// AuthMiddleware resolves the bearer token to the acting user and stores it
// on the request context.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteAppError(w, internal.ErrInvalidToken)
			return
		}

		actor, err := h.Service.Authenticate(r.Context(), token)
		if err != nil {
			h.WriteAppError(w, err)
			return
		}

		ctx := user.ContextWithActor(r.Context(), actor)
		ctx = internal.ContextWithUserID(ctx, actor.ID)
		ctx = internal.ContextWithBusinessID(ctx, actor.BusinessID)
		ctx = logger.With(ctx, "user_id", actor.ID, "role", string(actor.Role))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
