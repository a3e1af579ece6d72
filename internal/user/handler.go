// AngelaMos | 2026
// handler.go

package user

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/zhqingit/voice-food-order/internal/auth"
	"github.com/zhqingit/voice-food-order/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes expects to be mounted inside an authenticated group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.Me)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return
	}

	core.OK(w, ProfileResponse{
		ID:        principal.ID.String(),
		Email:     principal.Email,
		IsActive:  principal.Active,
		CreatedAt: principal.CreatedAt,
	})
}
