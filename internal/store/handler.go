// AngelaMos | 2026
// handler.go

package store

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zhqingit/voice-food-order/internal/auth"
	"github.com/zhqingit/voice-food-order/internal/core"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes expects to be mounted inside an authenticated group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/me", h.Me)
	r.Patch("/me", h.UpdateMe)
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return
	}

	profile, err := h.service.GetProfile(r.Context(), principal.ID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toProfileResponse(profile))
}

func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	principal := auth.PrincipalFromContext(r.Context())
	if principal == nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	profile, err := h.service.UpdateProfile(
		r.Context(),
		principal.ID,
		req.Name,
		req.Phone,
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, toProfileResponse(profile))
}

func toProfileResponse(store *Store) ProfileResponse {
	return ProfileResponse{
		ID:        store.ID,
		Email:     store.Email,
		Name:      store.Name,
		Phone:     store.Phone,
		IsActive:  store.IsActive,
		CreatedAt: store.CreatedAt,
	}
}
