// AngelaMos | 2026
// handler.go

package voice

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

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

// RegisterRoutes expects to be mounted inside an authenticated group on
// the user portal.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Post("/{sessionID}/end", h.End)
	})
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID := auth.PrincipalIDFromContext(r.Context())
	if userID == uuid.Nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	channel := req.Channel
	if channel == "" {
		channel = "app"
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		core.BadRequest(w, "store_id must be a uuid")
		return
	}

	session, err := h.service.Start(r.Context(), userID, storeID, channel)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toSessionResponse(session))
}

func (h *Handler) End(w http.ResponseWriter, r *http.Request) {
	userID := auth.PrincipalIDFromContext(r.Context())
	if userID == uuid.Nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return
	}

	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.service.End(r.Context(), userID, sessionID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "voice session")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.OK(w, toSessionResponse(session))
}
