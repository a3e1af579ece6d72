// AngelaMos | 2026
// handler.go

package menu

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

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
// the store portal.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/menus", func(r chi.Router) {
		r.Get("/", h.ListMenus)
		r.Post("/", h.CreateMenu)

		r.Route("/{menuID}", func(r chi.Router) {
			r.Get("/", h.GetMenu)
			r.Patch("/", h.UpdateMenu)
			r.Delete("/", h.DeleteMenu)

			r.Route("/items", func(r chi.Router) {
				r.Get("/", h.ListItems)
				r.Post("/", h.CreateItem)
				r.Patch("/{itemID}", h.UpdateItem)
				r.Delete("/{itemID}", h.DeleteItem)
			})
		})
	})
}

func (h *Handler) ListMenus(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	menus, err := h.service.ListMenus(r.Context(), storeID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	out := make([]MenuResponse, 0, len(menus))
	for i := range menus {
		out = append(out, toMenuResponse(&menus[i]))
	}
	core.OK(w, out)
}

func (h *Handler) CreateMenu(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	var req CreateMenuRequest
	if !h.decode(w, r, &req) {
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	menu, err := h.service.CreateMenu(r.Context(), storeID, req.Name, active)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, toMenuResponse(menu))
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	menu, err := h.service.GetMenu(r.Context(), storeID, chi.URLParam(r, "menuID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, toMenuResponse(menu))
}

func (h *Handler) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	var req UpdateMenuRequest
	if !h.decode(w, r, &req) {
		return
	}

	menu, err := h.service.UpdateMenu(
		r.Context(),
		storeID,
		chi.URLParam(r, "menuID"),
		req.Name,
		req.Active,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, toMenuResponse(menu))
}

func (h *Handler) DeleteMenu(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteMenu(r.Context(), storeID, chi.URLParam(r, "menuID"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListItems(
		r.Context(),
		storeID,
		chi.URLParam(r, "menuID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	core.OK(w, out)
}

func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	var req CreateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	availability := true
	if req.Availability != nil {
		availability = *req.Availability
	}

	item, err := h.service.CreateItem(
		r.Context(),
		storeID,
		chi.URLParam(r, "menuID"),
		ItemParams{
			Name:         req.Name,
			PriceCents:   req.PriceCents,
			Description:  req.Description,
			Tags:         jsonText(req.Tags),
			Availability: availability,
			Modifiers:    jsonText(req.Modifiers),
		},
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, toItemResponse(item))
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	var req UpdateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	item, err := h.service.UpdateItem(
		r.Context(),
		storeID,
		chi.URLParam(r, "menuID"),
		chi.URLParam(r, "itemID"),
		ItemUpdate{
			Name:         req.Name,
			PriceCents:   req.PriceCents,
			Description:  req.Description,
			Tags:         jsonText(req.Tags),
			Availability: req.Availability,
			Modifiers:    jsonText(req.Modifiers),
		},
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, toItemResponse(item))
}

func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	storeID, ok := h.storeID(w, r)
	if !ok {
		return
	}

	err := h.service.DeleteItem(
		r.Context(),
		storeID,
		chi.URLParam(r, "menuID"),
		chi.URLParam(r, "itemID"),
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) storeID(
	w http.ResponseWriter,
	r *http.Request,
) (uuid.UUID, bool) {
	storeID := auth.PrincipalIDFromContext(r.Context())
	if storeID == uuid.Nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return uuid.Nil, false
	}
	return storeID, true
}

func (h *Handler) decode(
	w http.ResponseWriter,
	r *http.Request,
	dst any,
) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		core.BadRequest(w, "invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "menu")
		return
	}
	core.JSONError(w, err)
}

func toMenuResponse(menu *Menu) MenuResponse {
	return MenuResponse{
		ID:        menu.ID,
		StoreID:   menu.StoreID,
		Name:      menu.Name,
		Active:    menu.Active,
		Version:   menu.Version,
		UpdatedAt: menu.UpdatedAt,
	}
}

func toItemResponse(item *Item) ItemResponse {
	return ItemResponse{
		ID:           item.ID,
		MenuID:       item.MenuID,
		Name:         item.Name,
		PriceCents:   item.PriceCents,
		Description:  item.Description,
		Tags:         json.RawMessage(item.Tags),
		Availability: item.Availability,
		Modifiers:    json.RawMessage(item.Modifiers),
	}
}

func jsonText(raw json.RawMessage) types.JSONText {
	if raw == nil {
		return nil
	}
	return types.JSONText(raw)
}
