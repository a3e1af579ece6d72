// AngelaMos | 2026
// handler.go

package order

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

// RegisterUserRoutes expects to be mounted inside an authenticated group
// on the user portal. Diners create orders and read their own.
func (h *Handler) RegisterUserRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListMine)
		r.Post("/", h.Create)
		r.Get("/{orderID}", h.GetMine)
		r.Get("/{orderID}/items", h.MyItems)
	})
}

// RegisterStoreRoutes expects to be mounted inside an authenticated group
// on the store portal. Stores read incoming orders and advance status.
func (h *Handler) RegisterStoreRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.ListIncoming)
		r.Get("/{orderID}", h.GetIncoming)
		r.Patch("/{orderID}", h.UpdateStatus)
		r.Get("/{orderID}/items", h.IncomingItems)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		core.BadRequest(w, "store_id must be a uuid")
		return
	}

	lines := make([]DraftLine, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, DraftLine{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}

	created, _, err := h.service.CreateDraft(r.Context(), userID, DraftParams{
		StoreID: storeID,
		Channel: req.Channel,
		Notes:   req.Notes,
		Lines:   lines,
	})
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			core.NotFound(w, "store")
			return
		}
		core.JSONError(w, err)
		return
	}

	core.Created(w, toOrderResponse(created))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	writeOrders(w, orders)
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetForUser(
		r.Context(), userID, chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, toOrderResponse(order))
}

func (h *Handler) MyItems(w http.ResponseWriter, r *http.Request) {
	userID, ok := principalID(w, r)
	if !ok {
		return
	}

	items, err := h.service.ItemsForUser(
		r.Context(), userID, chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeItems(w, items)
}

func (h *Handler) ListIncoming(w http.ResponseWriter, r *http.Request) {
	storeID, ok := principalID(w, r)
	if !ok {
		return
	}

	orders, err := h.service.ListForStore(r.Context(), storeID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	writeOrders(w, orders)
}

func (h *Handler) GetIncoming(w http.ResponseWriter, r *http.Request) {
	storeID, ok := principalID(w, r)
	if !ok {
		return
	}

	order, err := h.service.GetForStore(
		r.Context(), storeID, chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, toOrderResponse(order))
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	storeID, ok := principalID(w, r)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	order, err := h.service.UpdateStatus(
		r.Context(), storeID, chi.URLParam(r, "orderID"), req.Status,
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	core.OK(w, toOrderResponse(order))
}

func (h *Handler) IncomingItems(w http.ResponseWriter, r *http.Request) {
	storeID, ok := principalID(w, r)
	if !ok {
		return
	}

	items, err := h.service.ItemsForStore(
		r.Context(), storeID, chi.URLParam(r, "orderID"),
	)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	writeItems(w, items)
}

func principalID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id := auth.PrincipalIDFromContext(r.Context())
	if id == uuid.Nil {
		core.JSONError(w, core.NotAuthenticatedError())
		return uuid.Nil, false
	}
	return id, true
}

func writeOrderError(w http.ResponseWriter, err error) {
	if errors.Is(err, core.ErrNotFound) {
		core.NotFound(w, "order")
		return
	}
	core.JSONError(w, err)
}

func writeOrders(w http.ResponseWriter, orders []Order) {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	core.OK(w, out)
}

func writeItems(w http.ResponseWriter, items []Item) {
	out := make([]ItemResponse, 0, len(items))
	for i := range items {
		out = append(out, toItemResponse(&items[i]))
	}
	core.OK(w, out)
}

func toOrderResponse(order *Order) OrderResponse {
	return OrderResponse{
		ID:            order.ID,
		StoreID:       order.StoreID,
		UserID:        order.UserID,
		Status:        order.Status,
		Channel:       order.Channel,
		SubtotalCents: order.SubtotalCents,
		TaxCents:      order.TaxCents,
		TotalCents:    order.TotalCents,
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
	}
}

func toItemResponse(item *Item) ItemResponse {
	return ItemResponse{
		ID:                 item.ID,
		OrderID:            item.OrderID,
		MenuItemID:         item.MenuItemID,
		Quantity:           item.Quantity,
		PriceSnapshotCents: item.PriceSnapshotCents,
	}
}
