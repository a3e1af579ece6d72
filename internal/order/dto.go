// AngelaMos | 2026
// dto.go

package order

import "time"

type DraftLineRequest struct {
	MenuItemID string `json:"menu_item_id" validate:"required,uuid"`
	Quantity   int    `json:"quantity"     validate:"required,gte=1"`
}

type CreateOrderRequest struct {
	StoreID string             `json:"store_id" validate:"required,uuid"`
	Channel string             `json:"channel"  validate:"required,oneof=app phone voice"`
	Notes   *string            `json:"notes"    validate:"omitempty,max=1024"`
	Items   []DraftLineRequest `json:"items"    validate:"omitempty,dive"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted preparing ready completed cancelled"`
}

type OrderResponse struct {
	ID            string    `json:"id"`
	StoreID       string    `json:"store_id"`
	UserID        *string   `json:"user_id"`
	Status        string    `json:"status"`
	Channel       string    `json:"channel"`
	SubtotalCents int64     `json:"subtotal_cents"`
	TaxCents      int64     `json:"tax_cents"`
	TotalCents    int64     `json:"total_cents"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
}

type ItemResponse struct {
	ID                 string `json:"id"`
	OrderID            string `json:"order_id"`
	MenuItemID         string `json:"menu_item_id"`
	Quantity           int    `json:"quantity"`
	PriceSnapshotCents int64  `json:"price_snapshot_cents"`
}
