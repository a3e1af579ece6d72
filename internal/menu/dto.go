// AngelaMos | 2026
// dto.go

package menu

import (
	"encoding/json"
	"time"
)

type CreateMenuRequest struct {
	Name   string `json:"name"   validate:"required,min=2,max=255"`
	Active *bool  `json:"active"`
}

type UpdateMenuRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=2,max=255"`
	Active *bool   `json:"active"`
}

type CreateItemRequest struct {
	Name         string          `json:"name"         validate:"required,min=1,max=255"`
	PriceCents   int64           `json:"price_cents"  validate:"gte=0"`
	Description  *string         `json:"description"  validate:"omitempty,max=512"`
	Tags         json.RawMessage `json:"tags"`
	Availability *bool           `json:"availability"`
	Modifiers    json.RawMessage `json:"modifiers"`
}

type UpdateItemRequest struct {
	Name         *string         `json:"name"         validate:"omitempty,min=1,max=255"`
	PriceCents   *int64          `json:"price_cents"  validate:"omitempty,gte=0"`
	Description  *string         `json:"description"  validate:"omitempty,max=512"`
	Tags         json.RawMessage `json:"tags"`
	Availability *bool           `json:"availability"`
	Modifiers    json.RawMessage `json:"modifiers"`
}

type MenuResponse struct {
	ID        string    `json:"id"`
	StoreID   string    `json:"store_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	Version   int       `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ItemResponse struct {
	ID           string          `json:"id"`
	MenuID       string          `json:"menu_id"`
	Name         string          `json:"name"`
	PriceCents   int64           `json:"price_cents"`
	Description  *string         `json:"description"`
	Tags         json.RawMessage `json:"tags"`
	Availability bool            `json:"availability"`
	Modifiers    json.RawMessage `json:"modifiers"`
}
