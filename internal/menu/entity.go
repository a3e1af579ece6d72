// AngelaMos | 2026
// entity.go

package menu

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Menu is one versioned menu owned by a store. Versions only ever go up;
// editing a menu's name or active flag bumps the version so voice clients
// can tell a stale menu from the current one.
type Menu struct {
	ID        string    `db:"id"`
	StoreID   string    `db:"store_id"`
	Name      string    `db:"name"`
	Active    bool      `db:"active"`
	Version   int       `db:"version"`
	UpdatedAt time.Time `db:"updated_at"`
}

// Item prices are integer cents; tags and modifiers are opaque JSON the
// voice layer interprets.
type Item struct {
	ID           string         `db:"id"`
	MenuID       string         `db:"menu_id"`
	Name         string         `db:"name"`
	PriceCents   int64          `db:"price_cents"`
	Description  *string        `db:"description"`
	Tags         types.JSONText `db:"tags"`
	Availability bool           `db:"availability"`
	Modifiers    types.JSONText `db:"modifiers"`
}
