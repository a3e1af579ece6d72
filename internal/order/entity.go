// AngelaMos | 2026
// entity.go

package order

import "time"

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusPreparing = "preparing"
	StatusReady     = "ready"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Order amounts are integer cents. UserID is nullable: deleting a diner
// keeps their order history for the store.
type Order struct {
	ID            string    `db:"id"`
	StoreID       string    `db:"store_id"`
	UserID        *string   `db:"user_id"`
	Status        string    `db:"status"`
	Channel       string    `db:"channel"`
	SubtotalCents int64     `db:"subtotal_cents"`
	TaxCents      int64     `db:"tax_cents"`
	TotalCents    int64     `db:"total_cents"`
	Notes         *string   `db:"notes"`
	CreatedAt     time.Time `db:"created_at"`
}

// Item snapshots the menu price at order time, so later menu edits never
// change what was agreed.
type Item struct {
	ID                 string `db:"id"`
	OrderID            string `db:"order_id"`
	MenuItemID         string `db:"menu_item_id"`
	Quantity           int    `db:"quantity"`
	PriceSnapshotCents int64  `db:"price_snapshot_cents"`
}
