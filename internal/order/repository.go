// AngelaMos | 2026
// repository.go

package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/zhqingit/voice-food-order/internal/core"
)

// DraftLine is one requested order line by menu item id.
type DraftLine struct {
	MenuItemID string
	Quantity   int
}

type Repository interface {
	// CreateDraft inserts the order and its lines in one transaction,
	// snapshotting each item's current price and recalculating totals.
	// Lines naming menu items that do not belong to the order's store are
	// dropped rather than rejected.
	CreateDraft(
		ctx context.Context,
		order *Order,
		lines []DraftLine,
	) ([]Item, error)

	ListForUser(ctx context.Context, userID string) ([]Order, error)
	GetForUser(ctx context.Context, userID, orderID string) (*Order, error)

	ListForStore(ctx context.Context, storeID string) ([]Order, error)
	GetForStore(ctx context.Context, storeID, orderID string) (*Order, error)
	UpdateStatus(ctx context.Context, storeID, orderID, status string) error

	ListItems(ctx context.Context, orderID string) ([]Item, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateDraft(
	ctx context.Context,
	order *Order,
	lines []DraftLine,
) ([]Item, error) {
	var items []Item

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		insertOrder := `
			INSERT INTO orders (
				id, store_id, user_id, status, channel, notes
			) VALUES (
				$1, $2, $3, $4, $5, $6
			)
			RETURNING created_at`

		err := tx.GetContext(ctx, &order.CreatedAt, insertOrder,
			order.ID,
			order.StoreID,
			order.UserID,
			order.Status,
			order.Channel,
			order.Notes,
		)
		if err != nil {
			if isForeignKeyError(err) {
				return fmt.Errorf("create order: store: %w", core.ErrNotFound)
			}
			return fmt.Errorf("create order: %w", err)
		}

		priceQuery := `
			SELECT mi.id, mi.price_cents
			FROM menu_items mi
			JOIN menus m ON m.id = mi.menu_id
			WHERE m.store_id = $1 AND mi.id = $2`

		insertItem := `
			INSERT INTO order_items (
				id, order_id, menu_item_id, quantity, price_snapshot_cents
			) VALUES (
				$1, $2, $3, $4, $5
			)`

		var subtotal int64
		for _, line := range lines {
			var priced struct {
				ID         string `db:"id"`
				PriceCents int64  `db:"price_cents"`
			}
			err := tx.GetContext(
				ctx, &priced, priceQuery, order.StoreID, line.MenuItemID,
			)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("price order line: %w", err)
			}

			item := Item{
				ID:                 uuid.New().String(),
				OrderID:            order.ID,
				MenuItemID:         priced.ID,
				Quantity:           line.Quantity,
				PriceSnapshotCents: priced.PriceCents,
			}
			if _, err := tx.ExecContext(ctx, insertItem,
				item.ID,
				item.OrderID,
				item.MenuItemID,
				item.Quantity,
				item.PriceSnapshotCents,
			); err != nil {
				return fmt.Errorf("create order item: %w", err)
			}

			subtotal += priced.PriceCents * int64(line.Quantity)
			items = append(items, item)
		}

		order.SubtotalCents = subtotal
		order.TaxCents = 0
		order.TotalCents = subtotal

		updateTotals := `
			UPDATE orders
			SET subtotal_cents = $2, tax_cents = $3, total_cents = $4
			WHERE id = $1`

		if _, err := tx.ExecContext(ctx, updateTotals,
			order.ID,
			order.SubtotalCents,
			order.TaxCents,
			order.TotalCents,
		); err != nil {
			return fmt.Errorf("update order totals: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return items, nil
}

const orderColumns = `
	id, store_id, user_id, status, channel, subtotal_cents, tax_cents,
	total_cents, notes, created_at`

func (r *repository) ListForUser(
	ctx context.Context,
	userID string,
) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, userID); err != nil {
		return nil, fmt.Errorf("list user orders: %w", err)
	}

	return orders, nil
}

func (r *repository) GetForUser(
	ctx context.Context,
	userID, orderID string,
) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1 AND id = $2`

	var order Order
	err := r.db.GetContext(ctx, &order, query, userID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}

func (r *repository) ListForStore(
	ctx context.Context,
	storeID string,
) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE store_id = $1
		ORDER BY created_at DESC`

	orders := []Order{}
	if err := r.db.SelectContext(ctx, &orders, query, storeID); err != nil {
		return nil, fmt.Errorf("list store orders: %w", err)
	}

	return orders, nil
}

func (r *repository) GetForStore(
	ctx context.Context,
	storeID, orderID string,
) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE store_id = $1 AND id = $2`

	var order Order
	err := r.db.GetContext(ctx, &order, query, storeID, orderID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get order: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}

func (r *repository) UpdateStatus(
	ctx context.Context,
	storeID, orderID, status string,
) error {
	query := `
		UPDATE orders
		SET status = $3
		WHERE store_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, storeID, orderID, status)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update order status: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListItems(
	ctx context.Context,
	orderID string,
) ([]Item, error) {
	query := `
		SELECT id, order_id, menu_item_id, quantity, price_snapshot_cents
		FROM order_items
		WHERE order_id = $1`

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, orderID); err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	return items, nil
}

func isForeignKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
