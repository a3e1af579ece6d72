// AngelaMos | 2026
// repository.go

package menu

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/zhqingit/voice-food-order/internal/core"
)

// Repository scopes every menu read and write to the owning store; an id
// that exists under another store reads as absent.
type Repository interface {
	ListMenus(ctx context.Context, storeID string) ([]Menu, error)
	GetMenu(ctx context.Context, storeID, menuID string) (*Menu, error)
	CreateMenu(ctx context.Context, menu *Menu) error
	UpdateMenu(ctx context.Context, menu *Menu) error
	DeleteMenu(ctx context.Context, menuID string) error

	ListItems(ctx context.Context, menuID string) ([]Item, error)
	GetItem(ctx context.Context, menuID, itemID string) (*Item, error)
	CreateItem(ctx context.Context, item *Item) error
	UpdateItem(ctx context.Context, item *Item) error
	DeleteItem(ctx context.Context, menuID, itemID string) error
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) ListMenus(
	ctx context.Context,
	storeID string,
) ([]Menu, error) {
	query := `
		SELECT id, store_id, name, active, version, updated_at
		FROM menus
		WHERE store_id = $1
		ORDER BY updated_at DESC`

	menus := []Menu{}
	if err := r.db.SelectContext(ctx, &menus, query, storeID); err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}

	return menus, nil
}

func (r *repository) GetMenu(
	ctx context.Context,
	storeID, menuID string,
) (*Menu, error) {
	query := `
		SELECT id, store_id, name, active, version, updated_at
		FROM menus
		WHERE store_id = $1 AND id = $2`

	var menu Menu
	err := r.db.GetContext(ctx, &menu, query, storeID, menuID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get menu: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get menu: %w", err)
	}

	return &menu, nil
}

// CreateMenu assigns the next version for the store in the same statement,
// so two creates never land on the same version.
func (r *repository) CreateMenu(ctx context.Context, menu *Menu) error {
	query := `
		INSERT INTO menus (id, store_id, name, active, version)
		SELECT $1, $2, $3, $4, COALESCE(MAX(version), 0) + 1
		FROM menus
		WHERE store_id = $2
		RETURNING version, updated_at`

	err := r.db.GetContext(ctx, menu, query,
		menu.ID,
		menu.StoreID,
		menu.Name,
		menu.Active,
	)
	if err != nil {
		return fmt.Errorf("create menu: %w", err)
	}

	return nil
}

func (r *repository) UpdateMenu(ctx context.Context, menu *Menu) error {
	query := `
		UPDATE menus
		SET name = $2, active = $3, version = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &menu.UpdatedAt, query,
		menu.ID,
		menu.Name,
		menu.Active,
		menu.Version,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update menu: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update menu: %w", err)
	}

	return nil
}

func (r *repository) DeleteMenu(ctx context.Context, menuID string) error {
	// Items go with the menu via ON DELETE CASCADE.
	query := `DELETE FROM menus WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, menuID)
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete menu: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete menu: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) ListItems(
	ctx context.Context,
	menuID string,
) ([]Item, error) {
	query := `
		SELECT id, menu_id, name, price_cents, description, tags,
		       availability, modifiers
		FROM menu_items
		WHERE menu_id = $1
		ORDER BY name ASC`

	items := []Item{}
	if err := r.db.SelectContext(ctx, &items, query, menuID); err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}

	return items, nil
}

func (r *repository) GetItem(
	ctx context.Context,
	menuID, itemID string,
) (*Item, error) {
	query := `
		SELECT id, menu_id, name, price_cents, description, tags,
		       availability, modifiers
		FROM menu_items
		WHERE menu_id = $1 AND id = $2`

	var item Item
	err := r.db.GetContext(ctx, &item, query, menuID, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get menu item: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get menu item: %w", err)
	}

	return &item, nil
}

func (r *repository) CreateItem(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO menu_items (
			id, menu_id, name, price_cents, description, tags,
			availability, modifiers
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.MenuID,
		item.Name,
		item.PriceCents,
		item.Description,
		item.Tags,
		item.Availability,
		item.Modifiers,
	)
	if err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}

	return nil
}

func (r *repository) UpdateItem(ctx context.Context, item *Item) error {
	query := `
		UPDATE menu_items
		SET name = $2, price_cents = $3, description = $4, tags = $5,
		    availability = $6, modifiers = $7
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.PriceCents,
		item.Description,
		item.Tags,
		item.Availability,
		item.Modifiers,
	)
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update menu item: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update menu item: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) DeleteItem(
	ctx context.Context,
	menuID, itemID string,
) error {
	query := `DELETE FROM menu_items WHERE menu_id = $1 AND id = $2`

	result, err := r.db.ExecContext(ctx, query, menuID, itemID)
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete menu item: %w", core.ErrNotFound)
	}

	return nil
}
