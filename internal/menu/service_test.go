// AngelaMos | 2026
// service_test.go

package menu

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type fakeRepo struct {
	menus map[string]*Menu
	items map[string]*Item
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		menus: make(map[string]*Menu),
		items: make(map[string]*Item),
	}
}

func (r *fakeRepo) ListMenus(
	_ context.Context,
	storeID string,
) ([]Menu, error) {
	out := []Menu{}
	for _, menu := range r.menus {
		if menu.StoreID == storeID {
			out = append(out, *menu)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (r *fakeRepo) GetMenu(
	_ context.Context,
	storeID, menuID string,
) (*Menu, error) {
	menu, ok := r.menus[menuID]
	if !ok || menu.StoreID != storeID {
		return nil, fmt.Errorf("get menu: %w", core.ErrNotFound)
	}
	copied := *menu
	return &copied, nil
}

func (r *fakeRepo) CreateMenu(_ context.Context, menu *Menu) error {
	maxVersion := 0
	for _, existing := range r.menus {
		if existing.StoreID == menu.StoreID && existing.Version > maxVersion {
			maxVersion = existing.Version
		}
	}
	menu.Version = maxVersion + 1
	menu.UpdatedAt = time.Now()

	stored := *menu
	r.menus[menu.ID] = &stored
	return nil
}

func (r *fakeRepo) UpdateMenu(_ context.Context, menu *Menu) error {
	if _, ok := r.menus[menu.ID]; !ok {
		return fmt.Errorf("update menu: %w", core.ErrNotFound)
	}
	menu.UpdatedAt = time.Now()
	stored := *menu
	r.menus[menu.ID] = &stored
	return nil
}

func (r *fakeRepo) DeleteMenu(_ context.Context, menuID string) error {
	if _, ok := r.menus[menuID]; !ok {
		return fmt.Errorf("delete menu: %w", core.ErrNotFound)
	}
	delete(r.menus, menuID)
	for itemID, item := range r.items {
		if item.MenuID == menuID {
			delete(r.items, itemID)
		}
	}
	return nil
}

func (r *fakeRepo) ListItems(
	_ context.Context,
	menuID string,
) ([]Item, error) {
	out := []Item{}
	for _, item := range r.items {
		if item.MenuID == menuID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *fakeRepo) GetItem(
	_ context.Context,
	menuID, itemID string,
) (*Item, error) {
	item, ok := r.items[itemID]
	if !ok || item.MenuID != menuID {
		return nil, fmt.Errorf("get menu item: %w", core.ErrNotFound)
	}
	copied := *item
	return &copied, nil
}

func (r *fakeRepo) CreateItem(_ context.Context, item *Item) error {
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeRepo) UpdateItem(_ context.Context, item *Item) error {
	if _, ok := r.items[item.ID]; !ok {
		return fmt.Errorf("update menu item: %w", core.ErrNotFound)
	}
	stored := *item
	r.items[item.ID] = &stored
	return nil
}

func (r *fakeRepo) DeleteItem(_ context.Context, menuID, itemID string) error {
	item, ok := r.items[itemID]
	if !ok || item.MenuID != menuID {
		return fmt.Errorf("delete menu item: %w", core.ErrNotFound)
	}
	delete(r.items, itemID)
	return nil
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestServiceMenuVersioning(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	storeID := uuid.New()

	first, err := svc.CreateMenu(ctx, storeID, "Lunch", true)
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("version = %d, want 1", first.Version)
	}

	second, err := svc.CreateMenu(ctx, storeID, "Dinner", true)
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}
	if second.Version != 2 {
		t.Fatalf("version = %d, want 2", second.Version)
	}

	// A real edit bumps the version.
	updated, err := svc.UpdateMenu(
		ctx, storeID, first.ID, strPtr("Lunch Specials"), nil,
	)
	if err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	if updated.Version != 2 {
		t.Fatalf("version after edit = %d, want 2", updated.Version)
	}

	// A no-op patch does not.
	same, err := svc.UpdateMenu(
		ctx, storeID, first.ID, strPtr("Lunch Specials"), boolPtr(true),
	)
	if err != nil {
		t.Fatalf("UpdateMenu: %v", err)
	}
	if same.Version != 2 {
		t.Fatalf("version after no-op = %d, want 2", same.Version)
	}
}

func TestServiceMenuScopedToStore(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())

	menu, err := svc.CreateMenu(ctx, uuid.New(), "Lunch", true)
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}

	// Another store's id reads as absent, as does a malformed one.
	if _, err := svc.GetMenu(ctx, uuid.New(), menu.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign get err = %v, want not found", err)
	}
	if err := svc.DeleteMenu(ctx, uuid.New(), menu.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign delete err = %v, want not found", err)
	}
	if _, err := svc.GetMenu(ctx, uuid.New(), "not-a-uuid"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("malformed id err = %v, want not found", err)
	}
}

func TestServiceItemLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newFakeRepo())
	storeID := uuid.New()

	menu, err := svc.CreateMenu(ctx, storeID, "Lunch", true)
	if err != nil {
		t.Fatalf("CreateMenu: %v", err)
	}

	item, err := svc.CreateItem(ctx, storeID, menu.ID, ItemParams{
		Name:         "Pad Thai",
		PriceCents:   1250,
		Availability: true,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if string(item.Tags) != "[]" || string(item.Modifiers) != "{}" {
		t.Fatalf(
			"defaults tags=%s modifiers=%s, want empty collections",
			item.Tags, item.Modifiers,
		)
	}

	updated, err := svc.UpdateItem(ctx, storeID, menu.ID, item.ID, ItemUpdate{
		PriceCents:   int64Ptr(1395),
		Availability: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.PriceCents != 1395 || updated.Availability {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.Name != "Pad Thai" {
		t.Fatalf("untouched field changed: %q", updated.Name)
	}

	// Item access rides on menu ownership.
	_, err = svc.UpdateItem(ctx, uuid.New(), menu.ID, item.ID, ItemUpdate{})
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("foreign update err = %v, want not found", err)
	}

	if err := svc.DeleteItem(ctx, storeID, menu.ID, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	items, err := svc.ListItems(ctx, storeID, menu.ID)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("items = %d, want 0", len(items))
	}
}

func int64Ptr(v int64) *int64 { return &v }
