// AngelaMos | 2026
// service.go

package menu

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"

	"github.com/zhqingit/voice-food-order/internal/core"
)

var (
	emptyTags      = types.JSONText("[]")
	emptyModifiers = types.JSONText("{}")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListMenus(
	ctx context.Context,
	storeID uuid.UUID,
) ([]Menu, error) {
	return s.repo.ListMenus(ctx, storeID.String())
}

func (s *Service) CreateMenu(
	ctx context.Context,
	storeID uuid.UUID,
	name string,
	active bool,
) (*Menu, error) {
	menu := &Menu{
		ID:      uuid.New().String(),
		StoreID: storeID.String(),
		Name:    name,
		Active:  active,
	}

	if err := s.repo.CreateMenu(ctx, menu); err != nil {
		return nil, err
	}

	return menu, nil
}

func (s *Service) GetMenu(
	ctx context.Context,
	storeID uuid.UUID,
	menuID string,
) (*Menu, error) {
	return s.loadMenu(ctx, storeID, menuID)
}

// UpdateMenu applies the provided fields and bumps the version only when
// something actually changed.
func (s *Service) UpdateMenu(
	ctx context.Context,
	storeID uuid.UUID,
	menuID string,
	name *string,
	active *bool,
) (*Menu, error) {
	menu, err := s.loadMenu(ctx, storeID, menuID)
	if err != nil {
		return nil, err
	}

	touched := false
	if name != nil && *name != menu.Name {
		menu.Name = *name
		touched = true
	}
	if active != nil && *active != menu.Active {
		menu.Active = *active
		touched = true
	}

	if !touched {
		return menu, nil
	}

	menu.Version++
	if err := s.repo.UpdateMenu(ctx, menu); err != nil {
		return nil, err
	}

	return menu, nil
}

func (s *Service) DeleteMenu(
	ctx context.Context,
	storeID uuid.UUID,
	menuID string,
) error {
	menu, err := s.loadMenu(ctx, storeID, menuID)
	if err != nil {
		return err
	}

	return s.repo.DeleteMenu(ctx, menu.ID)
}

func (s *Service) ListItems(
	ctx context.Context,
	storeID uuid.UUID,
	menuID string,
) ([]Item, error) {
	menu, err := s.loadMenu(ctx, storeID, menuID)
	if err != nil {
		return nil, err
	}

	return s.repo.ListItems(ctx, menu.ID)
}

// ItemParams carries the writable fields of a menu item. Nil JSON fields
// fall back to empty collections, never SQL NULL.
type ItemParams struct {
	Name         string
	PriceCents   int64
	Description  *string
	Tags         types.JSONText
	Availability bool
	Modifiers    types.JSONText
}

func (s *Service) CreateItem(
	ctx context.Context,
	storeID uuid.UUID,
	menuID string,
	params ItemParams,
) (*Item, error) {
	menu, err := s.loadMenu(ctx, storeID, menuID)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:           uuid.New().String(),
		MenuID:       menu.ID,
		Name:         params.Name,
		PriceCents:   params.PriceCents,
		Description:  params.Description,
		Tags:         orDefault(params.Tags, emptyTags),
		Availability: params.Availability,
		Modifiers:    orDefault(params.Modifiers, emptyModifiers),
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

// ItemUpdate patches a menu item; nil fields keep their current value.
type ItemUpdate struct {
	Name         *string
	PriceCents   *int64
	Description  *string
	Tags         types.JSONText
	Availability *bool
	Modifiers    types.JSONText
}

func (s *Service) UpdateItem(
	ctx context.Context,
	storeID uuid.UUID,
	menuID, itemID string,
	update ItemUpdate,
) (*Item, error) {
	menu, err := s.loadMenu(ctx, storeID, menuID)
	if err != nil {
		return nil, err
	}

	item, err := s.loadItem(ctx, menu.ID, itemID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		item.Name = *update.Name
	}
	if update.PriceCents != nil {
		item.PriceCents = *update.PriceCents
	}
	if update.Description != nil {
		item.Description = update.Description
	}
	if update.Tags != nil {
		item.Tags = update.Tags
	}
	if update.Availability != nil {
		item.Availability = *update.Availability
	}
	if update.Modifiers != nil {
		item.Modifiers = update.Modifiers
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) DeleteItem(
	ctx context.Context,
	storeID uuid.UUID,
	menuID, itemID string,
) error {
	menu, err := s.loadMenu(ctx, storeID, menuID)
	if err != nil {
		return err
	}

	item, err := s.loadItem(ctx, menu.ID, itemID)
	if err != nil {
		return err
	}

	return s.repo.DeleteItem(ctx, menu.ID, item.ID)
}

// loadMenu resolves a menu owned by the store. Malformed and foreign ids
// both read as absent.
func (s *Service) loadMenu(
	ctx context.Context,
	storeID uuid.UUID,
	menuID string,
) (*Menu, error) {
	if _, err := uuid.Parse(menuID); err != nil {
		return nil, fmt.Errorf("parse menu id: %w", core.ErrNotFound)
	}

	return s.repo.GetMenu(ctx, storeID.String(), menuID)
}

func (s *Service) loadItem(
	ctx context.Context,
	menuID, itemID string,
) (*Item, error) {
	if _, err := uuid.Parse(itemID); err != nil {
		return nil, fmt.Errorf("parse menu item id: %w", core.ErrNotFound)
	}

	return s.repo.GetItem(ctx, menuID, itemID)
}

func orDefault(value, fallback types.JSONText) types.JSONText {
	if value == nil {
		return fallback
	}
	return value
}
