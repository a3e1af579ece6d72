// AngelaMos | 2026
// service.go

package order

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// DraftParams describes a new draft order placed by a diner.
type DraftParams struct {
	StoreID uuid.UUID
	Channel string
	Notes   *string
	Lines   []DraftLine
}

func (s *Service) CreateDraft(
	ctx context.Context,
	userID uuid.UUID,
	params DraftParams,
) (*Order, []Item, error) {
	uid := userID.String()
	order := &Order{
		ID:      uuid.New().String(),
		StoreID: params.StoreID.String(),
		UserID:  &uid,
		Status:  StatusDraft,
		Channel: params.Channel,
		Notes:   params.Notes,
	}

	items, err := s.repo.CreateDraft(ctx, order, params.Lines)
	if err != nil {
		return nil, nil, err
	}

	return order, items, nil
}

func (s *Service) ListForUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]Order, error) {
	return s.repo.ListForUser(ctx, userID.String())
}

func (s *Service) GetForUser(
	ctx context.Context,
	userID uuid.UUID,
	orderID string,
) (*Order, error) {
	if err := checkID(orderID); err != nil {
		return nil, err
	}
	return s.repo.GetForUser(ctx, userID.String(), orderID)
}

func (s *Service) ItemsForUser(
	ctx context.Context,
	userID uuid.UUID,
	orderID string,
) ([]Item, error) {
	order, err := s.GetForUser(ctx, userID, orderID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, order.ID)
}

func (s *Service) ListForStore(
	ctx context.Context,
	storeID uuid.UUID,
) ([]Order, error) {
	return s.repo.ListForStore(ctx, storeID.String())
}

func (s *Service) GetForStore(
	ctx context.Context,
	storeID uuid.UUID,
	orderID string,
) (*Order, error) {
	if err := checkID(orderID); err != nil {
		return nil, err
	}
	return s.repo.GetForStore(ctx, storeID.String(), orderID)
}

func (s *Service) ItemsForStore(
	ctx context.Context,
	storeID uuid.UUID,
	orderID string,
) ([]Item, error) {
	order, err := s.GetForStore(ctx, storeID, orderID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListItems(ctx, order.ID)
}

func (s *Service) UpdateStatus(
	ctx context.Context,
	storeID uuid.UUID,
	orderID, status string,
) (*Order, error) {
	if err := checkID(orderID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateStatus(
		ctx, storeID.String(), orderID, status,
	); err != nil {
		return nil, err
	}

	return s.repo.GetForStore(ctx, storeID.String(), orderID)
}

// Malformed order ids read as absent, same as foreign ones.
func checkID(orderID string) error {
	if _, err := uuid.Parse(orderID); err != nil {
		return fmt.Errorf("parse order id: %w", core.ErrNotFound)
	}
	return nil
}
