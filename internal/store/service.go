// AngelaMos | 2026
// service.go

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/auth"
)

// Service owns restaurant accounts. The auth gateway sees it through the
// PrincipalProvider interface only; profile operations stay here.
type Service struct {
	repo Repository
}

var _ auth.PrincipalProvider = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(
	ctx context.Context,
	params auth.CreatePrincipalParams,
) (*auth.PrincipalInfo, error) {
	store := &Store{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(params.Email)),
		PasswordHash: params.PasswordHash,
		Name:         params.Name,
	}
	if params.Phone != "" {
		store.Phone = &params.Phone
	}

	if err := s.repo.Create(ctx, store); err != nil {
		return nil, err
	}

	return toPrincipalInfo(store)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.PrincipalInfo, error) {
	store, err := s.repo.GetByEmail(
		ctx,
		strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return nil, err
	}

	return toPrincipalInfo(store)
}

func (s *Service) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*auth.PrincipalInfo, error) {
	store, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	return toPrincipalInfo(store)
}

// GetProfile returns the full store row, not just the auth slice.
func (s *Service) GetProfile(ctx context.Context, id uuid.UUID) (*Store, error) {
	return s.repo.GetByID(ctx, id.String())
}

func (s *Service) UpdateProfile(
	ctx context.Context,
	id uuid.UUID,
	name string,
	phone *string,
) (*Store, error) {
	if err := s.repo.UpdateProfile(ctx, id.String(), name, phone); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id.String())
}

func toPrincipalInfo(store *Store) (*auth.PrincipalInfo, error) {
	id, err := uuid.Parse(store.ID)
	if err != nil {
		return nil, fmt.Errorf("parse store id: %w", err)
	}

	return &auth.PrincipalInfo{
		ID:           id,
		Email:        store.Email,
		Name:         store.Name,
		PasswordHash: store.PasswordHash,
		Active:       store.IsActive,
		CreatedAt:    store.CreatedAt,
	}, nil
}
