// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/auth"
)

// Service owns diner accounts and exposes the slice of them the auth
// gateway needs.
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
	user := &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(params.Email)),
		PasswordHash: params.PasswordHash,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toPrincipalInfo(user)
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.PrincipalInfo, error) {
	user, err := s.repo.GetByEmail(
		ctx,
		strings.ToLower(strings.TrimSpace(email)),
	)
	if err != nil {
		return nil, err
	}

	return toPrincipalInfo(user)
}

func (s *Service) GetByID(
	ctx context.Context,
	id uuid.UUID,
) (*auth.PrincipalInfo, error) {
	user, err := s.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}

	return toPrincipalInfo(user)
}

func toPrincipalInfo(user *User) (*auth.PrincipalInfo, error) {
	id, err := uuid.Parse(user.ID)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}

	return &auth.PrincipalInfo{
		ID:           id,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Active:       user.IsActive,
		CreatedAt:    user.CreatedAt,
	}, nil
}
