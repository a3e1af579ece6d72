// AngelaMos | 2026
// service.go

package voice

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Start(
	ctx context.Context,
	userID uuid.UUID,
	storeID uuid.UUID,
	channel string,
) (*Session, error) {
	session := &Session{
		ID:      uuid.New().String(),
		StoreID: storeID.String(),
		UserID:  userID.String(),
		Channel: channel,
		Status:  StatusActive,
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return nil, err
	}

	return session, nil
}

// End closes an active session. The owner check keeps one diner from
// ending another's conversation; a foreign or unknown id reads as 404.
func (s *Service) End(
	ctx context.Context,
	userID uuid.UUID,
	sessionID string,
) (*Session, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsActive() {
		if err := s.repo.End(ctx, session.ID, time.Now().UTC()); err != nil {
			return nil, err
		}
	}

	return s.repo.GetByID(ctx, session.ID)
}

// ActiveOwned resolves a session for the websocket upgrade: it must
// exist, belong to the caller, and still be active.
func (s *Service) ActiveOwned(
	ctx context.Context,
	userID uuid.UUID,
	sessionID string,
) (*Session, error) {
	session, err := s.loadOwned(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}

	if !session.IsActive() {
		return nil, core.NewAppError(
			http.StatusConflict,
			core.CodeConflict,
			"voice session already ended",
		)
	}

	return session, nil
}

func (s *Service) loadOwned(
	ctx context.Context,
	userID uuid.UUID,
	sessionID string,
) (*Session, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("parse session id: %w", core.ErrNotFound)
	}

	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.UserID != userID.String() {
		return nil, fmt.Errorf("voice session: %w", core.ErrNotFound)
	}

	return session, nil
}
