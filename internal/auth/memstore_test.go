// AngelaMos | 2026
// memstore_test.go

package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zhqingit/voice-food-order/internal/core"
)

// memStore is an in-memory Store for ledger tests. The mutex held for the
// whole transaction stands in for the session row lock; a snapshot taken
// at entry gives rollback-on-error the same semantics as the SQL store.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]*RefreshSession
	tokens   map[string]*RefreshToken
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]*RefreshSession),
		tokens:   make(map[string]*RefreshToken),
	}
}

func (s *memStore) InTx(ctx context.Context, fn func(Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapSessions := snapshot(s.sessions)
	snapTokens := snapshot(s.tokens)

	if err := fn(&memRepo{store: s}); err != nil {
		s.sessions = snapSessions
		s.tokens = snapTokens
		return err
	}

	return nil
}

func snapshot[V any](m map[string]*V) map[string]*V {
	out := make(map[string]*V, len(m))
	for k, v := range m {
		copied := *v
		out[k] = &copied
	}
	return out
}

type memRepo struct {
	store *memStore
}

func (r *memRepo) CreateSession(
	_ context.Context,
	session *RefreshSession,
) error {
	if _, ok := r.store.sessions[session.ID]; ok {
		return fmt.Errorf("create session: %w", core.ErrDuplicateKey)
	}

	session.CreatedAt = time.Now()
	stored := *session
	r.store.sessions[session.ID] = &stored
	return nil
}

func (r *memRepo) CreateToken(_ context.Context, token *RefreshToken) error {
	if _, ok := r.store.tokens[token.ID]; ok {
		return fmt.Errorf("create token: %w", core.ErrDuplicateKey)
	}

	// Mirrors idx_refresh_tokens_active: at most one active token per
	// session, checked at insert time.
	for _, existing := range r.store.tokens {
		if existing.SessionID == token.SessionID && existing.IsActive() {
			return fmt.Errorf(
				"create token: active token exists for session: %w",
				core.ErrDuplicateKey,
			)
		}
	}

	token.CreatedAt = time.Now()
	stored := *token
	r.store.tokens[token.ID] = &stored
	return nil
}

func (r *memRepo) GetSessionForUpdate(
	_ context.Context,
	id string,
) (*RefreshSession, error) {
	session, ok := r.store.sessions[id]
	if !ok {
		return nil, fmt.Errorf("get session: %w", core.ErrNotFound)
	}

	copied := *session
	return &copied, nil
}

func (r *memRepo) ActiveToken(
	_ context.Context,
	sessionID string,
) (*RefreshToken, error) {
	for _, token := range r.store.tokens {
		if token.SessionID == sessionID && token.IsActive() {
			copied := *token
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("active token: %w", core.ErrNotFound)
}

func (r *memRepo) FindTokenBySecretHash(
	_ context.Context,
	sessionID, secretHash string,
) (*RefreshToken, error) {
	for _, token := range r.store.tokens {
		if token.SessionID == sessionID && token.SecretHash == secretHash {
			copied := *token
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("find token: %w", core.ErrNotFound)
}

func (r *memRepo) MarkRotated(
	_ context.Context,
	tokenID, replacedByID string,
) error {
	token, ok := r.store.tokens[tokenID]
	if !ok || !token.IsActive() {
		return fmt.Errorf("mark rotated: %w", core.ErrNotFound)
	}

	now := time.Now()
	token.RevokedAt = &now
	token.ReplacedByID = &replacedByID
	return nil
}

func (r *memRepo) RevokeSessionCascade(
	_ context.Context,
	sessionID string,
) error {
	now := time.Now()

	if session, ok := r.store.sessions[sessionID]; ok {
		if session.RevokedAt == nil {
			session.RevokedAt = &now
		}
	}

	for _, token := range r.store.tokens {
		if token.SessionID == sessionID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}

	return nil
}

func (r *memRepo) RevokeSessionsForPrincipal(
	_ context.Context,
	kind PrincipalKind,
	principalID string,
	audience *Audience,
) (int64, error) {
	now := time.Now()
	var revoked int64

	for _, session := range r.store.sessions {
		if session.PrincipalKind != string(kind) ||
			session.PrincipalID != principalID ||
			session.RevokedAt != nil {
			continue
		}
		if audience != nil && session.Audience != string(*audience) {
			continue
		}

		session.RevokedAt = &now
		revoked++

		for _, token := range r.store.tokens {
			if token.SessionID == session.ID && token.RevokedAt == nil {
				token.RevokedAt = &now
			}
		}
	}

	return revoked, nil
}

func (r *memRepo) CountLiveSessions(
	_ context.Context,
	kind PrincipalKind,
	principalID string,
) (int, error) {
	now := time.Now()
	count := 0

	for _, session := range r.store.sessions {
		if session.PrincipalKind == string(kind) &&
			session.PrincipalID == principalID &&
			session.IsLive(now) {
			count++
		}
	}

	return count, nil
}

func (r *memRepo) DeleteExpiredSessions(
	_ context.Context,
	cutoff time.Time,
) (int64, error) {
	var deleted int64

	for id, session := range r.store.sessions {
		if session.ExpiresAt.Before(cutoff) {
			delete(r.store.sessions, id)
			deleted++

			for tokenID, token := range r.store.tokens {
				if token.SessionID == id {
					delete(r.store.tokens, tokenID)
				}
			}
		}
	}

	return deleted, nil
}

// test helpers over the raw maps

func (s *memStore) activeTokenCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, token := range s.tokens {
		if token.SessionID == sessionID && token.IsActive() {
			count++
		}
	}
	return count
}

func (s *memStore) session(id string) *RefreshSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		copied := *session
		return &copied
	}
	return nil
}

func (s *memStore) tokenCount(sessionID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, token := range s.tokens {
		if token.SessionID == sessionID {
			count++
		}
	}
	return count
}

func (s *memStore) expireSession(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.ExpiresAt = time.Now().Add(-time.Hour)
	}
}

func (s *memStore) backdateSession(id string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		session.ExpiresAt = expiresAt
	}
}
