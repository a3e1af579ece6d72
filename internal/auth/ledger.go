// AngelaMos | 2026
// ledger.go

package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

const expiredRetention = 24 * time.Hour

// Ledger owns the durable refresh-session state machine: opening sessions,
// rotating refresh secrets, detecting reuse of superseded secrets, and
// revocation. All mutations run inside a single transaction; the session
// row lock serializes concurrent rotations so at most one caller wins.
type Ledger struct {
	store  Store
	ttl    time.Duration
	pepper string
}

func NewLedger(store Store, cfg config.AuthConfig) *Ledger {
	return &Ledger{
		store:  store,
		ttl:    cfg.RefreshTokenTTL,
		pepper: cfg.RefreshPepper,
	}
}

// OpenParams describes a new session. When RevokePrior is set, every live
// session for the principal is revoked in the same transaction before the
// new one is created; this is how the store audience keeps a single active
// session.
type OpenParams struct {
	Kind        PrincipalKind
	PrincipalID uuid.UUID
	Audience    Audience
	Metadata    SessionMetadata
	RevokePrior bool
}

// OpenedSession carries the plaintext secret exactly once; it is never
// recoverable from storage afterward.
type OpenedSession struct {
	Session *RefreshSession
	Secret  string
}

func (l *Ledger) Open(
	ctx context.Context,
	params OpenParams,
) (*OpenedSession, error) {
	secret, err := core.GenerateRefreshSecret()
	if err != nil {
		return nil, err
	}

	session := &RefreshSession{
		ID:            uuid.New().String(),
		PrincipalKind: string(params.Kind),
		PrincipalID:   params.PrincipalID.String(),
		Audience:      string(params.Audience),
		ExpiresAt:     time.Now().Add(l.ttl),
	}
	if params.Metadata.DeviceLabel != "" {
		session.DeviceLabel = &params.Metadata.DeviceLabel
	}
	if params.Metadata.UserAgent != "" {
		session.UserAgent = &params.Metadata.UserAgent
	}

	token := &RefreshToken{
		ID:         uuid.New().String(),
		SessionID:  session.ID,
		SecretHash: core.HashRefreshSecret(secret, l.pepper),
	}

	err = l.store.InTx(ctx, func(r Repository) error {
		if params.RevokePrior {
			if _, revokeErr := r.RevokeSessionsForPrincipal(
				ctx,
				params.Kind,
				params.PrincipalID.String(),
				nil,
			); revokeErr != nil {
				return revokeErr
			}
		}

		if createErr := r.CreateSession(ctx, session); createErr != nil {
			return createErr
		}

		return r.CreateToken(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return &OpenedSession{Session: session, Secret: secret}, nil
}

// RotateResult is a successful rotation: the same session, a fresh secret.
type RotateResult struct {
	Session *RefreshSession
	Secret  string
}

// Rotate runs the reuse-detection protocol. The expected (kind, audience)
// come from the calling portal; a session that does not match is treated
// exactly like one that does not exist.
//
// Presenting a secret that was valid earlier but has been superseded is a
// compromise signal: the whole session is revoked before refresh_reuse is
// returned, so neither the attacker nor the legitimate client can continue
// on that chain.
func (l *Ledger) Rotate(
	ctx context.Context,
	sessionID string,
	presentedSecret string,
	kind PrincipalKind,
	audience Audience,
) (*RotateResult, error) {
	presentedHash := core.HashRefreshSecret(presentedSecret, l.pepper)

	var (
		result       RotateResult
		reuseSession *RefreshSession
	)

	err := l.store.InTx(ctx, func(r Repository) error {
		session, err := r.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.InvalidRefreshError()
			}
			return err
		}

		if session.IsRevoked() ||
			session.PrincipalKind != string(kind) ||
			session.Audience != string(audience) {
			return core.InvalidRefreshError()
		}

		if session.IsExpired(time.Now()) {
			return core.RefreshExpiredError()
		}

		active, err := r.ActiveToken(ctx, session.ID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.InvalidRefreshError()
			}
			return err
		}

		if !core.CompareSecretHash(presentedSecret, l.pepper, active.SecretHash) {
			_, findErr := r.FindTokenBySecretHash(
				ctx,
				session.ID,
				presentedHash,
			)
			if findErr == nil {
				// Superseded secret presented again: kill the session.
				// Returning nil commits the revocation; the error is
				// raised after the transaction.
				if revokeErr := r.RevokeSessionCascade(ctx, session.ID); revokeErr != nil {
					return revokeErr
				}
				reuseSession = session
				return nil
			}
			if !errors.Is(findErr, core.ErrNotFound) {
				return findErr
			}
			return core.InvalidRefreshError()
		}

		secret, err := core.GenerateRefreshSecret()
		if err != nil {
			return err
		}

		next := &RefreshToken{
			ID:         uuid.New().String(),
			SessionID:  session.ID,
			SecretHash: core.HashRefreshSecret(secret, l.pepper),
		}

		// Revoke before insert: the storage layer allows only one
		// active token per session, so the old row must leave the
		// active set before the replacement lands.
		if err := r.MarkRotated(ctx, active.ID, next.ID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return core.InvalidRefreshError()
			}
			return err
		}

		if err := r.CreateToken(ctx, next); err != nil {
			return err
		}

		result = RotateResult{Session: session, Secret: secret}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reuseSession != nil {
		slog.Warn("refresh token reuse detected, session revoked",
			"session_id", reuseSession.ID,
			"principal_kind", reuseSession.PrincipalKind,
			"principal_id", reuseSession.PrincipalID,
			"audience", reuseSession.Audience,
		)
		return nil, core.RefreshReuseError()
	}

	return &result, nil
}

// RevokeSession revokes a session owned by the given principal, cascading
// to its tokens. Absent sessions, foreign sessions, and already-revoked
// sessions are all quiet no-ops so logout stays idempotent.
func (l *Ledger) RevokeSession(
	ctx context.Context,
	sessionID string,
	kind PrincipalKind,
	principalID uuid.UUID,
) error {
	return l.store.InTx(ctx, func(r Repository) error {
		session, err := r.GetSessionForUpdate(ctx, sessionID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return nil
			}
			return err
		}

		if session.PrincipalKind != string(kind) ||
			session.PrincipalID != principalID.String() {
			return nil
		}

		return r.RevokeSessionCascade(ctx, session.ID)
	})
}

// RevokeAllForPrincipal revokes every live session for the principal,
// optionally restricted to one audience.
func (l *Ledger) RevokeAllForPrincipal(
	ctx context.Context,
	kind PrincipalKind,
	principalID uuid.UUID,
	audience *Audience,
) (int64, error) {
	var revoked int64

	err := l.store.InTx(ctx, func(r Repository) error {
		n, err := r.RevokeSessionsForPrincipal(
			ctx,
			kind,
			principalID.String(),
			audience,
		)
		if err != nil {
			return err
		}
		revoked = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	return revoked, nil
}

// LiveSessionCount reports how many unexpired, unrevoked sessions the
// principal currently holds across all audiences.
func (l *Ledger) LiveSessionCount(
	ctx context.Context,
	kind PrincipalKind,
	principalID uuid.UUID,
) (int, error) {
	var count int

	err := l.store.InTx(ctx, func(r Repository) error {
		n, err := r.CountLiveSessions(ctx, kind, principalID.String())
		if err != nil {
			return err
		}
		count = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// DeleteExpired clears sessions past their expiry plus a retention window.
// Maintenance only; never part of the hot path.
func (l *Ledger) DeleteExpired(ctx context.Context) (int64, error) {
	var deleted int64

	err := l.store.InTx(ctx, func(r Repository) error {
		n, err := r.DeleteExpiredSessions(
			ctx,
			time.Now().Add(-expiredRetention),
		)
		if err != nil {
			return err
		}
		deleted = n
		return nil
	})
	if err != nil {
		return 0, err
	}

	return deleted, nil
}
