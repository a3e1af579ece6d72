// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/zhqingit/voice-food-order/internal/core"
)

// Repository is the transaction-scoped view of the session/token ledger.
// Every method runs against the transaction it was handed out for.
type Repository interface {
	CreateSession(ctx context.Context, session *RefreshSession) error
	CreateToken(ctx context.Context, token *RefreshToken) error

	// GetSessionForUpdate loads a session and takes a row lock on it,
	// serializing concurrent rotations of the same session.
	GetSessionForUpdate(
		ctx context.Context,
		id string,
	) (*RefreshSession, error)

	ActiveToken(ctx context.Context, sessionID string) (*RefreshToken, error)
	FindTokenBySecretHash(
		ctx context.Context,
		sessionID, secretHash string,
	) (*RefreshToken, error)

	// MarkRotated revokes the token and records its replacement in one
	// statement; returns core.ErrNotFound if the token was not active.
	MarkRotated(ctx context.Context, tokenID, replacedByID string) error

	// RevokeSessionCascade revokes the session and every one of its
	// not-yet-revoked tokens. Safe to call on an already-revoked session.
	RevokeSessionCascade(ctx context.Context, sessionID string) error

	RevokeSessionsForPrincipal(
		ctx context.Context,
		kind PrincipalKind,
		principalID string,
		audience *Audience,
	) (int64, error)

	CountLiveSessions(
		ctx context.Context,
		kind PrincipalKind,
		principalID string,
	) (int, error)

	DeleteExpiredSessions(
		ctx context.Context,
		cutoff time.Time,
	) (int64, error)
}

// Store hands the ledger an atomic unit of work. The Postgres
// implementation wraps core.InTx; tests substitute an in-memory store.
type Store interface {
	InTx(ctx context.Context, fn func(Repository) error) error
}

type sqlStore struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) Store {
	return &sqlStore{db: db}
}

func (s *sqlStore) InTx(
	ctx context.Context,
	fn func(Repository) error,
) error {
	return core.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

type repository struct {
	db core.DBTX
}

func (r *repository) CreateSession(
	ctx context.Context,
	session *RefreshSession,
) error {
	query := `
		INSERT INTO refresh_sessions (
			id, principal_kind, principal_id, audience, expires_at,
			device_label, user_agent
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &session.CreatedAt, query,
		session.ID,
		session.PrincipalKind,
		session.PrincipalID,
		session.Audience,
		session.ExpiresAt,
		session.DeviceLabel,
		session.UserAgent,
	)
	if err != nil {
		return fmt.Errorf("create refresh session: %w", err)
	}

	return nil
}

func (r *repository) CreateToken(
	ctx context.Context,
	token *RefreshToken,
) error {
	query := `
		INSERT INTO refresh_tokens (id, session_id, secret_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &token.CreatedAt, query,
		token.ID,
		token.SessionID,
		token.SecretHash,
	)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}

	return nil
}

func (r *repository) GetSessionForUpdate(
	ctx context.Context,
	id string,
) (*RefreshSession, error) {
	query := `
		SELECT id, principal_kind, principal_id, audience, created_at,
		       expires_at, revoked_at, device_label, user_agent
		FROM refresh_sessions
		WHERE id = $1
		FOR UPDATE`

	var session RefreshSession
	err := r.db.GetContext(ctx, &session, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get refresh session: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh session: %w", err)
	}

	return &session, nil
}

func (r *repository) ActiveToken(
	ctx context.Context,
	sessionID string,
) (*RefreshToken, error) {
	query := `
		SELECT id, session_id, secret_hash, created_at, revoked_at,
		       replaced_by_id
		FROM refresh_tokens
		WHERE session_id = $1
			AND revoked_at IS NULL
			AND replaced_by_id IS NULL`

	var token RefreshToken
	err := r.db.GetContext(ctx, &token, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get active token: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get active token: %w", err)
	}

	return &token, nil
}

func (r *repository) FindTokenBySecretHash(
	ctx context.Context,
	sessionID, secretHash string,
) (*RefreshToken, error) {
	query := `
		SELECT id, session_id, secret_hash, created_at, revoked_at,
		       replaced_by_id
		FROM refresh_tokens
		WHERE session_id = $1 AND secret_hash = $2`

	var token RefreshToken
	err := r.db.GetContext(ctx, &token, query, sessionID, secretHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find token by hash: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find token by hash: %w", err)
	}

	return &token, nil
}

func (r *repository) MarkRotated(
	ctx context.Context,
	tokenID, replacedByID string,
) error {
	query := `
		UPDATE refresh_tokens
		SET revoked_at = NOW(), replaced_by_id = $2
		WHERE id = $1 AND revoked_at IS NULL AND replaced_by_id IS NULL`

	result, err := r.db.ExecContext(ctx, query, tokenID, replacedByID)
	if err != nil {
		return fmt.Errorf("mark token rotated: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark token rotated: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark token rotated: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) RevokeSessionCascade(
	ctx context.Context,
	sessionID string,
) error {
	sessionQuery := `
		UPDATE refresh_sessions
		SET revoked_at = NOW()
		WHERE id = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, sessionQuery, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}

	tokenQuery := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE session_id = $1 AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, tokenQuery, sessionID); err != nil {
		return fmt.Errorf("revoke session tokens: %w", err)
	}

	return nil
}

func (r *repository) RevokeSessionsForPrincipal(
	ctx context.Context,
	kind PrincipalKind,
	principalID string,
	audience *Audience,
) (int64, error) {
	sessionQuery := `
		UPDATE refresh_sessions
		SET revoked_at = NOW()
		WHERE principal_kind = $1
			AND principal_id = $2
			AND revoked_at IS NULL
			AND ($3::text IS NULL OR audience = $3)
		RETURNING id`

	var audienceArg *string
	if audience != nil {
		s := string(*audience)
		audienceArg = &s
	}

	var sessionIDs []string
	err := r.db.SelectContext(
		ctx,
		&sessionIDs,
		sessionQuery,
		string(kind),
		principalID,
		audienceArg,
	)
	if err != nil {
		return 0, fmt.Errorf("revoke principal sessions: %w", err)
	}

	if len(sessionIDs) == 0 {
		return 0, nil
	}

	tokenQuery := `
		UPDATE refresh_tokens
		SET revoked_at = NOW()
		WHERE session_id = ANY($1) AND revoked_at IS NULL`

	if _, err := r.db.ExecContext(ctx, tokenQuery, sessionIDs); err != nil {
		return 0, fmt.Errorf("revoke principal tokens: %w", err)
	}

	return int64(len(sessionIDs)), nil
}

func (r *repository) CountLiveSessions(
	ctx context.Context,
	kind PrincipalKind,
	principalID string,
) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM refresh_sessions
		WHERE principal_kind = $1
			AND principal_id = $2
			AND revoked_at IS NULL
			AND expires_at > NOW()`

	var count int
	err := r.db.GetContext(ctx, &count, query, string(kind), principalID)
	if err != nil {
		return 0, fmt.Errorf("count live sessions: %w", err)
	}

	return count, nil
}

func (r *repository) DeleteExpiredSessions(
	ctx context.Context,
	cutoff time.Time,
) (int64, error) {
	// Tokens go with their session via ON DELETE CASCADE.
	query := `
		DELETE FROM refresh_sessions
		WHERE expires_at < $1`

	result, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}

	return rows, nil
}
