// AngelaMos | 2026
// entity.go

package auth

import (
	"time"
)

// RefreshSession binds one (principal kind, principal id, audience) triple
// to a chain of rotating refresh tokens. Its expiry is fixed at creation
// and never extended by rotation.
type RefreshSession struct {
	ID            string     `db:"id"`
	PrincipalKind string     `db:"principal_kind"`
	PrincipalID   string     `db:"principal_id"`
	Audience      string     `db:"audience"`
	CreatedAt     time.Time  `db:"created_at"`
	ExpiresAt     time.Time  `db:"expires_at"`
	RevokedAt     *time.Time `db:"revoked_at"`
	DeviceLabel   *string    `db:"device_label"`
	UserAgent     *string    `db:"user_agent"`
}

func (s *RefreshSession) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

func (s *RefreshSession) IsRevoked() bool {
	return s.RevokedAt != nil
}

func (s *RefreshSession) IsLive(now time.Time) bool {
	return !s.IsRevoked() && !s.IsExpired(now)
}

// RefreshToken is one link in a session's rotation chain. The opaque secret
// itself is never stored, only its peppered digest. A token is active iff
// it is neither revoked nor replaced; at most one token per live session is
// active at any time.
type RefreshToken struct {
	ID           string     `db:"id"`
	SessionID    string     `db:"session_id"`
	SecretHash   string     `db:"secret_hash"`
	CreatedAt    time.Time  `db:"created_at"`
	RevokedAt    *time.Time `db:"revoked_at"`
	ReplacedByID *string    `db:"replaced_by_id"`
}

func (t *RefreshToken) IsActive() bool {
	return t.RevokedAt == nil && t.ReplacedByID == nil
}

func (t *RefreshToken) IsRotated() bool {
	return t.ReplacedByID != nil
}

// SessionMetadata is optional device context captured at open time.
type SessionMetadata struct {
	DeviceLabel string
	UserAgent   string
}
