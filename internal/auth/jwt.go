// AngelaMos | 2026
// jwt.go

package auth

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"

	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

// Codec issues and verifies the short-lived stateless access tokens.
// Verification is a pure function of the token and the signing key; it
// never touches storage, which is also why an access token cannot be
// revoked before its natural expiry. The TTL stays short for that reason.
type Codec struct {
	key jwk.Key
	ttl time.Duration
}

func NewCodec(cfg config.AuthConfig) (*Codec, error) {
	key, err := jwk.Import([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("import signing key: %w", err)
	}

	if setErr := key.Set(jwk.AlgorithmKey, jwa.HS256()); setErr != nil {
		return nil, fmt.Errorf("set algorithm: %w", setErr)
	}

	return &Codec{
		key: key,
		ttl: cfg.AccessTokenTTL,
	}, nil
}

func (c *Codec) TTL() time.Duration {
	return c.ttl
}

// AccessClaims is the identity an access token proves.
type AccessClaims struct {
	SubjectID uuid.UUID
	Kind      PrincipalKind
	Audience  Audience
}

// Issue signs a token for the given principal. The jti keeps tokens
// distinguishable even when issued within the same second.
func (c *Codec) Issue(
	subjectID uuid.UUID,
	kind PrincipalKind,
	audience Audience,
) (string, error) {
	now := time.Now()

	token, err := jwt.NewBuilder().
		JwtID(uuid.New().String()).
		Subject(subjectID.String()).
		Audience([]string{string(audience)}).
		IssuedAt(now).
		Expiration(now.Add(c.ttl)).
		Claim("role", string(kind)).
		Build()
	if err != nil {
		return "", fmt.Errorf("build token: %w", err)
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), c.key))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return string(signed), nil
}

// Verify checks signature and expiry and parses the identity claims. Any
// failure, cryptographic or structural, maps to invalid_access_token; the
// caller learns nothing beyond "not a usable token".
func (c *Codec) Verify(tokenString string) (*AccessClaims, error) {
	token, err := jwt.Parse(
		[]byte(tokenString),
		jwt.WithKey(jwa.HS256(), c.key),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, core.InvalidAccessTokenError()
	}

	subject, ok := token.Subject()
	if !ok || subject == "" {
		return nil, core.InvalidAccessTokenError()
	}

	subjectID, err := uuid.Parse(subject)
	if err != nil {
		return nil, core.InvalidAccessTokenError()
	}

	var roleStr string
	if err := token.Get("role", &roleStr); err != nil {
		return nil, core.InvalidAccessTokenError()
	}

	kind, err := ParsePrincipalKind(roleStr)
	if err != nil {
		return nil, core.InvalidAccessTokenError()
	}

	audiences, ok := token.Audience()
	if !ok || len(audiences) != 1 {
		return nil, core.InvalidAccessTokenError()
	}

	audience, err := ParseAudience(audiences[0])
	if err != nil {
		return nil, core.InvalidAccessTokenError()
	}

	return &AccessClaims{
		SubjectID: subjectID,
		Kind:      kind,
		Audience:  audience,
	}, nil
}
