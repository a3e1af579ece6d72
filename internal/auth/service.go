// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/core"
)

// PrincipalInfo is the auth-relevant slice of a principal row; the user
// and store packages own the full records.
type PrincipalInfo struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}

type CreatePrincipalParams struct {
	Email        string
	PasswordHash string
	Name         string
	Phone        string
}

// PrincipalProvider is implemented by user.Service and store.Service.
type PrincipalProvider interface {
	GetByEmail(ctx context.Context, email string) (*PrincipalInfo, error)
	GetByID(ctx context.Context, id uuid.UUID) (*PrincipalInfo, error)
	Create(
		ctx context.Context,
		params CreatePrincipalParams,
	) (*PrincipalInfo, error)
}

// GatewayConfig pins one gateway instance to its portal. SingleSession
// makes every successful signup/login revoke the principal's prior live
// sessions first (the store portal policy); the user audience allows one
// session per device instead.
type GatewayConfig struct {
	Kind          PrincipalKind
	Audience      Audience
	SingleSession bool
}

// Gateway composes codec, ledger, and principal storage into the
// signup/login/refresh/logout/resolve operations for one audience. Both
// portals run the same code over different GatewayConfig values, so the
// rotation and atomicity guarantees are enforced identically.
type Gateway struct {
	cfg        GatewayConfig
	codec      *Codec
	ledger     *Ledger
	principals PrincipalProvider
}

func NewGateway(
	cfg GatewayConfig,
	codec *Codec,
	ledger *Ledger,
	principals PrincipalProvider,
) *Gateway {
	return &Gateway{
		cfg:        cfg,
		codec:      codec,
		ledger:     ledger,
		principals: principals,
	}
}

func (g *Gateway) Config() GatewayConfig {
	return g.cfg
}

// Credentials is the full outcome of signup/login/refresh. How the refresh
// secret and session id travel back to the client (body vs cookies) is the
// handler's concern.
type Credentials struct {
	AccessToken   string
	RefreshSecret string
	SessionID     string
	ExpiresIn     int
}

type SignupParams struct {
	Email    string
	Password string
	Name     string
	Phone    string
}

func (g *Gateway) Signup(
	ctx context.Context,
	params SignupParams,
	meta SessionMetadata,
) (*Credentials, error) {
	passwordHash, err := core.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	principal, err := g.principals.Create(ctx, CreatePrincipalParams{
		Email:        params.Email,
		PasswordHash: passwordHash,
		Name:         params.Name,
		Phone:        params.Phone,
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, core.EmailTakenError()
		}
		return nil, fmt.Errorf("create principal: %w", err)
	}

	return g.issueCredentials(ctx, principal.ID, meta)
}

// Login deliberately reports unknown email, inactive principal, and wrong
// password as the same invalid_credentials, and burns an argon2
// verification on unknown emails so timing does not leak which case hit.
func (g *Gateway) Login(
	ctx context.Context,
	email, password string,
	meta SessionMetadata,
) (*Credentials, error) {
	principal, err := g.principals.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing equalization only
			_, _ = core.VerifyPasswordTimingSafe(password, nil)
			return nil, core.InvalidCredentialsError()
		}
		return nil, fmt.Errorf("get principal: %w", err)
	}

	valid, err := core.VerifyPasswordTimingSafe(
		password,
		&principal.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid || !principal.Active {
		return nil, core.InvalidCredentialsError()
	}

	return g.issueCredentials(ctx, principal.ID, meta)
}

func (g *Gateway) Refresh(
	ctx context.Context,
	sessionID, presentedSecret string,
) (*Credentials, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, core.InvalidRefreshError()
	}

	rotated, err := g.ledger.Rotate(
		ctx,
		sessionID,
		presentedSecret,
		g.cfg.Kind,
		g.cfg.Audience,
	)
	if err != nil {
		return nil, err
	}

	principalID, err := uuid.Parse(rotated.Session.PrincipalID)
	if err != nil {
		return nil, fmt.Errorf("parse principal id: %w", err)
	}

	accessToken, err := g.codec.Issue(principalID, g.cfg.Kind, g.cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &Credentials{
		AccessToken:   accessToken,
		RefreshSecret: rotated.Secret,
		SessionID:     rotated.Session.ID,
		ExpiresIn:     int(g.codec.TTL() / time.Second),
	}, nil
}

const (
	LogoutScopeCurrent = "current"
	LogoutScopeAll     = "all"
)

// Logout is idempotent: revoking an already-revoked or missing session
// acknowledges success.
func (g *Gateway) Logout(
	ctx context.Context,
	principalID uuid.UUID,
	scope string,
	sessionID string,
) error {
	switch scope {
	case LogoutScopeCurrent:
		if sessionID == "" {
			return core.SessionIDRequiredError()
		}
		if _, err := uuid.Parse(sessionID); err != nil {
			return nil
		}
		return g.ledger.RevokeSession(ctx, sessionID, g.cfg.Kind, principalID)
	case LogoutScopeAll:
		_, err := g.ledger.RevokeAllForPrincipal(
			ctx,
			g.cfg.Kind,
			principalID,
			nil,
		)
		return err
	}

	return core.NewAppError(
		400,
		core.CodeValidationError,
		"scope must be current or all",
	)
}

// ActiveSessionCount reports the principal's live sessions; clients use it
// to decide whether a logout-all is worth offering.
func (g *Gateway) ActiveSessionCount(
	ctx context.Context,
	principalID uuid.UUID,
) (int, error) {
	return g.ledger.LiveSessionCount(ctx, g.cfg.Kind, principalID)
}

// ResolvePrincipal turns a bearer token into a live principal for this
// portal. This is the one place a disabled account is cut off before its
// access token naturally expires.
func (g *Gateway) ResolvePrincipal(
	ctx context.Context,
	accessToken string,
) (*PrincipalInfo, error) {
	claims, err := g.codec.Verify(accessToken)
	if err != nil {
		return nil, err
	}

	if claims.Kind != g.cfg.Kind || claims.Audience != g.cfg.Audience {
		return nil, core.WrongPortalError()
	}

	principal, err := g.principals.GetByID(ctx, claims.SubjectID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.InvalidAccessTokenError()
		}
		return nil, fmt.Errorf("get principal: %w", err)
	}

	if !principal.Active {
		return nil, core.InvalidAccessTokenError()
	}

	return principal, nil
}

func (g *Gateway) issueCredentials(
	ctx context.Context,
	principalID uuid.UUID,
	meta SessionMetadata,
) (*Credentials, error) {
	opened, err := g.ledger.Open(ctx, OpenParams{
		Kind:        g.cfg.Kind,
		PrincipalID: principalID,
		Audience:    g.cfg.Audience,
		Metadata:    meta,
		RevokePrior: g.cfg.SingleSession,
	})
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	accessToken, err := g.codec.Issue(principalID, g.cfg.Kind, g.cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	return &Credentials{
		AccessToken:   accessToken,
		RefreshSecret: opened.Secret,
		SessionID:     opened.Session.ID,
		ExpiresIn:     int(g.codec.TTL() / time.Second),
	}, nil
}
