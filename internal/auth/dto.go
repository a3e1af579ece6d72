// AngelaMos | 2026
// dto.go

package auth

type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type UserSignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

type StoreSignupRequest struct {
	Email    string `json:"email"    validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name"     validate:"required,min=1,max=255"`
	Phone    string `json:"phone"    validate:"omitempty,max=32"`
}

type RefreshRequest struct {
	SessionID    string `json:"session_id"    validate:"required,uuid"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type LogoutRequest struct {
	Scope     string `json:"scope"      validate:"required,oneof=current all"`
	SessionID string `json:"session_id" validate:"omitempty,uuid"`
}

// TokenResponse is the user/mobile credential shape: the client owns its
// own secret storage, so the refresh secret travels in the body.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// AccessTokenResponse is the store/web shape: refresh credentials ride in
// HTTP-only cookies, never in the body.
type AccessTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type SessionCountResponse struct {
	ActiveSessions int `json:"active_sessions"`
}
