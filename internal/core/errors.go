// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidInput = errors.New("invalid input")
)

// Stable machine-readable codes carried on every auth failure response.
const (
	CodeInvalidHost        = "invalid_host"
	CodeWrongPortal        = "wrong_portal"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailTaken         = "email_taken"
	CodeNotAuthenticated   = "not_authenticated"
	CodeInvalidAccessToken = "invalid_access_token"
	CodeInvalidRefresh     = "invalid_refresh"
	CodeRefreshExpired     = "refresh_expired"
	CodeRefreshReuse       = "refresh_reuse"
	CodeSessionIDRequired  = "session_id_required"
	CodeValidationError    = "validation_error"
	CodeNotFound           = "not_found"
	CodeConflict           = "conflict"
	CodeInternalError      = "internal_error"
)

// AppError is the single structured error type for request failures.
// Every failure is terminal for the current request; the caller decides
// whether to refresh, re-login, or stop based on Code.
type AppError struct {
	Status int    `json:"-"`
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Detail)
}

func NewAppError(status int, code, detail string) *AppError {
	return &AppError{Status: status, Code: code, Detail: detail}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

func InvalidHostError() *AppError {
	return NewAppError(http.StatusForbidden, CodeInvalidHost, "Invalid API host")
}

func WrongPortalError() *AppError {
	return NewAppError(http.StatusForbidden, CodeWrongPortal, "Wrong portal")
}

func InvalidCredentialsError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeInvalidCredentials,
		"Invalid credentials",
	)
}

func EmailTakenError() *AppError {
	return NewAppError(
		http.StatusConflict,
		CodeEmailTaken,
		"Email already registered",
	)
}

func NotAuthenticatedError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeNotAuthenticated,
		"Not authenticated",
	)
}

func InvalidAccessTokenError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeInvalidAccessToken,
		"Invalid token",
	)
}

func InvalidRefreshError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeInvalidRefresh,
		"Invalid refresh",
	)
}

func RefreshExpiredError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeRefreshExpired,
		"Refresh expired",
	)
}

func RefreshReuseError() *AppError {
	return NewAppError(
		http.StatusUnauthorized,
		CodeRefreshReuse,
		"Refresh token reuse detected",
	)
}

func SessionIDRequiredError() *AppError {
	return NewAppError(
		http.StatusBadRequest,
		CodeSessionIDRequired,
		"session_id required for scope=current",
	)
}
