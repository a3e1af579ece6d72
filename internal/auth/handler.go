// AngelaMos | 2026
// handler.go

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

const (
	cookieRefresh = "store_refresh_token"
	cookieSession = "store_session_id"
)

// CookieDelivery keeps refresh credentials out of script-accessible
// storage for the browser portal: HTTP-only, SameSite=Lax, scoped to the
// portal path.
type CookieDelivery struct {
	Secure bool
	Domain string
	Path   string
}

// Handler serves one audience's auth endpoints. A nil cookies field means
// body delivery (the mobile client has no cookie jar and stores the
// secret itself).
type Handler struct {
	gateway   *Gateway
	validator *validator.Validate
	cookies   *CookieDelivery
}

func NewUserHandler(gateway *Gateway) *Handler {
	return &Handler{
		gateway:   gateway,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func NewStoreHandler(gateway *Gateway, cfg config.AuthConfig) *Handler {
	return &Handler{
		gateway:   gateway,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		cookies: &CookieDelivery{
			Secure: cfg.CookieSecure,
			Domain: cfg.CookieDomain,
			Path:   "/store",
		},
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
		r.Post("/refresh", h.Refresh)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Post("/logout", h.Logout)
			r.Get("/sessions", h.Sessions)
		})
	})
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	params, ok := h.decodeSignup(w, r)
	if !ok {
		return
	}

	creds, err := h.gateway.Signup(r.Context(), params, sessionMetadata(r))
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.writeCredentials(w, http.StatusCreated, creds)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	creds, err := h.gateway.Login(
		r.Context(),
		req.Email,
		req.Password,
		sessionMetadata(r),
	)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.writeCredentials(w, http.StatusOK, creds)
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	sessionID, secret, ok := h.readRefresh(w, r)
	if !ok {
		return
	}

	creds, err := h.gateway.Refresh(r.Context(), sessionID, secret)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	h.writeCredentials(w, http.StatusOK, creds)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	principalID := PrincipalIDFromContext(r.Context())

	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sessionID := req.SessionID
	if h.cookies != nil && sessionID == "" {
		if cookie, err := r.Cookie(cookieSession); err == nil {
			sessionID = cookie.Value
		}
	}

	err := h.gateway.Logout(r.Context(), principalID, req.Scope, sessionID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	if h.cookies != nil {
		h.clearCookies(w)
	}

	core.OK(w, StatusResponse{Status: "ok"})
}

func (h *Handler) Sessions(w http.ResponseWriter, r *http.Request) {
	principalID := PrincipalIDFromContext(r.Context())

	count, err := h.gateway.ActiveSessionCount(r.Context(), principalID)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.OK(w, SessionCountResponse{ActiveSessions: count})
}

func (h *Handler) decodeSignup(
	w http.ResponseWriter,
	r *http.Request,
) (SignupParams, bool) {
	if h.gateway.Config().Kind == KindStore {
		var req StoreSignupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return SignupParams{}, false
		}
		if err := h.validator.Struct(req); err != nil {
			core.BadRequest(w, core.FormatValidationError(err))
			return SignupParams{}, false
		}
		return SignupParams{
			Email:    req.Email,
			Password: req.Password,
			Name:     req.Name,
			Phone:    req.Phone,
		}, true
	}

	var req UserSignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return SignupParams{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return SignupParams{}, false
	}
	return SignupParams{Email: req.Email, Password: req.Password}, true
}

func (h *Handler) readRefresh(
	w http.ResponseWriter,
	r *http.Request,
) (sessionID, secret string, ok bool) {
	if h.cookies != nil {
		refreshCookie, err := r.Cookie(cookieRefresh)
		if err != nil {
			core.JSONError(w, core.InvalidRefreshError())
			return "", "", false
		}
		sessionCookie, err := r.Cookie(cookieSession)
		if err != nil {
			core.JSONError(w, core.InvalidRefreshError())
			return "", "", false
		}
		return sessionCookie.Value, refreshCookie.Value, true
	}

	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return "", "", false
	}
	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return "", "", false
	}
	return req.SessionID, req.RefreshToken, true
}

func (h *Handler) writeCredentials(
	w http.ResponseWriter,
	status int,
	creds *Credentials,
) {
	if h.cookies != nil {
		h.setCookie(w, cookieRefresh, creds.RefreshSecret)
		h.setCookie(w, cookieSession, creds.SessionID)

		if status == http.StatusCreated {
			core.Created(w, AccessTokenResponse{
				AccessToken: creds.AccessToken,
				TokenType:   "Bearer",
				ExpiresIn:   creds.ExpiresIn,
			})
			return
		}
		core.OK(w, AccessTokenResponse{
			AccessToken: creds.AccessToken,
			TokenType:   "Bearer",
			ExpiresIn:   creds.ExpiresIn,
		})
		return
	}

	resp := TokenResponse{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshSecret,
		SessionID:    creds.SessionID,
		TokenType:    "Bearer",
		ExpiresIn:    creds.ExpiresIn,
	}

	if status == http.StatusCreated {
		core.Created(w, resp)
		return
	}
	core.OK(w, resp)
}

func (h *Handler) setCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     h.cookies.Path,
		Domain:   h.cookies.Domain,
		Secure:   h.cookies.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearCookies(w http.ResponseWriter) {
	for _, name := range []string{cookieRefresh, cookieSession} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     h.cookies.Path,
			Domain:   h.cookies.Domain,
			Secure:   h.cookies.Secure,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,
		})
	}
}

func sessionMetadata(r *http.Request) SessionMetadata {
	return SessionMetadata{
		DeviceLabel: r.Header.Get("X-Device-Label"),
		UserAgent:   r.UserAgent(),
	}
}
