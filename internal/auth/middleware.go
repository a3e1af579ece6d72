// AngelaMos | 2026
// middleware.go

package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/zhqingit/voice-food-order/internal/core"
)

type contextKey string

const principalKey contextKey = "principal"

// Authenticator gates a route group on a valid access token for this
// gateway's portal. Host policy middleware must already have run; this
// layer re-checks kind and audience against the token itself.
func Authenticator(gateway *Gateway) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractBearerToken(r)
			if token == "" {
				core.JSONError(w, core.NotAuthenticatedError())
				return
			}

			principal, err := gateway.ResolvePrincipal(r.Context(), token)
			if err != nil {
				core.JSONError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ExtractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

func PrincipalFromContext(ctx context.Context) *PrincipalInfo {
	if principal, ok := ctx.Value(principalKey).(*PrincipalInfo); ok {
		return principal
	}
	return nil
}

func PrincipalIDFromContext(ctx context.Context) uuid.UUID {
	if principal := PrincipalFromContext(ctx); principal != nil {
		return principal.ID
	}
	return uuid.Nil
}
