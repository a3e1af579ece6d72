// AngelaMos | 2026
// host.go

package policy

import (
	"net"
	"net/http"
	"strings"

	"github.com/zhqingit/voice-food-order/internal/auth"
	"github.com/zhqingit/voice-food-order/internal/config"
	"github.com/zhqingit/voice-food-order/internal/core"
)

// Policy is the (principal kind, audience) pair a request host resolves to.
type Policy struct {
	Kind     auth.PrincipalKind
	Audience auth.Audience
}

// Resolver maps request hosts onto portals. Matching is case-insensitive
// and exact against the configured allow-sets: no wildcards, no subdomain
// matching. It runs before any credential or token check on every
// audience-scoped endpoint, including the voice socket.
type Resolver struct {
	userHosts  map[string]struct{}
	storeHosts map[string]struct{}
}

func NewResolver(cfg config.HostsConfig) *Resolver {
	return &Resolver{
		userHosts:  hostSet(cfg.User),
		storeHosts: hostSet(cfg.Store),
	}
}

func hostSet(hosts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(hosts))
	for _, h := range hosts {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			set[h] = struct{}{}
		}
	}
	return set
}

// Resolve returns the policy for a request host, or invalid_host when the
// host belongs to neither portal.
func (r *Resolver) Resolve(host string) (Policy, error) {
	host = normalizeHost(host)

	if _, ok := r.userHosts[host]; ok {
		return Policy{Kind: auth.KindUser, Audience: auth.AudienceMobile}, nil
	}
	if _, ok := r.storeHosts[host]; ok {
		return Policy{Kind: auth.KindStore, Audience: auth.AudienceWeb}, nil
	}

	return Policy{}, core.InvalidHostError()
}

// Require wraps Resolve as middleware for an endpoint group that belongs
// to exactly one portal; a resolvable host on the wrong portal fails
// wrong_portal rather than invalid_host.
func (r *Resolver) Require(
	kind auth.PrincipalKind,
	audience auth.Audience,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			resolved, err := r.Resolve(req.Host)
			if err != nil {
				core.JSONError(w, err)
				return
			}

			if resolved.Kind != kind || resolved.Audience != audience {
				core.JSONError(w, core.WrongPortalError())
				return
			}

			next.ServeHTTP(w, req)
		})
	}
}

func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return strings.ToLower(strings.TrimSpace(host))
}
