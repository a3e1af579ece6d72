// AngelaMos | 2026
// kinds.go

package auth

import (
	"fmt"
)

// PrincipalKind is the authenticable identity class. Users belong to the
// mobile app, stores to the web portal; the pairing is enforced by host
// policy and re-checked on every token.
type PrincipalKind string

const (
	KindUser  PrincipalKind = "user"
	KindStore PrincipalKind = "store"
)

func ParsePrincipalKind(s string) (PrincipalKind, error) {
	switch PrincipalKind(s) {
	case KindUser:
		return KindUser, nil
	case KindStore:
		return KindStore, nil
	}
	return "", fmt.Errorf("unknown principal kind %q", s)
}

// Audience is the client surface a token or session is valid for.
type Audience string

const (
	AudienceMobile Audience = "mobile"
	AudienceWeb    Audience = "web"
)

func ParseAudience(s string) (Audience, error) {
	switch Audience(s) {
	case AudienceMobile:
		return AudienceMobile, nil
	case AudienceWeb:
		return AudienceWeb, nil
	}
	return "", fmt.Errorf("unknown audience %q", s)
}
