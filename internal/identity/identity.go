// Package identity supplies the stable opaque user identifier the draft
// service scopes persistence by. The id is the OIDC subject of the verified
// request token; an absent or anonymous identity means "do not persist".
package identity

import (
	"context"
	"fmt"

	"github.com/bistroplan/bistroplan/pkg/middleware"
	"github.com/coreos/go-oidc/v3/oidc"
)

// FromClaims returns the stable user id carried in verified token claims,
// or "" when there is none.
func FromClaims(claims map[string]interface{}) string {
	sub, _ := claims["sub"].(string)
	return sub
}

// FromContext returns the user id for the current request, or "" for an
// anonymous request. The auth middleware stores verified claims under
// "claims".
func FromContext(get func(string) (any, bool)) string {
	v, ok := get("claims")
	if !ok {
		return ""
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return ""
	}
	return FromClaims(cm)
}

// Verifier wraps the OIDC provider and token verifier
type Verifier struct {
	provider *oidc.Provider
	verifier *oidc.IDTokenVerifier
}

// NewVerifier creates a new OIDC verifier for the given issuer and client ID
func NewVerifier(ctx context.Context, issuer, clientID string) (*Verifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("failed to discover OIDC provider: %w", err)
	}
	verifier := provider.Verifier(&oidc.Config{ClientID: clientID})
	return &Verifier{provider: provider, verifier: verifier}, nil
}

// Verify verifies the provided raw ID token and returns a middleware.Token
func (v *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	idToken, err := v.verifier.Verify(ctx, raw)
	if err != nil {
		return nil, err
	}
	return idToken, nil
}
