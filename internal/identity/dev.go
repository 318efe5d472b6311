package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/bistroplan/bistroplan/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// DevVerifier validates HS256 tokens signed with a shared secret. Intended
// for local development and integration tests where no OIDC provider runs;
// enabled only by explicitly setting AUTH_DEV_SECRET.
type DevVerifier struct {
	secret []byte
}

func NewDevVerifier(secret string) *DevVerifier {
	return &DevVerifier{secret: []byte(secret)}
}

type devToken struct {
	claims jwt.MapClaims
}

func (t *devToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func (v *DevVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return &devToken{claims: claims}, nil
}

// MintDevToken issues a short-lived HS256 token for the given subject.
// Test and tooling helper for the dev verifier.
func MintDevToken(secret, sub string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": sub,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
