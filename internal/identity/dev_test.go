package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDevVerifierRoundTrip(t *testing.T) {
	tok, err := MintDevToken("sekret", "user-42", time.Minute)
	require.NoError(t, err)

	v := NewDevVerifier("sekret")
	verified, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)

	var claims map[string]interface{}
	require.NoError(t, verified.Claims(&claims))
	require.Equal(t, "user-42", FromClaims(claims))
}

func TestDevVerifierRejectsWrongSecret(t *testing.T) {
	tok, err := MintDevToken("sekret", "user-42", time.Minute)
	require.NoError(t, err)

	v := NewDevVerifier("other")
	_, err = v.Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestDevVerifierRejectsExpiredToken(t *testing.T) {
	tok, err := MintDevToken("sekret", "user-42", -time.Minute)
	require.NoError(t, err)

	v := NewDevVerifier("sekret")
	_, err = v.Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestFromClaims(t *testing.T) {
	require.Equal(t, "abc", FromClaims(map[string]interface{}{"sub": "abc"}))
	require.Empty(t, FromClaims(map[string]interface{}{}))
	require.Empty(t, FromClaims(map[string]interface{}{"sub": 7}))
}

func TestFromContext(t *testing.T) {
	store := map[string]any{"claims": map[string]interface{}{"sub": "u1"}}
	get := func(k string) (any, bool) { v, ok := store[k]; return v, ok }
	require.Equal(t, "u1", FromContext(get))

	empty := func(k string) (any, bool) { return nil, false }
	require.Empty(t, FromContext(empty))
}
