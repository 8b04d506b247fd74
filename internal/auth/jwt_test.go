package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	provider := NewTokenProvider("test-secret", time.Hour)

	token, err := provider.Issue(42)
	require.NoError(t, err)

	claims, err := provider.Parse(token)
	require.NoError(t, err)
	assert.EqualValues(t, 42, claims.UserID)
}

func TestTokenWrongSecretRejected(t *testing.T) {
	issuer := NewTokenProvider("secret-a", time.Hour)
	verifier := NewTokenProvider("secret-b", time.Hour)

	token, err := issuer.Issue(1)
	require.NoError(t, err)

	_, err = verifier.Parse(token)
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	provider := NewTokenProvider("test-secret", -time.Minute)

	token, err := provider.Issue(1)
	require.NoError(t, err)

	_, err = provider.Parse(token)
	assert.Error(t, err)
}

func TestGarbageTokenRejected(t *testing.T) {
	provider := NewTokenProvider("test-secret", time.Hour)
	_, err := provider.Parse("not.a.token")
	assert.Error(t, err)
}
