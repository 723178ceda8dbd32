package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenPairRoundTrip(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)

	pair, err := m.GenerateTokenPair("user-1", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	claims, err := m.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)

	claims, err = m.VerifyRefresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestTokensNotInterchangeable(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)

	pair, err := m.GenerateTokenPair("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = m.VerifyAccess(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyRefresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExpiredAccessToken(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", 15*time.Minute, 30*24*time.Hour)

	issued := time.Now()
	m.nowFn = func() time.Time { return issued }
	pair, err := m.GenerateTokenPair("user-1", "alice@example.com")
	require.NoError(t, err)

	m.nowFn = func() time.Time { return issued.Add(16 * time.Minute) }
	_, err = m.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrExpiredToken)

	// The refresh token outlives the access token.
	_, err = m.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)
}

func TestWrongSecretRejected(t *testing.T) {
	issuer := NewManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	verifier := NewManager("other-secret", "refresh-secret", 15*time.Minute, time.Hour)

	pair, err := issuer.GenerateTokenPair("user-1", "alice@example.com")
	require.NoError(t, err)

	_, err = verifier.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGarbageTokenRejected(t *testing.T) {
	m := NewManager("access-secret", "refresh-secret", 15*time.Minute, time.Hour)

	_, err := m.VerifyAccess("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3rSecret", hash)

	assert.True(t, CheckPassword(hash, "Sup3rSecret"))
	assert.False(t, CheckPassword(hash, "sup3rsecret"))
}
