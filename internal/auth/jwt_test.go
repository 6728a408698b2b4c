package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_UsesConfiguredTTL(t *testing.T) {
	ttl := 2 * time.Hour
	tm := NewTokenManager("test-secret", ttl, "perfdash")

	start := time.Now()

	token, err := tm.GenerateToken("42", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)

	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "admin", claims.Login)
	assert.WithinDuration(t, start.Add(ttl), claims.ExpiresAt.Time, 2*time.Second)
}

func TestTokenManager_RejectsForeignTokens(t *testing.T) {
	tm := NewTokenManager("test-secret", time.Hour, "perfdash")

	other, err := NewTokenManager("other-secret", time.Hour, "perfdash").GenerateToken("42", "")
	require.NoError(t, err)
	_, err = tm.ValidateToken(other)
	assert.Error(t, err, "wrong secret")

	wrongIssuer, err := NewTokenManager("test-secret", time.Hour, "someone-else").GenerateToken("42", "")
	require.NoError(t, err)
	_, err = tm.ValidateToken(wrongIssuer)
	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)

	_, err = tm.ValidateToken("not-a-token")
	assert.Error(t, err)
}

func TestTokenManager_RejectsExpiredToken(t *testing.T) {
	claims := &Claims{
		UserID: "42",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "perfdash",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewTokenManager("test-secret", time.Hour, "perfdash").ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenManager_RequiresUserID(t *testing.T) {
	_, err := NewTokenManager("test-secret", time.Hour, "").GenerateToken("", "")
	assert.Error(t, err)
}
