package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestTokenManager(t *testing.T) {
	m := NewTokenManager(secret, "auth-service", "api-access")

	t.Run("Round trip", func(t *testing.T) {
		token, err := m.GenerateAccessToken("user-42", "u@example.com", []string{"member"}, time.Hour)
		require.NoError(t, err)

		claims, err := m.ValidateAccessToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user-42", claims.UserID())
		assert.Equal(t, "u@example.com", claims.Email)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := m.GenerateAccessToken("user-42", "", nil, -time.Minute)
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewTokenManager("ffffffffffffffffffffffffffffffff", "auth-service", "api-access")
		token, err := other.GenerateAccessToken("user-42", "", nil, time.Hour)
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Wrong audience", func(t *testing.T) {
		other := NewTokenManager(secret, "auth-service", "token-refresh")
		token, err := other.GenerateAccessToken("user-42", "", nil, time.Hour)
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Refresh token rejected", func(t *testing.T) {
		claims := UserClaims{
			Type: TokenTypeRefresh,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-42",
				Issuer:    "auth-service",
				Audience:  jwt.ClaimStrings{"api-access"},
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrWrongTokenType)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := m.ValidateAccessToken("not.a.jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
