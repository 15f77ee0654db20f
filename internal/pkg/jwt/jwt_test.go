package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing"

func TestGenerateToken(t *testing.T) {
	t.Run("generate valid token", func(t *testing.T) {
		token, err := GenerateToken(123, testSecret, 24)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.Equal(t, int64(123), claims.UserID)
		assert.Equal(t, issuer, claims.Issuer)
		assert.NotEmpty(t, claims.ID)
	})

	t.Run("same student gets distinct token ids", func(t *testing.T) {
		token1, err := GenerateToken(7, testSecret, 24)
		require.NoError(t, err)
		token2, err := GenerateToken(7, testSecret, 24)
		require.NoError(t, err)

		assert.NotEqual(t, token1, token2)
	})

	t.Run("expiry follows expire hours", func(t *testing.T) {
		token, err := GenerateToken(1, testSecret, 168)
		require.NoError(t, err)

		claims, err := ParseToken(token, testSecret)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(168*time.Hour), claims.ExpiresAt.Time, time.Minute)
	})
}

func TestParseToken(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		token, _ := GenerateToken(123, testSecret, 24)

		claims, err := ParseToken(token, "wrong-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, claims)
	})

	t.Run("garbage input", func(t *testing.T) {
		for _, in := range []string{"", "not-a-jwt-at-all", "invalid.token.string"} {
			claims, err := ParseToken(in, testSecret)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		claims := Claims{
			UserID: 123,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			},
		}
		tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		result, err := ParseToken(tokenString, testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.Nil(t, result)
	})

	t.Run("none signing method rejected", func(t *testing.T) {
		claims := Claims{
			UserID: 123,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		tokenString, _ := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)

		result, err := ParseToken(tokenString, testSecret)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, result)
	})
}
