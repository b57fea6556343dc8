package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := NewAccessToken(testSecret, 42, "supervisor", "jti-1", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)

	claims, err := ParseAccessToken(testSecret, tok.Token)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, "supervisor", claims.Role)
	assert.Equal(t, "jti-1", claims.JTI)
	assert.WithinDuration(t, tok.Exp, claims.Exp, time.Second)
}

func TestParseAccessTokenMalformed(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := ParseAccessToken(testSecret, raw)
		assert.ErrorIs(t, err, ErrTokenMalformed, "input %q", raw)
	}
}

func TestParseAccessTokenWrongSecret(t *testing.T) {
	tok, err := NewAccessToken("other-secret", 1, "regular", "jti-1", 15)
	require.NoError(t, err)
	_, err = ParseAccessToken(testSecret, tok.Token)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestParseAccessTokenExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"role": "regular",
		"jti":  "jti-7",
		"exp":  time.Now().UTC().Add(-time.Minute).Unix(),
		"iat":  time.Now().UTC().Add(-time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseAccessTokenRejectsMissingJTI(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":  float64(7),
		"role": "regular",
		"exp":  time.Now().UTC().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ParseAccessToken(testSecret, signed)
	assert.ErrorIs(t, err, ErrTokenMalformed)
}

func TestNewJTI(t *testing.T) {
	a, err := NewJTI()
	require.NoError(t, err)
	b, err := NewJTI()
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Sup3r$ecret", 4)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "Sup3r$ecret"))
	assert.False(t, VerifyPassword(hash, "sup3r$ecret"))
}
