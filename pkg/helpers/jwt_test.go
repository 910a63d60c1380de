package helpers

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestGenerateAndParseToken(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", 30*24*time.Hour)
	m.now = fixedClock(now)

	tok, exp, err := m.GenerateToken("user-1")
	require.NoError(t, err)
	assert.Equal(t, now.Add(30*24*time.Hour), exp)

	claims, err := m.ParseToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, exp.Unix(), claims.ExpiresAt.Unix())
}

func TestTokenPayloadCarriesOnlyID(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	tok, _, err := m.GenerateToken("abc")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(raw, &payload))
	assert.Equal(t, "abc", payload["id"])
	assert.Contains(t, payload, "exp")
	assert.Contains(t, payload, "iat")
	assert.Len(t, payload, 3)
}

func TestParseTokenExpired(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m := NewJWTManager("secret", 30*24*time.Hour)
	m.now = fixedClock(now)
	tok, _, err := m.GenerateToken("user-1")
	require.NoError(t, err)

	m.now = fixedClock(now.Add(31 * 24 * time.Hour))
	_, err = m.ParseToken(tok)
	assert.Error(t, err)
}

func TestParseTokenWrongSecret(t *testing.T) {
	tok, _, err := NewJWTManager("secret", time.Hour).GenerateToken("user-1")
	require.NoError(t, err)

	_, err = NewJWTManager("other", time.Hour).ParseToken(tok)
	assert.Error(t, err)
}

func TestParseTokenRejectsNoneAlg(t *testing.T) {
	claims := &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewJWTManager("secret", time.Hour).ParseToken(tok)
	assert.Error(t, err)
}

func TestParseTokenRequiresIDAndExpiry(t *testing.T) {
	secret := []byte("secret")
	m := NewJWTManager(string(secret), time.Hour)

	noID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString(secret)
	require.NoError(t, err)
	_, err = m.ParseToken(noID)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "user-1"}).SignedString(secret)
	require.NoError(t, err)
	_, err = m.ParseToken(noExp)
	assert.Error(t, err)

	_, err = m.ParseToken("not-a-token")
	assert.Error(t, err)
}
