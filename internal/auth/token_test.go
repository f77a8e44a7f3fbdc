package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestExtractAccessToken(t *testing.T) {
	t.Run("Cookie Preferred", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie_token"})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "cookie_token", ExtractAccessToken(req))
	})

	t.Run("Header Fallback", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("Empty Cookie Falls Back to Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: ""})
		req.Header.Set("Authorization", "Bearer header_token")

		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("No Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		assert.Empty(t, ExtractAccessToken(req))
	})

	t.Run("Malformed Header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic user:pass")
		assert.Empty(t, ExtractAccessToken(req))
	})

	t.Run("Scheme is case-insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer  header_token ")
		assert.Equal(t, "header_token", ExtractAccessToken(req))
	})

	t.Run("Scheme without token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer")
		assert.Empty(t, ExtractAccessToken(req))
	})
}

func TestTokenManager(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	t.Run("Round trip", func(t *testing.T) {
		token, err := m.Generate("ops@smarthome.test", RoleAdmin)
		require.NoError(t, err)

		claims, err := m.Parse(token)
		require.NoError(t, err)
		assert.Equal(t, "ops@smarthome.test", claims.Email)
		assert.Equal(t, RoleAdmin, claims.Role)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := NewTokenManager("other", time.Hour).Generate("x", RoleAdmin)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		past := NewTokenManager("test-secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := past.Generate("x", RoleAdmin)
		require.NoError(t, err)

		_, err = m.Parse(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("No secret", func(t *testing.T) {
		empty := NewTokenManager("", time.Hour)
		_, err := empty.Generate("x", RoleAdmin)
		assert.ErrorIs(t, err, ErrNoSecret)
		_, err = empty.Parse("abc")
		assert.ErrorIs(t, err, ErrNoSecret)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	m := NewTokenManager("test-secret", time.Hour)

	token, err := m.Login("ops@smarthome.test", "s3cret", string(hash))
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = m.Login("ops@smarthome.test", "wrong", string(hash))
	assert.ErrorIs(t, err, ErrInvalidPassword)

	_, err = m.Login("ops@smarthome.test", "s3cret", "")
	assert.ErrorIs(t, err, ErrAdminNotEnabled)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("pw", hash))
	assert.False(t, CheckPasswordHash("nope", hash))
}
