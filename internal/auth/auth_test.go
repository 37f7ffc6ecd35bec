package auth

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHasher(t *testing.T) {
	h := Hasher{Cost: bcrypt.MinCost}

	hash, err := h.Hash("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.NoError(t, h.Check(hash, "secret1"))
	assert.ErrorIs(t, h.Check(hash, "secret2"), ErrWrongPassword)

	_, err = h.Hash("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestTokens_RoundTrip(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)

	signed, err := tokens.Issue("user-1")
	require.NoError(t, err)

	sub, err := tokens.Parse(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestTokens_Rejects(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	signed, err := tokens.Issue("user-1")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokens("s3cret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = tokens.Parse(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("no expiry", func(t *testing.T) {
		noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "user-1"}).
			SignedString([]byte("s3cret"))
		require.NoError(t, err)
		_, err = tokens.Parse(noExp)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRequired(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	signed, err := tokens.Issue("user-42")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/me", Required(tokens), func(c *fiber.Ctx) error {
		return c.SendString(UserID(c))
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"missing", "", fiber.StatusUnauthorized, "Token required"},
		{"wrong scheme", "Basic abc", fiber.StatusUnauthorized, "Token required"},
		{"invalid", "Bearer nope", fiber.StatusUnauthorized, "Invalid token"},
		{"valid", "Bearer " + signed, fiber.StatusOK, "user-42"},
		{"lower-case scheme", "bearer " + signed, fiber.StatusOK, "user-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestOptional(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	signed, err := tokens.Issue("user-7")
	require.NoError(t, err)

	app := fiber.New()
	app.Get("/", Optional(tokens), func(c *fiber.Ctx) error {
		return c.SendString("id=" + UserID(c))
	})

	for header, want := range map[string]string{
		"":                 "id=",
		"Bearer bogus":     "id=",
		"Bearer " + signed: "id=user-7",
	} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, want, string(body))
	}
}
