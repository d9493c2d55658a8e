package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier map[string]uint

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (uint, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return 0, errors.New("invalid token")
}

func echoUser(c *fiber.Ctx) error {
	uid, _ := c.Locals("userID").(uint)
	return c.JSON(fiber.Map{"userID": uid})
}

func TestAuthRequired(t *testing.T) {
	v := stubVerifier{"good": 123}
	app := fiber.New()
	app.Get("/test", AuthRequired(v), echoUser)

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedUserID uint
	}{
		{"Happy Path", "Bearer good", http.StatusOK, 123},
		{"Lowercase scheme", "bearer good", http.StatusOK, 123},
		{"Missing Header", "", http.StatusUnauthorized, 0},
		{"Invalid Format", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, 0},
		{"Unknown Token", "Bearer bad", http.StatusUnauthorized, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.expectedStatus == http.StatusOK {
				var body map[string]uint
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, tt.expectedUserID, body["userID"])
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	v := stubVerifier{"good": 9}
	app := fiber.New()
	app.Get("/test", OptionalAuth(v), echoUser)

	for header, want := range map[string]uint{"": 0, "Bearer good": 9, "Bearer bad": 0} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]uint
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, want, body["userID"], header)
		_ = resp.Body.Close()
	}
}

func TestWebSocketAuthRequired(t *testing.T) {
	v := stubVerifier{"good": 5}
	app := fiber.New()
	app.Get("/ws", WebSocketAuthRequired(v), echoUser)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws?token=good", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
