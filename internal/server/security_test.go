package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"newsletter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	resp, err := ts.app.Test(httptest.NewRequest(http.MethodGet, "/health/live", nil), -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestReadinessWithoutRedis(t *testing.T) {
	ts := newTestServer(t, nil, nil)

	for _, path := range []string{"/health", "/health/ready"} {
		status, raw := ts.do(t, http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, status, path)
		body := decode[map[string]any](t, raw)
		assert.Equal(t, "degraded", body["status"])
		checks := body["checks"].(map[string]any)
		assert.Equal(t, "healthy", checks["database"])
		assert.Equal(t, "unavailable", checks["redis"])
	}
}

func TestReadinessDatabaseDown(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	sqlDB, err := ts.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, raw := ts.do(t, http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", decode[map[string]any](t, raw)["status"])
}

func TestAdminFeatureFlags(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	_, member := ts.createUser(t, "member")
	_, admin := ts.createUser(t, "root", func(u *models.User) { u.IsAdmin = true })

	status, _ := ts.do(t, http.MethodGet, "/admin/feature-flags/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, raw := ts.do(t, http.MethodGet, "/admin/feature-flags/", member, nil)
	require.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, models.CodeForbidden, decode[errorBody](t, raw).Code)

	status, raw = ts.do(t, http.MethodGet, "/admin/feature-flags/", admin, nil)
	require.Equal(t, http.StatusOK, status)
	flags := decode[struct {
		Raw       map[string]string `json:"raw"`
		Evaluated map[string]bool   `json:"evaluated"`
	}](t, raw)
	assert.Equal(t, "on", flags.Raw["social_login"])
	assert.True(t, flags.Evaluated["social_login"])

	status, raw = ts.do(t, http.MethodPut, "/admin/feature-flags/social_login/", admin, map[string]string{"value": "sometimes"})
	require.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, decode[errorBody](t, raw).Fields, "value")

	status, _ = ts.do(t, http.MethodPut, "/admin/feature-flags/social_login/", admin, map[string]string{"value": "off"})
	require.Equal(t, http.StatusOK, status)

	status, _ = ts.do(t, http.MethodPost, "/api/social-login/", "", map[string]string{"email": "someone@example.com"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestNotificationsWebSocketGuards(t *testing.T) {
	ts := newTestServer(t, nil, nil)
	_, token := ts.createUser(t, "ada")

	upgrade := func(query string) int {
		req := httptest.NewRequest(http.MethodGet, "/ws/notifications"+query, nil)
		req.Header.Set("Connection", "Upgrade")
		req.Header.Set("Upgrade", "websocket")
		req.Header.Set("Sec-WebSocket-Version", "13")
		req.Header.Set("Sec-WebSocket-Key", "dGhlIHNhbXBsZSBub25jZQ==")
		resp, err := ts.app.Test(req, -1)
		require.NoError(t, err)
		_ = resp.Body.Close()
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, upgrade(""))

	// Redis is absent so there is no hub to join.
	assert.Equal(t, http.StatusServiceUnavailable, upgrade("?token="+token))

	require.NoError(t, ts.featureFlags.Set("realtime_notifications", "off"))
	assert.Equal(t, http.StatusNotFound, upgrade("?token="+token))

	status, _ := ts.do(t, http.MethodGet, "/ws/notifications?token="+token, "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, status)
}
