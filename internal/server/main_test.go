package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"newsletter/internal/config"
	"newsletter/internal/database"
	"newsletter/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type testServer struct {
	*Server
	app *fiber.App
}

func newTestConfig() *config.Config {
	return &config.Config{
		Env:            "test",
		JWTSecret:      testSecret,
		AllowedOrigins: "http://localhost:5173",
	}
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))
	return db
}

// newTestServer builds the full app over SQLite. rdb may be nil.
func newTestServer(t *testing.T, cfg *config.Config, rdb *redis.Client) *testServer {
	t.Helper()
	if cfg == nil {
		cfg = newTestConfig()
	}
	s, err := NewServerWithDeps(cfg, newTestDB(t), rdb)
	require.NoError(t, err)
	return &testServer{Server: s, app: s.NewApp()}
}

// createUser inserts a user directly and returns it with an access token.
func (ts *testServer) createUser(t *testing.T, username string, mutate ...func(*models.User)) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "unused"}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, ts.userRepo.Create(context.Background(), u))
	pair, err := ts.tokens.IssuePair(u)
	require.NoError(t, err)
	return u, pair.Access
}

// do sends a JSON request and returns the status and raw body.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields"`
}
