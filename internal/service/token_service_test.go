package service

import (
	"context"
	"testing"
	"time"

	"newsletter/internal/config"
	"newsletter/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_IssueAndVerify(t *testing.T) {
	svc := NewTokenService(&config.Config{JWTSecret: testSecret})
	pair, err := svc.IssuePair(&models.User{ID: 9, Username: "ada"})
	require.NoError(t, err)

	id, err := svc.VerifyAccessToken(context.Background(), pair.Access)
	require.NoError(t, err)
	assert.Equal(t, uint(9), id)

	_, err = svc.VerifyAccessToken(context.Background(), pair.Refresh)
	assertCode(t, err, models.CodeUnauthorized)

	claims, err := svc.Parse(pair.Refresh, TokenTypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, "ada", claims.Username)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestTokenService_Refresh(t *testing.T) {
	svc := NewTokenService(&config.Config{JWTSecret: testSecret})
	pair, err := svc.IssuePair(&models.User{ID: 3, Username: "grace"})
	require.NoError(t, err)

	access, err := svc.Refresh(context.Background(), pair.Refresh)
	require.NoError(t, err)
	id, err := svc.VerifyAccessToken(context.Background(), access)
	require.NoError(t, err)
	assert.Equal(t, uint(3), id)

	_, err = svc.Refresh(context.Background(), pair.Access)
	assertCode(t, err, models.CodeUnauthorized)
}

func TestTokenService_RejectsForeignAndExpiredTokens(t *testing.T) {
	svc := NewTokenService(&config.Config{JWTSecret: testSecret})
	other := NewTokenService(&config.Config{JWTSecret: "a-completely-different-secret-value"})

	pair, err := other.IssuePair(&models.User{ID: 1, Username: "x"})
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(context.Background(), pair.Access)
	assertCode(t, err, models.CodeUnauthorized)

	expired := &TokenService{secret: []byte(testSecret), accessTTL: -time.Minute, refreshTTL: time.Hour}
	pair, err = expired.IssuePair(&models.User{ID: 1, Username: "x"})
	require.NoError(t, err)
	_, err = svc.VerifyAccessToken(context.Background(), pair.Access)
	assertCode(t, err, models.CodeUnauthorized)

	_, err = svc.VerifyAccessToken(context.Background(), "not-a-jwt")
	assertCode(t, err, models.CodeUnauthorized)

	empty := NewTokenService(&config.Config{})
	_, err = empty.IssuePair(&models.User{ID: 1})
	assert.Error(t, err)
}

func TestTokenService_Revoke(t *testing.T) {
	mr := withRedis(t)
	svc := NewTokenService(&config.Config{JWTSecret: testSecret})
	ctx := context.Background()

	pair, err := svc.IssuePair(&models.User{ID: 5, Username: "linus"})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, pair.Access))

	_, err = svc.VerifyAccessToken(ctx, pair.Access)
	assertCode(t, err, models.CodeUnauthorized)

	claims, err := svc.Parse(pair.Access, "")
	require.NoError(t, err)
	assert.True(t, mr.Exists("blacklist:"+claims.ID))
	assert.Greater(t, mr.TTL("blacklist:"+claims.ID), 50*time.Minute)

	// The refresh token is independent until revoked as well.
	_, err = svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
}

func TestTokenService_RevokeWithoutRedis(t *testing.T) {
	svc := NewTokenService(&config.Config{JWTSecret: testSecret})
	pair, err := svc.IssuePair(&models.User{ID: 5, Username: "linus"})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(context.Background(), pair.Access))
	_, err = svc.VerifyAccessToken(context.Background(), pair.Access)
	assert.NoError(t, err)
}
