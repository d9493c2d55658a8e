package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewClient("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	SetClient(c)
	t.Cleanup(func() {
		SetClient(nil)
		_ = c.Close()
	})
	return mr
}

type profile struct {
	Name string `json:"name"`
}

func TestAside_MissThenHit(t *testing.T) {
	withMiniRedis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *profile) func() error {
		return func() error {
			calls++
			dest.Name = "ada"
			return nil
		}
	}

	var first profile
	require.NoError(t, Aside(ctx, "k", &first, time.Minute, fetch(&first)))
	var second profile
	require.NoError(t, Aside(ctx, "k", &second, time.Minute, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "ada", second.Name)

	Invalidate(ctx, "k")
	var third profile
	require.NoError(t, Aside(ctx, "k", &third, time.Minute, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_WithoutRedis(t *testing.T) {
	SetClient(nil)
	var p profile
	boom := errors.New("boom")

	err := Aside(context.Background(), "k", &p, time.Minute, func() error { return boom })
	assert.ErrorIs(t, err, boom)

	require.NoError(t, Aside(context.Background(), "k", &p, time.Minute, func() error { p.Name = "x"; return nil }))
	assert.Equal(t, "x", p.Name)
}

func TestTokenRevocation(t *testing.T) {
	mr := withMiniRedis(t)
	ctx := context.Background()

	revoked, err := IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, RevokeToken(ctx, "abc", time.Minute))
	revoked, err = IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = IsTokenRevoked(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeToken_WithoutRedis(t *testing.T) {
	SetClient(nil)
	assert.ErrorIs(t, RevokeToken(context.Background(), "abc", time.Minute), ErrUnavailable)
}

func TestUserProfileKey_CaseSensitive(t *testing.T) {
	assert.Equal(t, "user:profile:Ada", UserProfileKey("Ada"))
	assert.NotEqual(t, UserProfileKey("Ada"), UserProfileKey("ada"))
}

func TestInitRedis_Unreachable(t *testing.T) {
	assert.Nil(t, InitRedis("127.0.0.1:1"))
	assert.Nil(t, GetClient())
}
