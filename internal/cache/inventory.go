package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserProfileKeyPrefix = "user:profile:%s"
	DepartmentStatsKey   = "departments:stats"
	RevokedTokenPrefix   = "blacklist:%s"
)

const (
	UserProfileTTL     = 5 * time.Minute
	DepartmentStatsTTL = time.Minute
)

// UserProfileKey uses the username verbatim. Usernames are case sensitive.
func UserProfileKey(username string) string {
	return fmt.Sprintf(UserProfileKeyPrefix, username)
}

func RevokedTokenKey(jti string) string {
	return fmt.Sprintf(RevokedTokenPrefix, jti)
}

// Invalidate deletes keys, ignoring failures.
func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUserProfile(ctx context.Context, username string) {
	Invalidate(ctx, UserProfileKey(username))
}

func InvalidateDepartmentStats(ctx context.Context) {
	Invalidate(ctx, DepartmentStatsKey)
}
