// Package bootstrap wires the runtime dependencies shared by the commands.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"newsletter/internal/cache"
	"newsletter/internal/config"
	"newsletter/internal/database"
	"newsletter/internal/middleware"
	"newsletter/internal/repository"
	"newsletter/internal/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// InitRuntime connects to the database and Redis, then bootstraps the admin
// account when ADMIN_BOOTSTRAP is set. The Redis client is nil when Redis is
// unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	rdb := cache.InitRedis(cfg.RedisURL)

	if err := EnsureAdmin(ctx, cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	return db, rdb, nil
}

// EnsureAdmin creates or promotes the configured admin account. It does
// nothing unless ADMIN_BOOTSTRAP is enabled.
func EnsureAdmin(ctx context.Context, cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil || !cfg.AdminBootstrap {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" {
		return errors.New("ADMIN_EMAIL must be set when ADMIN_BOOTSTRAP is enabled")
	}
	if cfg.AdminPassword == "" {
		return errors.New("ADMIN_PASSWORD must be set when ADMIN_BOOTSTRAP is enabled")
	}
	username := strings.TrimSpace(cfg.AdminUsername)
	if username == "" {
		username = "admin"
	}

	auth := service.NewAuthService(repository.NewUserRepository(db), service.NewTokenService(cfg))
	user, created, err := auth.EnsureSuperuser(ctx, service.SuperuserInput{
		Username: username,
		Email:    email,
		Password: cfg.AdminPassword,
	})
	if err != nil {
		return err
	}

	middleware.Logger.Info("admin bootstrap ensured",
		slog.String("username", user.Username),
		slog.Uint64("user_id", uint64(user.ID)),
		slog.Bool("created", created),
	)
	return nil
}
