package service

import (
	"context"
	"sync"
	"testing"

	"newsletter/internal/cache"
	"newsletter/internal/config"
	"newsletter/internal/database"
	"newsletter/internal/models"
	"newsletter/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-that-is-long-enough-for-hs256"

type recordedEvent struct {
	UserID  uint
	Type    string
	Payload interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, userID uint, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{UserID: userID, Type: eventType, Payload: payload})
	return nil
}

func (p *recordingPublisher) recipients() []uint {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]uint, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.UserID)
	}
	return out
}

// stack wires real repositories over an in-memory SQLite database.
type stack struct {
	db            *gorm.DB
	users         repository.UserRepository
	events        *recordingPublisher
	tokens        *TokenService
	auth          *AuthService
	userSvc       *UserService
	posts         *PostService
	comments      *CommentService
	engagement    *EngagementService
	subscriptions *SubscriptionService
	notifications *NotificationService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.AutoMigrate(db))

	users := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	events := &recordingPublisher{}
	tokens := NewTokenService(&config.Config{JWTSecret: testSecret})
	userSvc := NewUserService(users)

	return &stack{
		db:            db,
		users:         users,
		events:        events,
		tokens:        tokens,
		auth:          NewAuthService(users, tokens),
		userSvc:       userSvc,
		posts:         NewPostService(postRepo, users, subRepo, events, userSvc.IsAdmin),
		comments:      NewCommentService(repository.NewCommentRepository(db), postRepo),
		engagement:    NewEngagementService(repository.NewEngagementRepository(db)),
		subscriptions: NewSubscriptionService(subRepo, users),
		notifications: NewNotificationService(repository.NewNotificationRepository(db)),
	}
}

func (s *stack) user(t *testing.T, username string, mutate ...func(*models.User)) *models.User {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "unused"}
	for _, m := range mutate {
		m(u)
	}
	require.NoError(t, s.users.Create(context.Background(), u))
	return u
}

func withRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})
	return mr
}

func assertCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok, "expected *models.AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func strPtr(s string) *string { return &s }
