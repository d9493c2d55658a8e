// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "newsletter/docs" // swagger docs
	"newsletter/internal/cache"
	"newsletter/internal/config"
	"newsletter/internal/database"
	"newsletter/internal/featureflags"
	"newsletter/internal/middleware"
	"newsletter/internal/models"
	"newsletter/internal/notifications"
	"newsletter/internal/repository"
	"newsletter/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	rateLimiter    *middleware.RateLimiter
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	userRepo       repository.UserRepository
	notifier       *notifications.Notifier
	hub            *notifications.Hub
	featureFlags   *featureflags.Manager

	tokens              *service.TokenService
	authService         *service.AuthService
	userService         *service.UserService
	postService         *service.PostService
	commentService      *service.CommentService
	engagementService   *service.EngagementService
	subscriptionService *service.SubscriptionService
	notificationService *service.NotificationService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return NewServerWithDeps(cfg, db, cache.InitRedis(cfg.RedisURL))
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB and Redis.
// A nil redisClient disables caching, revocation, rate limiting and live push.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("newsletter-api"),
		rateLimiter:    middleware.NewRateLimiter(redisClient, cfg.Env),
		userRepo:       userRepo,
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags),
		tokens:         service.NewTokenService(cfg),
	}

	// The notifier is nil-safe, so publishing without Redis is a no-op.
	server.notifier = notifications.NewNotifier(redisClient)
	if redisClient != nil {
		server.hub = notifications.NewHub()
	}

	server.userService = service.NewUserService(userRepo)
	server.authService = service.NewAuthService(userRepo, server.tokens)
	server.postService = service.NewPostService(postRepo, userRepo, subRepo, server.notifier, server.userService.IsAdmin)
	server.commentService = service.NewCommentService(repository.NewCommentRepository(db), postRepo)
	server.engagementService = service.NewEngagementService(repository.NewEngagementRepository(db))
	server.subscriptionService = service.NewSubscriptionService(subRepo, userRepo)
	server.notificationService = service.NewNotificationService(repository.NewNotificationRepository(db))

	return server, nil
}

// NewApp builds the Fiber application with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:       "Newsletter API",
		StrictRouting: false,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return models.RespondWithError(c, fe.Code, errors.New(fe.Message))
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	auth := middleware.AuthRequired(s.tokens)
	optional := middleware.OptionalAuth(s.tokens)

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Newsletter Backend Metrics Dashboard",
	}))
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Token endpoints
	api := app.Group("/api")
	api.Post("/token", s.rateLimiter.Handler("token", 10, 5*time.Minute, middleware.FailOpen), s.ObtainToken)
	api.Post("/token/refresh", s.RefreshToken)
	api.Post("/social-login", s.SocialLogin)
	api.Get("/user/:user_id/followed-departments", auth, s.GetFollowedDepartments)

	// Account routes
	account := app.Group("/auth")
	account.Post("/registration", s.rateLimiter.Handler("registration", 3, 10*time.Minute, middleware.FailOpen), s.Register)
	account.Post("/login", s.rateLimiter.Handler("token", 10, 5*time.Minute, middleware.FailOpen), s.Login)
	account.Post("/logout", auth, s.Logout)
	account.Post("/password/change", auth, s.ChangePassword)

	// Profile routes
	app.Get("/user/profile", auth, s.GetMyProfile)
	app.Put("/user/profile", auth, s.UpdateMyProfile)
	app.Patch("/user/profile", auth, s.UpdateMyProfile)

	users := app.Group("/users")
	users.Get("/", auth, s.GetAllUsers)
	// Specific /:username/:resource routes before the generic /:username route
	users.Get("/:username/liked", optional, s.GetLikedPosts)
	users.Get("/:username/saved", auth, s.GetSavedPosts)
	users.Put("/:username/update-role", auth, s.UpdateUserRole)
	users.Patch("/:username/update-role", auth, s.UpdateUserRole)
	users.Get("/:username", s.GetUserProfile)

	posts := app.Group("/posts")
	posts.Get("/", optional, s.GetPosts)
	posts.Post("/", auth, s.rateLimiter.Handler("create_post", 10, time.Minute, middleware.FailOpen), s.CreatePost)
	// /followed must be registered before /:id
	posts.Get("/followed", auth, s.GetFollowedPosts)
	posts.Get("/:id/comments", s.GetComments)
	posts.Post("/:id/comments", auth, s.CreateComment)
	posts.Post("/:id/like", auth, s.LikePost)
	posts.Post("/:id/save", auth, s.SavePost)
	posts.Get("/:id", optional, s.GetPost)
	posts.Put("/:id", auth, s.UpdatePost)
	posts.Patch("/:id", auth, s.UpdatePost)
	posts.Delete("/:id", auth, s.DeletePost)

	departments := app.Group("/departments")
	departments.Get("/", s.GetDepartments)
	departments.Post("/follow", auth, s.FollowDepartment)

	notes := app.Group("/notifications", auth)
	notes.Get("/", s.GetNotifications)
	notes.Get("/unread-count", s.GetUnreadCount)
	notes.Post("/mark-all-read", s.MarkAllNotificationsRead)
	notes.Get("/:id", s.GetNotification)
	notes.Put("/:id", s.UpdateNotification)
	notes.Patch("/:id", s.UpdateNotification)
	notes.Delete("/:id", s.DeleteNotification)

	app.Get("/ws/notifications", middleware.WebSocketAuthRequired(s.tokens), s.NotificationsWebSocket())

	admin := app.Group("/admin", auth, s.AdminRequired())
	admin.Get("/feature-flags", s.GetFeatureFlags)
	admin.Put("/feature-flags/:name", s.UpdateFeatureFlag)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests. Redis is optional: without
// it the service runs degraded and still reports ready.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus == "unhealthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus != "healthy":
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after AuthRequired so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := currentUserID(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		admin, err := s.userService.IsAdmin(c.UserContext(), userID)
		if err != nil {
			return respondError(c, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	s.app = s.NewApp()

	if s.hub != nil {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if s.hub != nil {
		if err := s.hub.Shutdown(ctx); err != nil {
			middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
