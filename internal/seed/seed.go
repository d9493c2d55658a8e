package seed

import (
	"context"
	"fmt"
	"log/slog"

	"newsletter/internal/middleware"
	"newsletter/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// RandSeed makes a run reproducible. Zero picks a time-based seed.
	RandSeed int64
}

// Summary counts what a run created.
type Summary struct {
	Users         int
	Follows       int
	Posts         int
	Notifications int
	Comments      int
	Likes         int
	Saves         int
}

// Seed populates the database with users, subscriptions, posts and engagement.
func Seed(ctx context.Context, db *gorm.DB, opts Options) (*Summary, error) {
	logger := middleware.Logger
	logger.Info("seeding database", slog.Int("users", opts.NumUsers), slog.Int("posts", opts.NumPosts))

	if opts.ShouldClean {
		if err := ClearAll(ctx, db); err != nil {
			return nil, fmt.Errorf("clear data: %w", err)
		}
	}

	f := NewFactory(db, opts.RandSeed)
	sum := &Summary{}

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	if len(users) == 0 {
		return sum, nil
	}

	for _, u := range users {
		for n := f.Intn(3); n > 0; n-- {
			dept := f.Department()
			if dept == models.DepartmentGeneral {
				continue
			}
			if err := f.Follow(ctx, u, dept); err != nil {
				return nil, fmt.Errorf("follow %s: %w", dept, err)
			}
			sum.Follows++
		}
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[f.Intn(len(users))]
		post, notes, err := f.CreatePost(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("create post: %w", err)
		}
		sum.Posts++
		sum.Notifications += len(notes)

		for n := f.Intn(4); n > 0; n-- {
			if _, err := f.CreateComment(ctx, users[f.Intn(len(users))], post); err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
		for _, u := range users {
			switch f.Intn(5) {
			case 0:
				if _, err := f.Like(ctx, u, post); err != nil {
					return nil, fmt.Errorf("like post: %w", err)
				}
				sum.Likes++
			case 1:
				if _, err := f.Save(ctx, u, post); err != nil {
					return nil, fmt.Errorf("save post: %w", err)
				}
				sum.Saves++
			}
		}
	}

	logger.Info("seeding complete",
		slog.Int("users", sum.Users),
		slog.Int("follows", sum.Follows),
		slog.Int("posts", sum.Posts),
		slog.Int("notifications", sum.Notifications),
		slog.Int("comments", sum.Comments),
		slog.Int("likes", sum.Likes),
		slog.Int("saves", sum.Saves),
	)
	return sum, nil
}

// ClearAll deletes every seeded row, children first.
func ClearAll(ctx context.Context, db *gorm.DB) error {
	tables := []any{
		&models.Notification{},
		&models.SavedPost{},
		&models.LikedPost{},
		&models.Comment{},
		&models.Post{},
		&models.DepartmentSubscription{},
		&models.User{},
	}
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range tables {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}
