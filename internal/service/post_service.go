package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"newsletter/internal/middleware"
	"newsletter/internal/models"
	"newsletter/internal/notifications"
	"newsletter/internal/observability"
	"newsletter/internal/repository"
	"newsletter/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// EventPublisher delivers live events to a user. Implemented by notifications.Notifier.
type EventPublisher interface {
	PublishEvent(ctx context.Context, userID uint, eventType string, payload interface{}) error
}

type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	subRepo  repository.SubscriptionRepository
	events   EventPublisher
	isAdmin  func(ctx context.Context, userID uint) (bool, error)
}

type CreatePostInput struct {
	UserID     uint   `json:"-"`
	Title      string `json:"title" validate:"required,notblank,max=255"`
	Content    string `json:"content" validate:"required,notblank"`
	Department string `json:"department"`
	Image      string `json:"image" validate:"max=255"`
}

type ListPostsInput struct {
	Department string
	ViewerID   uint
	Limit      int
	Offset     int
}

// UpdatePostInput carries a partial post update; nil fields are left unchanged.
type UpdatePostInput struct {
	UserID     uint
	PostID     uint
	Title      *string
	Content    *string
	Department *string
	Image      *string
}

type DeletePostInput struct {
	UserID uint
	PostID uint
}

// NotificationEvent is the payload pushed to sockets for each new notification.
type NotificationEvent struct {
	ID         uint              `json:"id"`
	PostID     uint              `json:"post_id"`
	Title      string            `json:"title"`
	Department models.Department `json:"department"`
	Author     string            `json:"author"`
	CreatedAt  time.Time         `json:"created_at"`
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	subRepo repository.SubscriptionRepository,
	events EventPublisher,
	isAdmin func(ctx context.Context, userID uint) (bool, error),
) *PostService {
	return &PostService{
		postRepo: postRepo,
		userRepo: userRepo,
		subRepo:  subRepo,
		events:   events,
		isAdmin:  isAdmin,
	}
}

// CreatePost stores the post and its notifications atomically, then pushes
// live events to the recipients.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	author, err := s.userRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	dept, err := models.ResolvePostDepartment(author, models.Department(strings.TrimSpace(in.Department)))
	if err != nil {
		return nil, err
	}

	post := &models.Post{
		AuthorID:   author.ID,
		Author:     *author,
		Title:      strings.TrimSpace(in.Title),
		Content:    in.Content,
		Department: dept,
		Image:      strings.TrimSpace(in.Image),
	}

	ctx, span := observability.StartSpan(ctx, "post.create",
		attribute.String("department", string(dept)),
		attribute.Int64("author_id", int64(author.ID)),
	)
	start := time.Now()
	notes, err := s.postRepo.Create(ctx, post)
	observability.EndSpan(span, err)
	if err != nil {
		return nil, err
	}
	observability.FanOutDuration.Observe(time.Since(start).Seconds())
	observability.NotificationsFannedOut.Add(float64(len(notes)))

	s.publish(ctx, post, notes)
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

// publish is best-effort: the notifications are already committed.
func (s *PostService) publish(ctx context.Context, post *models.Post, notes []models.Notification) {
	if s.events == nil {
		return
	}
	for _, n := range notes {
		event := NotificationEvent{
			ID:         n.ID,
			PostID:     post.ID,
			Title:      post.Title,
			Department: post.Department,
			Author:     post.Author.Username,
			CreatedAt:  n.CreatedAt,
		}
		if err := s.events.PublishEvent(ctx, n.RecipientID, notifications.EventNotificationCreated, event); err != nil {
			middleware.Logger.WarnContext(ctx, "failed to publish notification",
				slog.Uint64("recipient_id", uint64(n.RecipientID)),
				slog.Uint64("notification_id", uint64(n.ID)),
				slog.String("error", err.Error()))
		}
	}
}

func (s *PostService) ListPosts(ctx context.Context, in ListPostsInput) ([]*models.Post, error) {
	return s.postRepo.List(ctx, repository.PostQuery{
		Department: models.Department(strings.TrimSpace(in.Department)),
		ViewerID:   in.ViewerID,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
}

// FollowedPosts lists posts from every department userID follows.
func (s *PostService) FollowedPosts(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, error) {
	depts, err := s.subRepo.ListDepartments(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.postRepo.List(ctx, repository.PostQuery{
		Departments: depts,
		ViewerID:    userID,
		Limit:       limit,
		Offset:      offset,
	})
}

func (s *PostService) GetPost(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, id, currentUserID)
}

// LikedBy lists the posts username liked, most recent like first.
func (s *PostService) LikedBy(ctx context.Context, username string, viewerID uint, limit, offset int) ([]*models.Post, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.postRepo.ListLikedBy(ctx, user.ID, repository.PostQuery{ViewerID: viewerID, Limit: limit, Offset: offset})
}

// SavedBy lists the posts username saved. Saves are private: anyone else gets an empty list.
func (s *PostService) SavedBy(ctx context.Context, username string, requesterID uint, limit, offset int) ([]*models.Post, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}
	if user.ID != requesterID {
		return []*models.Post{}, nil
	}
	return s.postRepo.ListSavedBy(ctx, user.ID, repository.PostQuery{ViewerID: requesterID, Limit: limit, Offset: offset})
}

func (s *PostService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", username)
	}
	return user, nil
}

func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, in.UserID, post); err != nil {
		return nil, err
	}

	fields := map[string]string{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		switch {
		case title == "":
			fields["title"] = "This field may not be blank."
		case len(title) > 255:
			fields["title"] = "Ensure this field has no more than 255 characters."
		default:
			post.Title = title
		}
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			fields["content"] = "This field may not be blank."
		} else {
			post.Content = *in.Content
		}
	}
	if in.Department != nil {
		dept, ok := models.ParseDepartment(*in.Department)
		if !ok {
			fields["department"] = fmt.Sprintf("%q is not a valid choice.", *in.Department)
		} else {
			post.Department = dept
		}
	}
	if in.Image != nil {
		post.Image = strings.TrimSpace(*in.Image)
	}
	if len(fields) > 0 {
		return nil, models.NewFieldsError(fields)
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.postRepo.GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID, in.UserID)
	if err != nil {
		return err
	}
	if err := s.authorize(ctx, in.UserID, post); err != nil {
		return err
	}
	return s.postRepo.Delete(ctx, post.ID)
}

// authorize allows the post's author and admins.
func (s *PostService) authorize(ctx context.Context, userID uint, post *models.Post) error {
	if post.AuthorID == userID {
		return nil
	}
	if s.isAdmin != nil {
		admin, err := s.isAdmin(ctx, userID)
		if err != nil {
			return err
		}
		if admin {
			return nil
		}
	}
	return models.NewForbiddenError("You can only modify your own posts")
}
