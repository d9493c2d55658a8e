package repository

import (
	"context"
	"errors"

	"newsletter/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostQuery selects posts for a listing. ViewerID drives is_liked/is_saved and may be zero.
type PostQuery struct {
	Department  models.Department
	Departments []models.Department
	ViewerID    uint
	Limit       int
	Offset      int
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) ([]models.Notification, error)
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	List(ctx context.Context, q PostQuery) ([]*models.Post, error)
	ListLikedBy(ctx context.Context, userID uint, q PostQuery) ([]*models.Post, error)
	ListSavedBy(ctx context.Context, userID uint, q PostQuery) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// Create inserts the post and one unread notification per subscriber of its
// department, excluding the author, in a single transaction. The created
// notifications are returned for delivery after commit.
func (r *postRepository) Create(ctx context.Context, post *models.Post) ([]models.Notification, error) {
	var notes []models.Notification
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(post).Error; err != nil {
			return err
		}
		var err error
		notes, err = fanOut(tx, post)
		return err
	})
	if err != nil {
		return nil, wrapErr(err)
	}
	return notes, nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.withDetails(r.db.WithContext(ctx), viewerID).
		Where("posts.id = ?", id).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q PostQuery) ([]*models.Post, error) {
	db := r.withDetails(r.db.WithContext(ctx), q.ViewerID)
	if q.Department != "" {
		db = db.Where("posts.department = ?", q.Department)
	}
	if q.Departments != nil {
		if len(q.Departments) == 0 {
			return []*models.Post{}, nil
		}
		db = db.Where("posts.department IN ?", q.Departments)
	}
	db = paginate(db.Order("posts.created_at DESC").Order("posts.id DESC"), q.Limit, q.Offset)

	var posts []*models.Post
	if err := db.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// ListLikedBy returns posts liked by userID, most recent like first.
func (r *postRepository) ListLikedBy(ctx context.Context, userID uint, q PostQuery) ([]*models.Post, error) {
	return r.listThrough(ctx, "liked_posts", userID, q)
}

// ListSavedBy returns posts saved by userID, most recent save first.
func (r *postRepository) ListSavedBy(ctx context.Context, userID uint, q PostQuery) ([]*models.Post, error) {
	return r.listThrough(ctx, "saved_posts", userID, q)
}

func (r *postRepository) listThrough(ctx context.Context, table string, userID uint, q PostQuery) ([]*models.Post, error) {
	db := r.withDetails(r.db.WithContext(ctx), q.ViewerID).
		Joins("JOIN "+table+" AS ledger ON ledger.post_id = posts.id AND ledger.user_id = ?", userID).
		Order("ledger.id DESC")
	db = paginate(db, q.Limit, q.Offset)

	var posts []*models.Post
	if err := db.Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes the editable columns of post.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	res := r.db.WithContext(ctx).Model(post).
		Omit(clause.Associations).
		Select("title", "content", "department", "image", "updated_at").
		Updates(post)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", post.ID)
	}
	return nil
}

// Delete removes the post together with its comments, likes, saves and notifications.
func (r *postRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dependent := range []interface{}{
			&models.Comment{}, &models.LikedPost{}, &models.SavedPost{}, &models.Notification{},
		} {
			if err := tx.Where("post_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", id)
		}
		return nil
	})
	return wrapErr(err)
}

// withDetails selects the derived engagement columns and preloads the author profile.
func (r *postRepository) withDetails(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Model(&models.Post{}).
		Select(`posts.*,
			(SELECT COUNT(*) FROM liked_posts WHERE liked_posts.post_id = posts.id) AS likes_count,
			(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count,
			(SELECT COUNT(*) FROM saved_posts WHERE saved_posts.post_id = posts.id) AS saves_count,
			EXISTS (SELECT 1 FROM liked_posts WHERE liked_posts.post_id = posts.id AND liked_posts.user_id = ?) AS is_liked,
			EXISTS (SELECT 1 FROM saved_posts WHERE saved_posts.post_id = posts.id AND saved_posts.user_id = ?) AS is_saved`,
			viewerID, viewerID).
		Preload("Author.Subscriptions")
}
