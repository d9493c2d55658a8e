package repository

import (
	"context"
	"errors"

	"newsletter/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EngagementRepository toggles likes and saves. Each toggle is one transaction,
// and the unique (user_id, post_id) index keeps at most one row per pair.
type EngagementRepository interface {
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, err error)
	ToggleSave(ctx context.Context, userID, postID uint) (saved bool, err error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository returns a new EngagementRepository implementation.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	var liked bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.LikedPost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			liked = false
			return tx.Model(&models.Post{}).
				Where("id = ? AND number_of_likes > 0", postID).
				UpdateColumn("number_of_likes", gorm.Expr("number_of_likes - ?", 1)).Error
		}

		liked = true
		res = tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.LikedPost{UserID: userID, PostID: postID})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// A concurrent toggle inserted the row and counted it.
			return nil
		}
		return tx.Model(&models.Post{}).
			Where("id = ?", postID).
			UpdateColumn("number_of_likes", gorm.Expr("number_of_likes + ?", 1)).Error
	})
	if err != nil {
		return false, wrapErr(err)
	}
	return liked, nil
}

func (r *engagementRepository) ToggleSave(ctx context.Context, userID, postID uint) (bool, error) {
	var saved bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requirePost(tx, postID); err != nil {
			return err
		}

		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.SavedPost{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			saved = false
			return nil
		}

		saved = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.SavedPost{UserID: userID, PostID: postID}).Error
	})
	if err != nil {
		return false, wrapErr(err)
	}
	return saved, nil
}

func requirePost(tx *gorm.DB, postID uint) error {
	var post models.Post
	err := tx.Select("id").Take(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError("Post", postID)
	}
	return err
}
