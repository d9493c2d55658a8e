package repository

import (
	"context"
	"errors"

	"newsletter/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FanOutBatchSize bounds each bulk insert of notifications.
const FanOutBatchSize = 500

// NotificationQuery filters a recipient's notification list.
type NotificationQuery struct {
	UnreadOnly bool
	Limit      int
	Offset     int
}

// NotificationRepository defines persistence operations for notifications.
// Every method is scoped to the recipient; other users' rows behave as missing.
type NotificationRepository interface {
	List(ctx context.Context, recipientID uint, q NotificationQuery) ([]*models.Notification, error)
	Get(ctx context.Context, id, recipientID uint) (*models.Notification, error)
	SetRead(ctx context.Context, id, recipientID uint, read bool) (*models.Notification, error)
	Delete(ctx context.Context, id, recipientID uint) error
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	UnreadCount(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

// fanOut creates one unread notification for every subscriber of the post's
// department other than its author. It must run inside the post's transaction.
func fanOut(tx *gorm.DB, post *models.Post) ([]models.Notification, error) {
	if post.Department == "" {
		return nil, nil
	}

	var recipients []uint
	if err := tx.Model(&models.DepartmentSubscription{}).
		Where("department = ? AND user_id <> ?", post.Department, post.AuthorID).
		Order("user_id").
		Pluck("user_id", &recipients).Error; err != nil {
		return nil, err
	}
	if len(recipients) == 0 {
		return nil, nil
	}

	postID := post.ID
	notes := make([]models.Notification, 0, len(recipients))
	for _, id := range recipients {
		notes = append(notes, models.Notification{RecipientID: id, PostID: &postID})
	}
	if err := tx.Omit(clause.Associations).CreateInBatches(&notes, FanOutBatchSize).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID uint, q NotificationQuery) ([]*models.Notification, error) {
	db := r.db.WithContext(ctx).
		Preload("Post.Author").
		Where("recipient_id = ?", recipientID)
	if q.UnreadOnly {
		db = db.Where("is_read = ?", false)
	}
	db = paginate(db.Order("created_at DESC").Order("id DESC"), q.Limit, q.Offset)

	var notes []*models.Notification
	if err := db.Find(&notes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return notes, nil
}

func (r *notificationRepository) Get(ctx context.Context, id, recipientID uint) (*models.Notification, error) {
	var note models.Notification
	err := r.db.WithContext(ctx).
		Preload("Post.Author").
		Where("id = ? AND recipient_id = ?", id, recipientID).
		First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Notification", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &note, nil
}

func (r *notificationRepository) SetRead(ctx context.Context, id, recipientID uint, read bool) (*models.Notification, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", read)
	if res.Error != nil {
		return nil, models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Notification", id)
	}
	return r.Get(ctx, id, recipientID)
}

func (r *notificationRepository) Delete(ctx context.Context, id, recipientID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}

func (r *notificationRepository) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
