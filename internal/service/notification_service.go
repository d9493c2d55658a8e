package service

import (
	"context"

	"newsletter/internal/models"
	"newsletter/internal/repository"
)

// NotificationService exposes a user's own notifications. Other users' ids
// are indistinguishable from missing ones.
type NotificationService struct {
	repo repository.NotificationRepository
}

type ListNotificationsInput struct {
	UserID     uint
	UnreadOnly bool
	Limit      int
	Offset     int
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, in ListNotificationsInput) ([]*models.Notification, error) {
	return s.repo.List(ctx, in.UserID, repository.NotificationQuery{
		UnreadOnly: in.UnreadOnly,
		Limit:      in.Limit,
		Offset:     in.Offset,
	})
}

func (s *NotificationService) Get(ctx context.Context, userID, id uint) (*models.Notification, error) {
	return s.repo.Get(ctx, id, userID)
}

// SetRead moves a notification between read and unread.
func (s *NotificationService) SetRead(ctx context.Context, userID, id uint, read bool) (*models.Notification, error) {
	return s.repo.SetRead(ctx, id, userID, read)
}

func (s *NotificationService) Delete(ctx context.Context, userID, id uint) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}
