package service

import (
	"context"

	"newsletter/internal/observability"
	"newsletter/internal/repository"
)

type EngagementService struct {
	repo repository.EngagementRepository
}

func NewEngagementService(repo repository.EngagementRepository) *EngagementService {
	return &EngagementService{repo: repo}
}

// ToggleLike likes the post, or unlikes it when already liked. It reports the new state.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	liked, err := s.repo.ToggleLike(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	observability.RecordToggle("like", liked)
	return liked, nil
}

// ToggleSave bookmarks the post, or removes the bookmark. It reports the new state.
func (s *EngagementService) ToggleSave(ctx context.Context, userID, postID uint) (bool, error) {
	saved, err := s.repo.ToggleSave(ctx, userID, postID)
	if err != nil {
		return false, err
	}
	observability.RecordToggle("save", saved)
	return saved, nil
}
