package service

import (
	"context"
	"strings"

	"newsletter/internal/cache"
	"newsletter/internal/models"
	"newsletter/internal/observability"
	"newsletter/internal/repository"
)

// ErrInvalidDepartment is returned by Toggle for missing or unknown departments.
var ErrInvalidDepartment = models.NewValidationError("Invalid department")

type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
}

// DepartmentStat is one department with its subscriber count.
type DepartmentStat struct {
	Name        models.Department `json:"name"`
	Subscribers int64             `json:"subscribers"`
}

// DepartmentsOverview lists the department and role enumerations.
type DepartmentsOverview struct {
	Departments []DepartmentStat `json:"departments"`
	Roles       []models.Role    `json:"roles"`
}

func NewSubscriptionService(subRepo repository.SubscriptionRepository, userRepo repository.UserRepository) *SubscriptionService {
	return &SubscriptionService{subRepo: subRepo, userRepo: userRepo}
}

// Toggle follows or unfollows a department and reports the resulting state.
func (s *SubscriptionService) Toggle(ctx context.Context, userID uint, department string) (models.Department, bool, error) {
	dept, ok := models.ParseDepartment(strings.TrimSpace(department))
	if !ok {
		return "", false, ErrInvalidDepartment
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", false, err
	}

	following, err := s.subRepo.Toggle(ctx, user.ID, dept)
	if err != nil {
		return "", false, err
	}
	observability.RecordToggle("follow", following)
	cache.Invalidate(ctx, cache.UserProfileKey(user.Username), cache.DepartmentStatsKey)
	return dept, following, nil
}

// FollowedDepartments lists the departments userID follows.
func (s *SubscriptionService) FollowedDepartments(ctx context.Context, userID uint) ([]models.Department, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.subRepo.ListDepartments(ctx, userID)
}

// Overview returns every department with its subscriber count, cached briefly.
func (s *SubscriptionService) Overview(ctx context.Context) (*DepartmentsOverview, error) {
	var overview DepartmentsOverview
	err := cache.Aside(ctx, cache.DepartmentStatsKey, &overview, cache.DepartmentStatsTTL, func() error {
		counts, err := s.subRepo.CountByDepartment(ctx)
		if err != nil {
			return err
		}
		overview.Departments = make([]DepartmentStat, 0, len(counts))
		for _, d := range models.AllDepartments() {
			overview.Departments = append(overview.Departments, DepartmentStat{Name: d, Subscribers: counts[d]})
		}
		overview.Roles = models.AllRoles()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &overview, nil
}
