package repository

import (
	"context"

	"newsletter/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SubscriptionRepository defines persistence operations for department subscriptions.
type SubscriptionRepository interface {
	Toggle(ctx context.Context, userID uint, department models.Department) (following bool, err error)
	ListDepartments(ctx context.Context, userID uint) ([]models.Department, error)
	CountByDepartment(ctx context.Context) (map[models.Department]int64, error)
}

type subscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository returns a new SubscriptionRepository implementation.
func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Toggle removes an existing subscription or creates a missing one.
func (r *subscriptionRepository) Toggle(ctx context.Context, userID uint, department models.Department) (bool, error) {
	var following bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND department = ?", userID, department).
			Delete(&models.DepartmentSubscription{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			following = false
			return nil
		}
		following = true
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.DepartmentSubscription{UserID: userID, Department: department}).Error
	})
	if err != nil {
		return false, wrapErr(err)
	}
	return following, nil
}

func (r *subscriptionRepository) ListDepartments(ctx context.Context, userID uint) ([]models.Department, error) {
	departments := []models.Department{}
	if err := r.db.WithContext(ctx).Model(&models.DepartmentSubscription{}).
		Where("user_id = ?", userID).
		Order("id").
		Pluck("department", &departments).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return departments, nil
}

// CountByDepartment returns the subscriber count of every department, including empty ones.
func (r *subscriptionRepository) CountByDepartment(ctx context.Context) (map[models.Department]int64, error) {
	var rows []struct {
		Department models.Department
		Total      int64
	}
	if err := r.db.WithContext(ctx).Model(&models.DepartmentSubscription{}).
		Select("department, COUNT(*) AS total").
		Group("department").
		Scan(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	counts := make(map[models.Department]int64, len(models.AllDepartments()))
	for _, d := range models.AllDepartments() {
		counts[d] = 0
	}
	for _, row := range rows {
		counts[row.Department] = row.Total
	}
	return counts, nil
}
