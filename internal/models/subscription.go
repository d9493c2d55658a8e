package models

// DepartmentSubscription marks a user as following a department feed.
type DepartmentSubscription struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_subscriptions_user_department" json:"user_id"`
	Department Department `gorm:"size:50;not null;uniqueIndex:idx_subscriptions_user_department;index" json:"department"`
}
