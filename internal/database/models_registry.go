package database

import "newsletter/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.DepartmentSubscription{},
		&models.Post{},
		&models.Comment{},
		&models.LikedPost{},
		&models.SavedPost{},
		&models.Notification{},
	}
}
