package models

import "time"

// LikedPost records that a user liked a post. One row per (user, post).
type LikedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_liked_posts_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_liked_posts_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// SavedPost records that a user bookmarked a post. One row per (user, post).
type SavedPost struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_saved_posts_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_saved_posts_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
