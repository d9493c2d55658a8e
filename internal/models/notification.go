package models

import "time"

// Notification tells a recipient about a new post in a department they follow.
type Notification struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RecipientID uint      `gorm:"not null;index:idx_notifications_recipient_created,priority:1" json:"recipient"`
	PostID      *uint     `gorm:"index" json:"post_id"`
	Post        *Post     `gorm:"foreignKey:PostID" json:"post,omitempty"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time `gorm:"index:idx_notifications_recipient_created,priority:2" json:"created_at"`
}
