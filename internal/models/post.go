package models

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// DepartmentRequiredMessage is the field error for a post without a department.
const DepartmentRequiredMessage = "This field is required."

// Post is a department-scoped newsletter entry.
type Post struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	AuthorID         uint       `gorm:"not null;index" json:"author_id"`
	Author           User       `gorm:"foreignKey:AuthorID" json:"author"`
	Title            string     `gorm:"size:255;not null" json:"title"`
	Content          string     `gorm:"type:text;not null" json:"content"`
	Department       Department `gorm:"size:50;index" json:"department"`
	NumberOfLikes    int        `gorm:"not null;default:0" json:"number_of_likes"`
	NumberOfComments int        `gorm:"not null;default:0" json:"number_of_comments"`
	Image            string     `gorm:"size:255" json:"image"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Computed at query time; never persisted.
	LikesCount    int  `gorm:"->;-:migration" json:"likes_count"`
	CommentsCount int  `gorm:"->;-:migration" json:"comments_count"`
	SavesCount    int  `gorm:"->;-:migration" json:"saves_count"`
	IsLiked       bool `gorm:"->;-:migration" json:"is_liked"`
	IsSaved       bool `gorm:"->;-:migration" json:"is_saved"`
}

// ResolvePostDepartment decides the department a new post lands in.
// Managers and Assistants always post into their own department. Everyone
// else must name a valid department.
func ResolvePostDepartment(author *User, requested Department) (Department, error) {
	if author != nil && author.Role.PostsInOwnDepartment() {
		return author.Department, nil
	}
	if requested == "" {
		return "", NewFieldError("department", DepartmentRequiredMessage)
	}
	if !requested.Valid() {
		return "", NewFieldError("department", fmt.Sprintf("%q is not a valid choice.", string(requested)))
	}
	return requested, nil
}

// BeforeCreate applies the author's department rule so that every insert path honors it.
func (p *Post) BeforeCreate(tx *gorm.DB) error {
	author := p.Author
	if author.ID != p.AuthorID || author.Role == "" {
		author = User{}
		err := tx.Session(&gorm.Session{NewDB: true}).
			Model(&User{}).
			Select("id", "role", "department").
			Where("id = ?", p.AuthorID).
			Take(&author).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return NewNotFoundError("User", p.AuthorID)
		}
		if err != nil {
			return fmt.Errorf("load post author: %w", err)
		}
	}

	dept, err := ResolvePostDepartment(&author, p.Department)
	if err != nil {
		return err
	}
	p.Department = dept
	return nil
}
