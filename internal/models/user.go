// Package models contains data structures for the application's domain models.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// User is an account. Email is the login identifier. The JSON shape is the
// public profile, so the admin flag and timestamps stay server side.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email      string     `gorm:"size:254;uniqueIndex;not null" json:"email"`
	Password   string     `gorm:"not null" json:"-"`
	FirstName  string     `gorm:"size:150" json:"first_name"`
	LastName   string     `gorm:"size:150" json:"last_name"`
	Department Department `gorm:"size:50;not null;default:General" json:"department"`
	Role       Role       `gorm:"size:50;not null;default:Member" json:"role"`
	Image      string     `gorm:"size:255" json:"image"`
	IsAdmin    bool       `gorm:"not null;default:false" json:"-"`
	CreatedAt  time.Time  `json:"-"`
	UpdatedAt  time.Time  `json:"-"`

	Subscriptions []DepartmentSubscription `gorm:"foreignKey:UserID" json:"-"`
}

// FollowedDepartments lists the departments from loaded subscriptions.
func (u *User) FollowedDepartments() []Department {
	out := make([]Department, 0, len(u.Subscriptions))
	for _, s := range u.Subscriptions {
		out = append(out, s.Department)
	}
	return out
}

// MarshalJSON renders subscriptions as a flat list of department names.
func (u User) MarshalJSON() ([]byte, error) {
	type alias User
	return json.Marshal(struct {
		alias
		Subscriptions []Department `json:"subscriptions"`
	}{alias(u), u.FollowedDepartments()})
}

// UnmarshalJSON accepts the flat subscriptions list produced by MarshalJSON.
func (u *User) UnmarshalJSON(data []byte) error {
	type alias User
	aux := struct {
		*alias
		Subscriptions []Department `json:"subscriptions"`
	}{alias: (*alias)(u)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	u.Subscriptions = make([]DepartmentSubscription, 0, len(aux.Subscriptions))
	for _, d := range aux.Subscriptions {
		u.Subscriptions = append(u.Subscriptions, DepartmentSubscription{UserID: u.ID, Department: d})
	}
	return nil
}

// BeforeCreate assigns the first two regular accounts the President and
// Vice President roles. Later accounts keep the role they were created with.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Department == "" {
		u.Department = DepartmentGeneral
	}
	if u.Role == "" {
		u.Role = RoleMember
	}
	if u.IsAdmin {
		return nil
	}

	var regular int64
	if err := tx.Session(&gorm.Session{NewDB: true}).
		Model(&User{}).
		Where("is_admin = ?", false).
		Count(&regular).Error; err != nil {
		return fmt.Errorf("count regular users: %w", err)
	}

	switch regular {
	case 0:
		u.Role = RolePresident
	case 1:
		u.Role = RoleVicePresident
	}
	return nil
}

// AfterCreate subscribes every new account to the General department.
func (u *User) AfterCreate(tx *gorm.DB) error {
	sub := DepartmentSubscription{UserID: u.ID, Department: DepartmentGeneral}
	if err := tx.Session(&gorm.Session{NewDB: true}).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&sub).Error; err != nil {
		return fmt.Errorf("create general subscription: %w", err)
	}
	return nil
}
