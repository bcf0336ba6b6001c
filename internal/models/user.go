// Package models defines domain models for the weigh-in tracker.
package models

import (
	"time"
)

// User represents a registered participant.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Phone     string    `gorm:"uniqueIndex;not null;size:32" json:"phone"`
	Nickname  string    `gorm:"size:100" json:"nickname"`
	Avatar    string    `gorm:"type:text" json:"avatar"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}

// DisplayName returns the nickname, falling back to a numbered placeholder
// for users who never set one.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return userPlaceholder(u.ID)
}
