package models

import (
	"time"
)

// CheckIn represents one weekly weigh-in record. At most one row exists per
// (user, week); repeat submissions inside the open window update the row in
// place.
type CheckIn struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;uniqueIndex:idx_checkins_user_week" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WeekNumber int       `gorm:"not null;uniqueIndex:idx_checkins_user_week;index" json:"week_number"`
	Weight     float64   `gorm:"type:decimal(5,2);not null" json:"weight"`
	PhotoURL   string    `gorm:"type:text;not null" json:"photo_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for CheckIn model.
func (CheckIn) TableName() string {
	return "checkins"
}
