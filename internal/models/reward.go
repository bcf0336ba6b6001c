package models

import (
	"fmt"
	"time"
)

// Reward tier constants. The tier is derived from the settled rank: the top
// three ranks get their own tier, everyone else gets the participation tier.
const (
	TierChampion    = 1
	TierRunnerUp    = 2
	TierThird       = 3
	TierParticipant = 4
)

// TierForRank maps a dense 1-based rank to its reward tier.
func TierForRank(rank int) int {
	if rank >= 1 && rank <= 3 {
		return rank
	}
	return TierParticipant
}

// TierName returns the external label for a tier.
func TierName(tier int) string {
	switch tier {
	case TierChampion:
		return "champion"
	case TierRunnerUp:
		return "runner-up"
	case TierThird:
		return "third"
	default:
		return "participant"
	}
}

// Reward represents one settled result for a (user, week). The whole set of
// rows for a week is written by a single settlement run; the settlement
// engine is the only writer.
type Reward struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"not null;uniqueIndex:idx_rewards_user_week" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	WeekNumber     int       `gorm:"not null;uniqueIndex:idx_rewards_user_week;index" json:"week_number"`
	Rank           int       `gorm:"not null" json:"rank"`
	Tier           int       `gorm:"not null" json:"tier"`
	WeightDiff     float64   `gorm:"type:decimal(5,2);not null" json:"weight_diff"` // positive = weight lost
	CertificateURL string    `gorm:"type:text" json:"certificate_url"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName specifies the table name for Reward model.
func (Reward) TableName() string {
	return "rewards"
}

func userPlaceholder(id uint) string {
	return fmt.Sprintf("user-%d", id)
}
