package models

import (
	"time"
)

// CertConfig maps a week to the four certificate background images used when
// rendering reward certificates. A row with a NULL week number is the
// default configuration used for weeks without an override.
type CertConfig struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	WeekNumber     *int      `gorm:"uniqueIndex" json:"week_number"`
	ImgGold        string    `gorm:"type:text;not null" json:"img_gold"`
	ImgSilver      string    `gorm:"type:text;not null" json:"img_silver"`
	ImgBronze      string    `gorm:"type:text;not null" json:"img_bronze"`
	ImgParticipate string    `gorm:"type:text;not null" json:"img_participate"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for CertConfig model.
func (CertConfig) TableName() string {
	return "cert_configs"
}

// ImageForTier returns the background image configured for a reward tier.
func (c *CertConfig) ImageForTier(tier int) string {
	switch tier {
	case TierChampion:
		return c.ImgGold
	case TierRunnerUp:
		return c.ImgSilver
	case TierThird:
		return c.ImgBronze
	default:
		return c.ImgParticipate
	}
}
