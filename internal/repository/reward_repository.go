package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/slimcircle/slimcircle/internal/models"
)

// RewardRepository handles reward database operations. The settlement engine
// is the only writer of this table.
type RewardRepository struct {
	db *DB
}

// NewRewardRepository creates a new reward repository.
func NewRewardRepository(db *DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// CountByWeek counts reward rows for a week.
func (r *RewardRepository) CountByWeek(weekNumber int) (int64, error) {
	var count int64
	err := r.db.Model(&models.Reward{}).
		Where("week_number = ?", weekNumber).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count rewards for week %d: %w", weekNumber, err)
	}
	return count, nil
}

// ReplaceForWeek atomically replaces the full reward set of a week: existing
// rows are deleted and the new set inserted inside one transaction, so a
// failure mid-sequence leaves the previous set intact.
func (r *RewardRepository) ReplaceForWeek(weekNumber int, rewards []models.Reward) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("week_number = ?", weekNumber).Delete(&models.Reward{}).Error; err != nil {
			return fmt.Errorf("failed to delete rewards for week %d: %w", weekNumber, err)
		}
		if len(rewards) == 0 {
			return nil
		}
		if err := tx.Create(&rewards).Error; err != nil {
			return fmt.Errorf("failed to insert rewards for week %d: %w", weekNumber, err)
		}
		return nil
	})

	// A duplicate key after the delete means two writers interleaved or the
	// input held the same user twice.
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: duplicate reward in week %d: %v", ErrIntegrity, weekNumber, err)
	}
	return err
}

// ListByWeek retrieves the settled rewards of a week ordered by rank, with
// users preloaded for display.
func (r *RewardRepository) ListByWeek(weekNumber int) ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.db.Where("week_number = ?", weekNumber).
		Order("rank ASC").
		Preload("User").
		Find(&rewards).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list rewards for week %d: %w", weekNumber, err)
	}
	return rewards, nil
}

// ListByUser retrieves all rewards of a user, most recent first.
func (r *RewardRepository) ListByUser(userID uint) ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rewards).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list rewards for user %d: %w", userID, err)
	}
	return rewards, nil
}

// ListAll retrieves every reward with users preloaded. Feeds the hall-of-fame
// aggregation.
func (r *RewardRepository) ListAll() ([]models.Reward, error) {
	var rewards []models.Reward
	err := r.db.Preload("User").Find(&rewards).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list rewards: %w", err)
	}
	return rewards, nil
}

// ListSettledWeeks returns the distinct week numbers that have reward rows,
// newest first.
func (r *RewardRepository) ListSettledWeeks() ([]int, error) {
	var weeks []int
	err := r.db.Model(&models.Reward{}).
		Distinct("week_number").
		Order("week_number DESC").
		Pluck("week_number", &weeks).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list settled weeks: %w", err)
	}
	return weeks, nil
}

// UpdateCertificateURL stores the rendered certificate location for one
// reward row. Certificate rendering happens after settlement, so this is the
// single post-settlement mutation the table sees.
func (r *RewardRepository) UpdateCertificateURL(rewardID uint, certURL string) error {
	err := r.db.Model(&models.Reward{}).
		Where("id = ?", rewardID).
		Update("certificate_url", certURL).Error

	if err != nil {
		return fmt.Errorf("failed to update certificate for reward %d: %w", rewardID, err)
	}
	return nil
}
