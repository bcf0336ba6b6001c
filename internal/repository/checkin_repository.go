package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/slimcircle/slimcircle/internal/models"
)

// CheckInRepository handles check-in database operations.
type CheckInRepository struct {
	db *DB
}

// NewCheckInRepository creates a new check-in repository.
func NewCheckInRepository(db *DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

// GetByUserAndWeek retrieves the check-in of a user for a week.
func (r *CheckInRepository) GetByUserAndWeek(userID uint, weekNumber int) (*models.CheckIn, error) {
	var checkIn models.CheckIn
	err := r.db.Where("user_id = ? AND week_number = ?", userID, weekNumber).First(&checkIn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get check-in for user %d, week %d: %w", userID, weekNumber, err)
	}
	return &checkIn, nil
}

// Upsert creates the check-in for (user, week) or updates the weight, photo
// and updated timestamp of the existing row. Re-submissions inside the open
// window overwrite in place; the row is never duplicated.
func (r *CheckInRepository) Upsert(checkIn *models.CheckIn) error {
	var existing models.CheckIn
	err := r.db.Where("user_id = ? AND week_number = ?", checkIn.UserID, checkIn.WeekNumber).
		First(&existing).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		if createErr := r.db.Create(checkIn).Error; createErr != nil {
			return fmt.Errorf("failed to create check-in: %w", createErr)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to find check-in: %w", err)
	}

	checkIn.ID = existing.ID
	checkIn.CreatedAt = existing.CreatedAt
	checkIn.UpdatedAt = time.Now()
	if err := r.db.Save(checkIn).Error; err != nil {
		return fmt.Errorf("failed to update check-in: %w", err)
	}
	return nil
}

// ListByWeek retrieves the full cohort of check-ins for a week, earliest
// submission first.
func (r *CheckInRepository) ListByWeek(weekNumber int) ([]models.CheckIn, error) {
	var checkIns []models.CheckIn
	err := r.db.Where("week_number = ?", weekNumber).
		Order("created_at ASC").
		Find(&checkIns).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins for week %d: %w", weekNumber, err)
	}
	return checkIns, nil
}

// ListByUser retrieves all check-ins of a user, most recent week first.
func (r *CheckInRepository) ListByUser(userID uint) ([]models.CheckIn, error) {
	var checkIns []models.CheckIn
	err := r.db.Where("user_id = ?", userID).
		Order("week_number DESC").
		Find(&checkIns).Error

	if err != nil {
		return nil, fmt.Errorf("failed to list check-ins for user %d: %w", userID, err)
	}
	return checkIns, nil
}

// CountByWeek counts check-ins for a week.
func (r *CheckInRepository) CountByWeek(weekNumber int) (int64, error) {
	var count int64
	err := r.db.Model(&models.CheckIn{}).
		Where("week_number = ?", weekNumber).
		Count(&count).Error

	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins for week %d: %w", weekNumber, err)
	}
	return count, nil
}
