package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/slimcircle/slimcircle/internal/models"
)

// CertConfigRepository handles certificate configuration operations.
type CertConfigRepository struct {
	db *DB
}

// NewCertConfigRepository creates a new certificate config repository.
func NewCertConfigRepository(db *DB) *CertConfigRepository {
	return &CertConfigRepository{db: db}
}

// Get retrieves the configuration for a week, or the default configuration
// when weekNumber is nil. Returns (nil, nil) when no row exists.
func (r *CertConfigRepository) Get(weekNumber *int) (*models.CertConfig, error) {
	var cfg models.CertConfig
	query := r.db.DB
	if weekNumber != nil {
		query = query.Where("week_number = ?", *weekNumber)
	} else {
		query = query.Where("week_number IS NULL")
	}

	err := query.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cert config: %w", err)
	}
	return &cfg, nil
}

// GetForWeek resolves the effective configuration for a week: the per-week
// row when present, otherwise the default row, otherwise nil.
func (r *CertConfigRepository) GetForWeek(weekNumber int) (*models.CertConfig, error) {
	cfg, err := r.Get(&weekNumber)
	if err != nil || cfg != nil {
		return cfg, err
	}
	return r.Get(nil)
}

// Upsert creates or replaces the configuration row keyed by its (possibly
// nil) week number.
func (r *CertConfigRepository) Upsert(cfg *models.CertConfig) error {
	existing, err := r.Get(cfg.WeekNumber)
	if err != nil {
		return err
	}

	if existing != nil {
		cfg.ID = existing.ID
		cfg.CreatedAt = existing.CreatedAt
	}
	if err := r.db.Save(cfg).Error; err != nil {
		return fmt.Errorf("failed to save cert config: %w", err)
	}
	return nil
}
