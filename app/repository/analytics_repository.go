package repository

import (
	"context"

	"github.com/fintech-masoori/masoori/app/models"
	"gorm.io/gorm"
)

// analyticsRepository implements the AnalyticsRepository interface
type analyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository creates a new analytics repository instance
func NewAnalyticsRepository(db *gorm.DB) AnalyticsRepository {
	return &analyticsRepository{db: db}
}

// CreateSnapshotWithRecommendation writes the monthly snapshot and the
// recommended credit card in one transaction. Both tables carry a
// (user, month) unique index, so a redelivered event aborts on the first
// insert and leaves nothing behind.
func (r *analyticsRepository) CreateSnapshotWithRecommendation(ctx context.Context, snapshot *models.AnalyticsSnapshot, recommendation *models.RecommendedCreditCard) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(snapshot).Error; err != nil {
			return err
		}
		return tx.Create(recommendation).Error
	})
}

// GetSnapshot retrieves a user's snapshot for one month
func (r *analyticsRepository) GetSnapshot(ctx context.Context, userID uint, month string) (*models.AnalyticsSnapshot, error) {
	var snapshot models.AnalyticsSnapshot
	err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetRecommendation retrieves a user's recommended credit card for one month
func (r *analyticsRepository) GetRecommendation(ctx context.Context, userID uint, month string) (*models.RecommendedCreditCard, error) {
	var recommendation models.RecommendedCreditCard
	err := r.db.WithContext(ctx).Where("user_id = ? AND month = ?", userID, month).First(&recommendation).Error
	if err != nil {
		return nil, err
	}
	return &recommendation, nil
}
